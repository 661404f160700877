package enums

import "fmt"

// ProductCategory groups dishes on the storefront.
type ProductCategory string

const (
	ProductCategoryMainDish ProductCategory = "MAIN_DISH"
	ProductCategorySideDish ProductCategory = "SIDE_DISH"
	ProductCategoryDessert  ProductCategory = "DESSERT"
	ProductCategoryDrink    ProductCategory = "DRINK"
	ProductCategorySnack    ProductCategory = "SNACK"
)

var validProductCategories = []ProductCategory{
	ProductCategoryMainDish,
	ProductCategorySideDish,
	ProductCategoryDessert,
	ProductCategoryDrink,
	ProductCategorySnack,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
