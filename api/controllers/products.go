package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/api/responses"
	"github.com/tuanvle/dacsan-backend/api/validators"
	"github.com/tuanvle/dacsan-backend/internal/products"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	"github.com/tuanvle/dacsan-backend/pkg/pagination"
)

type productResponse struct {
	ID          uuid.UUID             `json:"id"`
	VendorID    uuid.UUID             `json:"vendor_id"`
	Name        string                `json:"name"`
	Description *string               `json:"description,omitempty"`
	Category    enums.ProductCategory `json:"category"`
	Region      enums.Region          `json:"region"`
	Province    string                `json:"province"`
	BasePrice   int64                 `json:"base_price"`
	ImageURL    *string               `json:"image_url,omitempty"`
	IsAvailable bool                  `json:"is_available"`
	IsFeatured  bool                  `json:"is_featured"`
	Groups      []variantGroupResponse `json:"variant_groups,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

type variantGroupResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Required    bool              `json:"required"`
	MultiSelect bool              `json:"multi_select"`
	Variants    []variantResponse `json:"variants"`
}

type variantResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PriceAdjustment int64     `json:"price_adjustment"`
	IsAvailable     bool      `json:"is_available"`
}

func productResponseFromModel(m *models.Product) productResponse {
	resp := productResponse{
		ID:          m.ID,
		VendorID:    m.VendorID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Region:      m.Region,
		Province:    m.Province,
		BasePrice:   m.BasePrice,
		ImageURL:    m.ImageURL,
		IsAvailable: m.IsAvailable,
		IsFeatured:  m.IsFeatured,
		CreatedAt:   m.CreatedAt,
	}
	for _, group := range m.VariantGroups {
		g := variantGroupResponse{
			ID:          group.ID,
			Name:        group.Name,
			Required:    group.Required,
			MultiSelect: group.MultiSelect,
			Variants:    make([]variantResponse, 0, len(group.Variants)),
		}
		for _, v := range group.Variants {
			g.Variants = append(g.Variants, variantResponse{
				ID:              v.ID,
				Name:            v.Name,
				PriceAdjustment: v.PriceAdjustment,
				IsAvailable:     v.IsAvailable,
			})
		}
		resp.Groups = append(resp.Groups, g)
	}
	return resp
}

// ProductList serves the public catalog with filters and page pagination.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		filter, err := buildCatalogFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		size, err := validators.ParseQueryInt(r, "size", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), filter, pagination.PageParams{Page: page, Size: size})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]productResponse, 0, len(result.Items))
		for i := range result.Items {
			items = append(items, productResponseFromModel(&result.Items[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"items": items,
			"total": result.Total,
			"page":  result.Page,
			"size":  result.Size,
		})
	}
}

// ProductDetail serves one product with its variant groups.
func ProductDetail(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseURLUUID(r, "productId", "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetDetail(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productResponseFromModel(product))
	}
}

type productWriteRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Category    string  `json:"category" validate:"required"`
	Region      string  `json:"region" validate:"required"`
	Province    string  `json:"province" validate:"required"`
	BasePrice   int64   `json:"base_price" validate:"required,min=1"`
	ImageURL    *string `json:"image_url"`
	IsAvailable *bool   `json:"is_available"`
	IsFeatured  bool    `json:"is_featured"`

	VariantGroups []variantGroupRequest `json:"variant_groups"`
}

type variantGroupRequest struct {
	Name        string           `json:"name" validate:"required"`
	Required    bool             `json:"required"`
	MultiSelect bool             `json:"multi_select"`
	Variants    []variantRequest `json:"variants" validate:"min=1,dive"`
}

type variantRequest struct {
	Name            string `json:"name" validate:"required"`
	PriceAdjustment int64  `json:"price_adjustment"`
	IsAvailable     *bool  `json:"is_available"`
}

func (req productWriteRequest) toInput() (products.Input, error) {
	category, err := enums.ParseProductCategory(strings.TrimSpace(req.Category))
	if err != nil {
		return products.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	region, err := enums.ParseRegion(strings.TrimSpace(req.Region))
	if err != nil {
		return products.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid region")
	}

	input := products.Input{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    category,
		Region:      region,
		Province:    strings.TrimSpace(req.Province),
		BasePrice:   req.BasePrice,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
		IsFeatured:  req.IsFeatured,
	}
	if req.IsAvailable != nil {
		input.IsAvailable = *req.IsAvailable
	}

	for _, group := range req.VariantGroups {
		g := products.GroupInput{
			Name:        strings.TrimSpace(group.Name),
			Required:    group.Required,
			MultiSelect: group.MultiSelect,
		}
		for _, v := range group.Variants {
			variant := products.VariantInput{
				Name:            strings.TrimSpace(v.Name),
				PriceAdjustment: v.PriceAdjustment,
				IsAvailable:     true,
			}
			if v.IsAvailable != nil {
				variant.IsAvailable = *v.IsAvailable
			}
			g.Variants = append(g.Variants, variant)
		}
		input.Groups = append(input.Groups, g)
	}
	return input, nil
}

// VendorCreateProduct lists a new dish under the vendor's storefront.
func VendorCreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		vendorID, err := currentVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productWriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), vendorID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, productResponseFromModel(created))
	}
}

// VendorUpdateProduct rewrites a dish, replacing its variant groups.
func VendorUpdateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		vendorID, err := currentVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseURLUUID(r, "productId", "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productWriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), vendorID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productResponseFromModel(updated))
	}
}

// VendorDeleteProduct hides a dish from the catalog.
func VendorDeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		vendorID, err := currentVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseURLUUID(r, "productId", "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), vendorID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func buildCatalogFilter(r *http.Request) (products.ListFilter, error) {
	var filter products.ListFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("region")); raw != "" {
		region, err := enums.ParseRegion(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid region")
		}
		filter.Region = region
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, err := enums.ParseProductCategory(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		filter.Category = category
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("vendor_id")); raw != "" {
		vendorID, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor_id")
		}
		filter.VendorID = vendorID
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("featured")); raw != "" {
		featured := strings.EqualFold(raw, "true")
		filter.Featured = &featured
	}
	filter.Search = strings.TrimSpace(r.URL.Query().Get("q"))

	// The public catalog only ever shows available products.
	available := true
	filter.Available = &available
	return filter, nil
}

func parseURLUUID(r *http.Request, param, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return parsed, nil
}
