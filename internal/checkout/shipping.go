package checkout

import "strings"

// Shipping fee tiers in VND.
const (
	FreeShippingThreshold = 100000
	MajorCityFee          = 30000
	RemoteAreaFee         = 35000
	StandardFee           = 20000
)

// Province name fragments are matched case-insensitively so both the
// accented and the plain ASCII spellings customers type resolve to the
// same tier.
var majorCityNames = []string{
	"hà nội", "ha noi",
	"hồ chí minh", "ho chi minh", "tp.hcm", "sài gòn", "saigon",
	"đà nẵng", "da nang",
}

var remoteProvinceNames = []string{
	"lai châu", "điện biên", "sơn la", "hà giang",
	"cao bằng", "bắc kạn", "lào cai",
}

// ShippingFee computes the delivery fee for a subtotal and destination
// province. Orders at or above the free threshold ship free regardless of
// destination.
func ShippingFee(province string, subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}

	name := strings.ToLower(strings.TrimSpace(province))
	for _, city := range majorCityNames {
		if strings.Contains(name, city) {
			return MajorCityFee
		}
	}
	for _, remote := range remoteProvinceNames {
		if strings.Contains(name, remote) {
			return RemoteAreaFee
		}
	}
	return StandardFee
}
