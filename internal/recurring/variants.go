package recurring

import (
	"strings"

	"github.com/shopspring/decimal"

	"txn-insights/internal/domain"
)

// Description substrings that identify merchant-misclassified records in
// the mobile subset (venues, food chains and car parks sharing the
// carrier's brand name) and prepay top-ups, which are not contract
// payments at all.
var (
	mobileMisclassified = []string{
		"academy", "apollo", "arena", "box office",
		"burger", "byron", "car park", "cineworld",
		"coffee", "dome", "entertainment", "five guys",
		"frankie & bennys", "jimmys", "parking",
		"the o2", "wasabi", "watermargin", "zizzi",
	}
	mobilePrepay = []string{"pay & go", "prepay", "top up"}
)

// MobileVariant classifies how a user pays for a phone bought from their
// mobile carrier: monthly instalments on the airtime bill versus an
// upfront handset purchase.
func MobileVariant(merchant string) Variant {
	return Variant{
		Name: "mobile_payment_mode",
		Filter: func(t domain.Transaction) bool {
			if t.Direction != domain.Debit {
				return false
			}
			if !strings.Contains(t.TagFields(), "mobile") {
				return false
			}
			if t.MerchantName != merchant {
				return false
			}
			desc := strings.ToLower(t.Description)
			for _, s := range mobileMisclassified {
				if strings.Contains(desc, s) {
					return false
				}
			}
			for _, s := range mobilePrepay {
				if strings.Contains(desc, s) {
					return false
				}
			}
			return true
		},
		SeriesMinRun:     6,
		LargeThreshold:   decimal.NewFromInt(100),
		LargeMultiple:    decimal.NewFromInt(3),
		LargeWindow:      20,
		RequireRareLarge: true,
	}
}

// CarInsuranceVariant classifies whether a user pays vehicle insurance
// monthly or as one annual payment. The series minimum is calibrated low:
// many monthly payers see their premium adjusted after five or six
// identical payments.
func CarInsuranceVariant() Variant {
	return Variant{
		Name: "car_insurance_payment_mode",
		Filter: func(t domain.Transaction) bool {
			if t.Direction != domain.Debit {
				return false
			}
			if !strings.Contains(t.TagFields(), "vehicle insurance") {
				return false
			}
			if t.ManualTag == "home insurance" {
				return false
			}
			return true
		},
		SeriesMinRun:   5,
		LargeThreshold: decimal.NewFromInt(250),
	}
}
