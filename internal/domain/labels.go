package domain

// PaymentMode classifies how a user pays for a recurring expense.
// Indeterminate and NotApplicable are first-class outcomes, not errors:
// callers must handle them explicitly rather than fall back to a default
// class.
type PaymentMode int

const (
	// PaymentModeNotApplicable means the user has no transactions in the
	// relevant category subset.
	PaymentModeNotApplicable PaymentMode = iota
	// PaymentModeRegular means the user pays in regular instalments.
	PaymentModeRegular
	// PaymentModeUpfront means the user pays with a one-off large payment.
	PaymentModeUpfront
	// PaymentModeIndeterminate means both or neither signal fired.
	PaymentModeIndeterminate
)

func (m PaymentMode) String() string {
	switch m {
	case PaymentModeRegular:
		return "regular"
	case PaymentModeUpfront:
		return "upfront"
	case PaymentModeIndeterminate:
		return "indeterminate"
	default:
		return "not_applicable"
	}
}

// SwapClass classifies how often a user changes service providers.
type SwapClass int

const (
	SwapInfrequent SwapClass = iota
	SwapFrequent
)

func (c SwapClass) String() string {
	if c == SwapFrequent {
		return "frequent"
	}
	return "infrequent"
}
