package domain

// Status is the canonical lifecycle state of an event.
// Raw feed strings are translated into a Status at the wire boundary only
// (see package wire); nothing inside the core compares raw strings.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusCanceled Status = "canceled"

	// StatusUnknown is produced for feed values with no translation.
	// It is never written back.
	StatusUnknown Status = "unknown"
)

// Label returns the display vocabulary used by listings and search.
func (s Status) Label() string {
	switch s {
	case StatusApproved:
		return "Approved"
	case StatusPending:
		return "Pending"
	case StatusCanceled:
		return "Canceled"
	case StatusDenied:
		return "Denied"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusCanceled:
		return true
	}
	return false
}

// VoucherStatus is the per-leg travel voucher sub-status.
// The zero value means no voucher was requested for the leg.
type VoucherStatus string

const (
	VoucherNone      VoucherStatus = ""
	VoucherPending   VoucherStatus = "pending"
	VoucherGenerated VoucherStatus = "generated"
	VoucherDenied    VoucherStatus = "denied"
)

// Valid reports whether v is a known voucher state, including VoucherNone.
func (v VoucherStatus) Valid() bool {
	switch v {
	case VoucherNone, VoucherPending, VoucherGenerated, VoucherDenied:
		return true
	}
	return false
}
