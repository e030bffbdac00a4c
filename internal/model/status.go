package model

// VerificationStatus is the review state of an imported record. The values
// are the single-character codes stored in the "verified" column.
type VerificationStatus string

// Verification status codes.
const (
	StatusClientToVerify   VerificationStatus = "0"
	StatusVerified         VerificationStatus = "1"
	StatusNotVATRegistered VerificationStatus = "2"
)

// UnknownStatusLabel is returned by Label for codes outside the known set.
const UnknownStatusLabel = "Unknown"

var statusLabels = map[VerificationStatus]string{
	StatusClientToVerify:   "Client to Verify",
	StatusVerified:         "Verified",
	StatusNotVATRegistered: "Not VAT Registered",
}

// Statuses lists the known codes in display order.
func Statuses() []VerificationStatus {
	return []VerificationStatus{StatusClientToVerify, StatusVerified, StatusNotVATRegistered}
}

// Label returns the display string for the status.
func (s VerificationStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return UnknownStatusLabel
}

// Known reports whether s is one of the defined codes.
func (s VerificationStatus) Known() bool {
	_, ok := statusLabels[s]
	return ok
}

// Flagged reports whether the record still needs attention: either the
// client has not verified it or the supplier is not VAT registered.
func (s VerificationStatus) Flagged() bool {
	return s == StatusClientToVerify || s == StatusNotVATRegistered
}

// String implements fmt.Stringer.
func (s VerificationStatus) String() string {
	return string(s)
}
