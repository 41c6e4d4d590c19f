package domain

import dErrors "partnerdesk/pkg/domain-errors"

// VerificationStatus filters partners by their VAT verification state.
// Invariant: the value must be one of the supported statuses.
type VerificationStatus string

const (
	VerificationStatusAny        VerificationStatus = ""
	VerificationStatusVerified   VerificationStatus = "verified"
	VerificationStatusUnverified VerificationStatus = "unverified"
)

var validVerificationStatuses = map[VerificationStatus]bool{
	VerificationStatusAny:        true,
	VerificationStatusVerified:   true,
	VerificationStatusUnverified: true,
}

// ParseVerificationStatus constructs a VerificationStatus from a query value.
// The empty string means "any".
//
// Errors: returns CodeInvalidInput for unsupported values.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	v := VerificationStatus(s)
	if !v.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid status filter")
	}
	return v, nil
}

func (v VerificationStatus) IsValid() bool {
	return validVerificationStatuses[v]
}

// Matches reports whether a partner with the given verified flag passes the filter.
func (v VerificationStatus) Matches(isVerified bool) bool {
	switch v {
	case VerificationStatusVerified:
		return isVerified
	case VerificationStatusUnverified:
		return !isVerified
	default:
		return true
	}
}

func (v VerificationStatus) String() string {
	return string(v)
}
