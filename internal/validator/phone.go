// Package validator holds the syntactic checks applied before customer data
// reaches storage.
package validator

import "strings"

const (
	// 0 176 123: national prefix, mobile prefix and a three digit subscriber.
	minPhoneNumberLength = 7
	// Three digit country code, five digit area code and a long subscriber number.
	maxPhoneNumberLength = 25
)

var separatorStripper = strings.NewReplacer(" ", "", "-", "", "/", "")

// IsValidPhoneNumber reports whether raw is an acceptable phone number.
// Spaces, hyphens and slashes are ignored. The number must start with a
// single '0' or with '+' followed by a non-zero digit, and contain only
// digits after that prefix.
func IsValidPhoneNumber(raw string) bool {
	phone := separatorStripper.Replace(raw)

	if len(phone) < minPhoneNumberLength || len(phone) > maxPhoneNumberLength {
		return false
	}

	switch {
	case phone[0] == '+' && phone[1] == '0':
		return false
	case phone[0] == '0' && phone[1] == '0':
		return false
	case phone[0] == '0' || phone[0] == '+':
		phone = phone[1:]
	default:
		return false
	}

	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	return true
}

// IsValidPhoneNumberPtr is IsValidPhoneNumber for optional input; nil is invalid.
func IsValidPhoneNumberPtr(raw *string) bool {
	if raw == nil {
		return false
	}
	return IsValidPhoneNumber(*raw)
}
