package models

import "strings"

// Customer represents a registered customer
type Customer struct {
	ID          int64  `json:"id" db:"id"`
	UserName    string `json:"userName" db:"user_name"`
	Name        string `json:"name" db:"name"`
	PhoneNumber string `json:"phoneNumber" db:"phone_number"`
}

// Validate checks that all required fields are present.
// The phone number grammar is checked separately by the validator package.
func (c *Customer) Validate() error {
	if c == nil {
		return ErrInvalidInput("customer is required")
	}
	if strings.TrimSpace(c.UserName) == "" {
		return ErrInvalidInput("userName is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidInput("name is required")
	}
	if strings.TrimSpace(c.PhoneNumber) == "" {
		return ErrInvalidInput("phoneNumber is required")
	}
	return nil
}

// Equal reports whether both records carry the same id and field values
func (c *Customer) Equal(other *Customer) bool {
	if c == nil || other == nil {
		return c == other
	}
	return *c == *other
}

// SameIdentity reports whether other describes the same person, ignoring the id
func (c *Customer) SameIdentity(other *Customer) bool {
	if c == nil || other == nil {
		return false
	}
	return c.UserName == other.UserName &&
		c.Name == other.Name &&
		c.PhoneNumber == other.PhoneNumber
}

// Clone returns a detached copy
func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
