package models

import (
	"strings"
	"time"
	"unicode"
)

// Vendor is the tenant boundary owning identities and uploaded files.
type Vendor struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// ValidVendorName reports whether name can be used as a vendor name. Object
// keys are prefixed with the name, so it must be a single path segment.
func ValidVendorName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsFunc(name, func(r rune) bool {
		return r == '/' || r == '\\' || unicode.IsControl(r)
	})
}
