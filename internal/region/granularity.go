package region

import (
	"errors"

	"github.com/rotisserie/eris"
)

// Granularity is the administrative scale of a dataset's regions.
type Granularity string

// Supported granularities.
const (
	Province Granularity = "province"
	Global   Granularity = "global"
)

// ParseGranularity returns the granularity named s.
func ParseGranularity(s string) (Granularity, bool) {
	switch g := Granularity(s); g {
	case Province, Global:
		return g, true
	}
	return "", false
}

// ErrIncompatibleGranularity is returned when two datasets of different
// region scale are compared. It is user-correctable, not a computation error.
var ErrIncompatibleGranularity = errors.New("incompatible granularity")

// CheckCompatible returns a wrapped ErrIncompatibleGranularity when a and b
// differ.
func CheckCompatible(a, b Granularity) error {
	if a == b {
		return nil
	}
	return eris.Wrapf(ErrIncompatibleGranularity,
		"region: cannot compare %s-level data with %s-level data", a, b)
}
