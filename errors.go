package scuckoo

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// FilterError is the error type for configuration and hard-failure paths
// in this package: an operation name, a message, and an optional cause.
type FilterError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *FilterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("scuckoo: %s: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("scuckoo: %s: %s", e.Operation, e.Message)
}

func (e *FilterError) Unwrap() error { return e.Cause }

var (
	// ErrInvalidCapacity is returned when initial_capacity is zero.
	ErrInvalidCapacity = &FilterError{Operation: "new", Message: "initial_capacity must be > 0"}
	// ErrInvalidFPP is returned when false_positive_probability is outside (0, 1).
	ErrInvalidFPP = &FilterError{Operation: "new", Message: "false_positive_probability must be in (0, 1)"}
	// ErrInvalidEntriesPerBucket is returned when entries_per_bucket is zero.
	ErrInvalidEntriesPerBucket = &FilterError{Operation: "new", Message: "entries_per_bucket must be >= 1"}
	// ErrInvalidGrowthFactor is returned when the growth factor is below 2.
	ErrInvalidGrowthFactor = &FilterError{Operation: "new", Message: "growth_factor must be >= 2"}
	// ErrInvalidTighteningRatio is returned when the tightening ratio is outside (0, 1).
	ErrInvalidTighteningRatio = &FilterError{Operation: "new", Message: "tightening_ratio must be in (0, 1)"}
)

// hardInsertError is returned by Insert in the rare case that a brand
// new, empty, oversized filter still refuses the one item it was grown
// to accept. It aggregates the per-attempt causes with go-multierror
// rather than inventing a bespoke multi-cause error type.
func hardInsertError(attempts ...error) error {
	var merr *multierror.Error
	for _, err := range attempts {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return &FilterError{
		Operation: "insert",
		Message:   "a freshly grown filter refused the insert it was sized for",
		Cause:     merr.ErrorOrNil(),
	}
}
