package types

import "fmt"

// The temporal layer raises four error categories. All validation happens
// before any engine mutation, so a returned error means nothing changed.

// ValidationError reports malformed input: a name containing the separator, a
// duplicate registration, an unparsable flat key, or an unroll target shorter
// than the horizon.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// OrderingError reports an arc that would point backward in time.
type OrderingError struct {
	Tail UserKey
	Head UserKey
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("backward arc not allowed: %d -> %d", e.Tail.Slice, e.Head.Slice)
}

// HorizonError reports a slice outside the [0, k) range materialized by the
// template.
type HorizonError struct {
	Key     UserKey
	Horizon int
}

func (e *HorizonError) Error() string {
	return fmt.Sprintf("slice %d of %s outside horizon [0, %d)", e.Key.Slice, e.Key, e.Horizon)
}

// NotFoundError reports a reference to an unknown variable, node, or arc.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}
