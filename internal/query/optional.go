package query

// Optional is a filter value that is either unconstrained (Any) or an
// exact match (Exactly). The zero value is Any.
type Optional[T any] struct {
	value T
	set   bool
}

// Any returns an unconstrained Optional.
func Any[T any]() Optional[T] {
	return Optional[T]{}
}

// Exactly returns an Optional matching v.
func Exactly[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether one is set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the Optional constrains anything.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Or returns the value, or def when unset.
func (o Optional[T]) Or(def T) T {
	if o.set {
		return o.value
	}
	return def
}
