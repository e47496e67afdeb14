package ptr

// To returns a pointer to a copy of v
func To[T any](v T) *T {
	return &v
}

// Copy returns a pointer to a copy of *v, or nil
func Copy[T any](v *T) *T {
	if v == nil {
		return nil
	}
	return To(*v)
}

// FromString returns pointer to string, nil when empty
func FromString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringOr returns value of pointer or alternative value
func StringOr(s *string, or string) string {
	if s == nil {
		return or
	}
	return *s
}
