package utils

import "time"

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// TimePtr returns a pointer to t truncated to the wall clock, dropping the monotonic reading.
func TimePtr(t time.Time) *time.Time {
	return Ptr(t.Round(0))
}
