package utils

// DefaultCapacity is used when a ring buffer is created with a non-positive size.
const DefaultCapacity = 120

// -----------------------------------------------------------------------------

// ClampLimit bounds a requested item count to [1, size]; non-positive requests
// mean everything.
func ClampLimit(limit, size int) int {
	if limit <= 0 || limit > size {
		return size
	}
	return limit
}
