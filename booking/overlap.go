package booking

import "cmp"

// Overlaps reports whether two half-open [start,end) windows intersect.
// Windows that only touch at a boundary do not overlap.
func Overlaps[T cmp.Ordered](existingStart, existingEnd, newStart, newEnd T) bool {
	return existingStart < newEnd && existingEnd > newStart
}
