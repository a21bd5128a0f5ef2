package utils

// PageCount returns the number of pages needed to hold total items at the
// given page size: ceil(total / size). Returns 0 when total is 0 or size
// is not positive.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
