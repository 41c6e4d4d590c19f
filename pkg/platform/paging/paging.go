// Package paging holds the page arithmetic shared by list endpoints and the
// verification history pager. Pages are 1-based.
package paging

// NormalizeSize returns size, or 1 when size is not positive.
func NormalizeSize(size int) int {
	if size < 1 {
		return 1
	}
	return size
}

// TotalPages returns ceil(n/size), never less than 1.
func TotalPages(n, size int) int {
	size = NormalizeSize(size)
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Clamp limits page to [1, total].
func Clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Bounds returns the half-open slice range [start, end) of page in a
// collection of n items. page must already be clamped.
func Bounds(page, size, n int) (start, end int) {
	size = NormalizeSize(size)
	start = (page - 1) * size
	if start > n {
		start = n
	}
	if start < 0 {
		start = 0
	}
	end = start + size
	if end > n {
		end = n
	}
	return start, end
}

// Offset returns the SQL OFFSET for page.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * NormalizeSize(size)
}
