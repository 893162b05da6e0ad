package shared

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// NormalizePagination 页码与页大小越界时收敛到安全区间。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize
}
