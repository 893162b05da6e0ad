package repository

import "gorm.io/gorm"

// applyPagination 给查询追加 LIMIT/OFFSET，页码从 1 起算。
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * pageSize
	}
	if offset < 0 {
		// 页码大到整型溢出时回退首页，避免负偏移进 SQL
		offset = 0
	}
	return query.Offset(offset).Limit(pageSize)
}
