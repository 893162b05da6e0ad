package repository

import (
	"time"

	"gorm.io/gorm"
)

// whereUint 非零时追加条件
func whereUint(query *gorm.DB, expr string, value uint) *gorm.DB {
	if value == 0 {
		return query
	}
	return query.Where(expr, value)
}

// whereText 非空时追加条件
func whereText(query *gorm.DB, expr string, value string) *gorm.DB {
	if value == "" {
		return query
	}
	return query.Where(expr, value)
}

// whereTime 非 nil 时追加条件
func whereTime(query *gorm.DB, expr string, value *time.Time) *gorm.DB {
	if value == nil {
		return query
	}
	return query.Where(expr, *value)
}
