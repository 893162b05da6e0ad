package repository

import (
	"strings"

	"gorm.io/gorm"
)

// keywordLikeClause 组装多列关键字模糊匹配条件与等长的参数列表
func keywordLikeClause(db *gorm.DB, keyword string, columns []string) (string, []interface{}) {
	return likeClause(likeOperator(db), keyword, columns)
}

// likeOperator postgres 下用 ILIKE 做不区分大小写匹配，sqlite 的 LIKE 对 ASCII 本身就不区分
func likeOperator(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "LIKE"
	}
	switch strings.ToLower(strings.TrimSpace(db.Dialector.Name())) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

func likeClause(operator, keyword string, columns []string) (string, []interface{}) {
	like := "%" + keyword + "%"
	conds := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		conds = append(conds, column+" "+operator+" ?")
		args = append(args, like)
	}
	return strings.Join(conds, " OR "), args
}
