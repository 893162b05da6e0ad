package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON 结构化配置字段，落库为 JSON 文本
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	return scanJSONColumn(value, j)
}

// StringArray 字符串列表字段，落库为 JSON 数组
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	return scanJSONColumn(value, s)
}

// scanJSONColumn 兼容驱动把 JSON 列读成 []byte 或 string 的两种情况
func scanJSONColumn(value interface{}, dst interface{}) error {
	switch data := value.(type) {
	case []byte:
		if len(data) == 0 {
			return nil
		}
		return json.Unmarshal(data, dst)
	case string:
		if data == "" {
			return nil
		}
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("unsupported json column type %T", value)
	}
}
