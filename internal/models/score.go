package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Score 病毒分类型（保留 2 位小数，永不为负）
type Score struct {
	decimal.Decimal
}

// NewScoreFromDecimal 从 decimal 创建病毒分，负值归零
func NewScoreFromDecimal(value decimal.Decimal) Score {
	rounded := value.Round(2)
	if rounded.IsNegative() {
		rounded = decimal.Zero
	}
	return Score{Decimal: rounded}
}

// Add 返回累加后的病毒分
func (s Score) Add(delta decimal.Decimal) Score {
	return NewScoreFromDecimal(s.Decimal.Add(delta))
}

// MarshalJSON 统一输出 2 位小数的字符串
func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON 解析病毒分（字符串或数字）
func (s *Score) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var text string
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		d, err := decimal.NewFromString(text)
		if err != nil {
			return err
		}
		*s = NewScoreFromDecimal(d)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = NewScoreFromDecimal(decimal.NewFromFloat(f))
	return nil
}

// Value 用于数据库写入
func (s Score) Value() (driver.Value, error) {
	return s.Decimal.Round(2).Value()
}

// Scan 用于数据库读取
func (s *Score) Scan(value interface{}) error {
	if err := s.Decimal.Scan(value); err != nil {
		return err
	}
	*s = NewScoreFromDecimal(s.Decimal)
	return nil
}

// String 返回 2 位小数格式
func (s Score) String() string {
	return s.Decimal.Round(2).StringFixed(2)
}
