package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
	"github.com/sitewave-growth/internal/repository"
)

// SettingService 设置业务服务
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetConfig 获取站点配置，存储值覆盖默认值
func (s *SettingService) GetConfig(defaults map[string]interface{}) (map[string]interface{}, error) {
	merged := make(map[string]interface{}, len(defaults))
	for key, value := range defaults {
		merged[key] = value
	}

	stored, err := s.GetByKey(constants.SettingKeySiteConfig)
	if err != nil {
		return nil, err
	}
	for key, value := range stored {
		merged[key] = value
	}
	return merged, nil
}

// GetByKey 获取设置，键不存在时返回 nil
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil || setting == nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// Update 归一化后写入设置，返回实际落库的值
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	setting, err := s.repo.Upsert(key, normalizeSettingValueByKey(key, value))
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// parseSettingInt 宽松解析整数，兼容 JSON 反序列化出的各种数值形态
func parseSettingInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case float64:
		// JSON 反序列化出来的数字默认是 float64
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			return int(parsed), nil
		}
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid json number %q", v.String())
		}
		return int(parsed), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	}
	return 0, fmt.Errorf("unsupported int value type %T", value)
}

// parseSettingFloat 宽松解析浮点数
func parseSettingFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("unsupported float value type %T", value)
}
