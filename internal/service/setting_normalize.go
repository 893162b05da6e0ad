package service

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
)

var settingSupportedLanguages = []string{"zh-CN", "zh-TW", "en-US"}

const (
	settingSiteNameMaxRuneSize    = 120
	settingSiteContactMaxRuneSize = 200
)

// normalizeSettingValueByKey 按设置键归一化，未知键原样透传。
func normalizeSettingValueByKey(key string, value map[string]interface{}) models.JSON {
	switch key {
	case constants.SettingKeyGrowthConfig:
		return normalizeGrowthSettingMap(value)
	case constants.SettingKeyCommissionConfig:
		return normalizeCommissionSettingMap(value)
	case constants.SettingKeyShowcaseConfig:
		return normalizeShowcaseSettingMap(value)
	case constants.SettingKeyDashboardConfig:
		setting := dashboardSettingFromJSON(models.JSON(value), DashboardDefaultSetting())
		return DashboardSettingToMap(setting)
	case constants.SettingKeySiteConfig:
		return normalizeSiteSetting(value)
	default:
		return models.JSON(value)
	}
}

// normalizeSiteSetting 站点基础配置：品牌、联系方式与语言列表，未知字段保留。
func normalizeSiteSetting(value map[string]interface{}) models.JSON {
	normalized := make(models.JSON, len(value)+3)
	for key, raw := range value {
		normalized[key] = raw
	}

	brand := asSettingMap(value["brand"])
	normalized["brand"] = map[string]interface{}{
		"site_name": normalizeSettingTextWithRuneLimit(brand["site_name"], settingSiteNameMaxRuneSize),
	}

	contact := asSettingMap(value["contact"])
	normalized["contact"] = map[string]interface{}{
		"support_email": normalizeSettingTextWithRuneLimit(contact["support_email"], settingSiteContactMaxRuneSize),
		"docs_url":      normalizeSettingTextWithRuneLimit(contact["docs_url"], settingSiteContactMaxRuneSize),
	}

	if raw, present := value["languages"]; present {
		normalized["languages"] = normalizeSiteLanguages(raw)
	}
	return normalized
}

func defaultSiteLanguages() []string {
	return append([]string(nil), settingSupportedLanguages...)
}

// normalizeSiteLanguages 去空白、去重，结果为空时回退到内置语言表。
func normalizeSiteLanguages(raw interface{}) []string {
	var candidates []string
	switch value := raw.(type) {
	case []string:
		candidates = value
	case []interface{}:
		for _, item := range value {
			candidates = append(candidates, normalizeSettingText(item))
		}
	default:
		return defaultSiteLanguages()
	}

	result := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, item := range candidates {
		lang := strings.TrimSpace(item)
		if _, dup := seen[lang]; dup || lang == "" {
			continue
		}
		seen[lang] = struct{}{}
		result = append(result, lang)
	}
	if len(result) == 0 {
		return defaultSiteLanguages()
	}
	return result
}

func normalizeSettingText(raw interface{}) string {
	text, _ := raw.(string)
	return strings.TrimSpace(text)
}

// normalizeSettingTextWithRuneLimit 去除首尾空白后按字符数截断。
func normalizeSettingTextWithRuneLimit(raw interface{}, maxRuneCount int) string {
	text := normalizeSettingText(raw)
	if maxRuneCount > 0 {
		if runes := []rune(text); len(runes) > maxRuneCount {
			text = string(runes[:maxRuneCount])
		}
	}
	return text
}

// asSettingMap 把 JSON 反序列化产物还原为 map，类型不符返回 nil。
func asSettingMap(value interface{}) map[string]interface{} {
	switch m := value.(type) {
	case map[string]interface{}:
		return m
	case models.JSON:
		return map[string]interface{}(m)
	default:
		return nil
	}
}

// fieldString 读取字符串字段，缺失或类型不符时返回 fallback。
func fieldString(source map[string]interface{}, key, fallback string) string {
	if text, ok := source[key].(string); ok {
		return strings.TrimSpace(text)
	}
	return fallback
}

func fieldBool(source map[string]interface{}, key string, fallback bool) bool {
	switch v := source[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func fieldInt(source map[string]interface{}, key string, fallback int) int {
	switch v := source[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			return int(parsed)
		}
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}
