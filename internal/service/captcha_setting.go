package service

import (
	"fmt"
	"strings"

	"github.com/sitewave-growth/internal/config"
	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"
)

// CaptchaSceneSetting 验证码场景开关
// 增长引擎只有管理端登录一个交互式入口，服务间调用走令牌鉴权不过验证码
type CaptchaSceneSetting struct {
	AdminLogin bool `json:"admin_login"`
}

// CaptchaImageSetting 图片验证码参数
type CaptchaImageSetting struct {
	Length        int `json:"length"`
	Width         int `json:"width"`
	Height        int `json:"height"`
	NoiseCount    int `json:"noise_count"`
	ShowLine      int `json:"show_line"`
	ExpireSeconds int `json:"expire_seconds"`
	MaxStore      int `json:"max_store"`
}

func imageSettingFromConfig(cfg config.CaptchaImageConfig) CaptchaImageSetting {
	return CaptchaImageSetting{
		Length:        cfg.Length,
		Width:         cfg.Width,
		Height:        cfg.Height,
		NoiseCount:    cfg.NoiseCount,
		ShowLine:      cfg.ShowLine,
		ExpireSeconds: cfg.ExpireSeconds,
		MaxStore:      cfg.MaxStore,
	}
}

func (i CaptchaImageSetting) toConfig() config.CaptchaImageConfig {
	return config.CaptchaImageConfig{
		Length:        i.Length,
		Width:         i.Width,
		Height:        i.Height,
		NoiseCount:    i.NoiseCount,
		ShowLine:      i.ShowLine,
		ExpireSeconds: i.ExpireSeconds,
		MaxStore:      i.MaxStore,
	}
}

func (i CaptchaImageSetting) toMap() map[string]interface{} {
	return map[string]interface{}{
		"length":         i.Length,
		"width":          i.Width,
		"height":         i.Height,
		"noise_count":    i.NoiseCount,
		"show_line":      i.ShowLine,
		"expire_seconds": i.ExpireSeconds,
		"max_store":      i.MaxStore,
	}
}

// CaptchaSetting 验证码配置实体
type CaptchaSetting struct {
	Provider string              `json:"provider"`
	Scenes   CaptchaSceneSetting `json:"scenes"`
	Image    CaptchaImageSetting `json:"image"`
}

// CaptchaScenePatch 场景配置补丁
type CaptchaScenePatch struct {
	AdminLogin *bool `json:"admin_login"`
}

// CaptchaImagePatch 图片配置补丁
type CaptchaImagePatch struct {
	Length        *int `json:"length"`
	Width         *int `json:"width"`
	Height        *int `json:"height"`
	NoiseCount    *int `json:"noise_count"`
	ShowLine      *int `json:"show_line"`
	ExpireSeconds *int `json:"expire_seconds"`
	MaxStore      *int `json:"max_store"`
}

// CaptchaSettingPatch 验证码配置补丁
type CaptchaSettingPatch struct {
	Provider *string            `json:"provider"`
	Scenes   *CaptchaScenePatch `json:"scenes"`
	Image    *CaptchaImagePatch `json:"image"`
}

// CaptchaDefaultSetting 从静态配置推导默认验证码设置
func CaptchaDefaultSetting(cfg config.CaptchaConfig) CaptchaSetting {
	return NormalizeCaptchaSetting(CaptchaSetting{
		Provider: cfg.Provider,
		Scenes:   CaptchaSceneSetting{AdminLogin: cfg.Scenes.AdminLogin},
		Image:    imageSettingFromConfig(cfg.Image),
	})
}

// NormalizeCaptchaSetting 把越界参数收敛到可用区间
func NormalizeCaptchaSetting(setting CaptchaSetting) CaptchaSetting {
	switch provider := strings.ToLower(strings.TrimSpace(setting.Provider)); provider {
	case constants.CaptchaProviderImage, constants.CaptchaProviderNone:
		setting.Provider = provider
	default:
		setting.Provider = constants.CaptchaProviderNone
	}

	img := &setting.Image
	img.Length = clampOr(img.Length, 4, 8, 5)
	img.Width = floorOr(img.Width, 100, 240)
	img.Height = floorOr(img.Height, 40, 80)
	img.NoiseCount = floorOr(img.NoiseCount, 0, 2)
	img.ShowLine = floorOr(img.ShowLine, 0, 2)
	img.ExpireSeconds = clampOr(img.ExpireSeconds, 30, 3600, 300)
	img.MaxStore = floorOr(img.MaxStore, 100, 10240)

	return setting
}

// ValidateCaptchaSetting 校验验证码配置
func ValidateCaptchaSetting(setting CaptchaSetting) error {
	normalized := NormalizeCaptchaSetting(setting)

	if normalized.Provider == constants.CaptchaProviderNone && normalized.Scenes.anyEnabled() {
		return fmt.Errorf("%w: 已启用验证码场景时必须选择验证码提供方", ErrCaptchaConfigInvalid)
	}

	img := normalized.Image
	switch {
	case img.Length < 4 || img.Length > 8:
		return fmt.Errorf("%w: 图片验证码长度需在 4-8 之间", ErrCaptchaConfigInvalid)
	case img.Width < 100 || img.Height < 40:
		return fmt.Errorf("%w: 图片验证码宽高不合法", ErrCaptchaConfigInvalid)
	case img.ExpireSeconds < 30 || img.ExpireSeconds > 3600:
		return fmt.Errorf("%w: 图片验证码过期时间需在 30-3600 秒", ErrCaptchaConfigInvalid)
	}
	return nil
}

// CaptchaSettingToConfig 转成运行时配置
func CaptchaSettingToConfig(setting CaptchaSetting) config.CaptchaConfig {
	normalized := NormalizeCaptchaSetting(setting)
	return config.CaptchaConfig{
		Provider: normalized.Provider,
		Scenes:   config.CaptchaSceneConfig{AdminLogin: normalized.Scenes.AdminLogin},
		Image:    normalized.Image.toConfig(),
	}
}

// CaptchaSettingToMap 转成 settings 表的存储格式
func CaptchaSettingToMap(setting CaptchaSetting) map[string]interface{} {
	normalized := NormalizeCaptchaSetting(setting)
	return map[string]interface{}{
		"provider": normalized.Provider,
		"scenes":   captchaScenesMap(normalized.Scenes),
		"image":    normalized.Image.toMap(),
	}
}

// PublicCaptchaSetting 可公开下发前端的子集，不含图片参数
func PublicCaptchaSetting(setting CaptchaSetting) models.JSON {
	normalized := NormalizeCaptchaSetting(setting)
	return models.JSON{
		"provider": normalized.Provider,
		"scenes":   captchaScenesMap(normalized.Scenes),
	}
}

func captchaScenesMap(scenes CaptchaSceneSetting) map[string]interface{} {
	return map[string]interface{}{"admin_login": scenes.AdminLogin}
}

func (s CaptchaSceneSetting) anyEnabled() bool {
	return s.AdminLogin
}

// IsSceneEnabled 判断指定场景是否开启
func (s CaptchaSetting) IsSceneEnabled(scene string) bool {
	switch strings.ToLower(strings.TrimSpace(scene)) {
	case constants.CaptchaSceneAdminLogin:
		return s.Scenes.AdminLogin
	default:
		return false
	}
}

// GetCaptchaSetting 读取验证码设置，settings 表为空时回退静态配置
func (s *SettingService) GetCaptchaSetting(defaultCfg config.CaptchaConfig) (CaptchaSetting, error) {
	fallback := CaptchaDefaultSetting(defaultCfg)
	value, err := s.GetByKey(constants.SettingKeyCaptchaConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return NormalizeCaptchaSetting(captchaSettingFromJSON(value, fallback)), nil
}

// PatchCaptchaSetting 合并补丁、校验后落库
func (s *SettingService) PatchCaptchaSetting(defaultCfg config.CaptchaConfig, patch CaptchaSettingPatch) (CaptchaSetting, error) {
	next, err := s.GetCaptchaSetting(defaultCfg)
	if err != nil {
		return CaptchaSetting{}, err
	}

	if patch.Provider != nil {
		next.Provider = strings.ToLower(strings.TrimSpace(*patch.Provider))
	}
	if patch.Scenes != nil && patch.Scenes.AdminLogin != nil {
		next.Scenes.AdminLogin = *patch.Scenes.AdminLogin
	}
	if patch.Image != nil {
		patch.Image.applyTo(&next.Image)
	}

	normalized := NormalizeCaptchaSetting(next)
	if err := ValidateCaptchaSetting(normalized); err != nil {
		return CaptchaSetting{}, err
	}
	if _, err := s.Update(constants.SettingKeyCaptchaConfig, CaptchaSettingToMap(normalized)); err != nil {
		return CaptchaSetting{}, err
	}
	return normalized, nil
}

func (p CaptchaImagePatch) applyTo(img *CaptchaImageSetting) {
	overrideInt(&img.Length, p.Length)
	overrideInt(&img.Width, p.Width)
	overrideInt(&img.Height, p.Height)
	overrideInt(&img.NoiseCount, p.NoiseCount)
	overrideInt(&img.ShowLine, p.ShowLine)
	overrideInt(&img.ExpireSeconds, p.ExpireSeconds)
	overrideInt(&img.MaxStore, p.MaxStore)
}

func captchaSettingFromJSON(raw models.JSON, fallback CaptchaSetting) CaptchaSetting {
	next := fallback
	if raw == nil {
		return next
	}

	next.Provider = fieldString(raw, "provider", next.Provider)
	if scenes := asSettingMap(raw["scenes"]); scenes != nil {
		next.Scenes.AdminLogin = fieldBool(scenes, "admin_login", next.Scenes.AdminLogin)
	}
	if image := asSettingMap(raw["image"]); image != nil {
		fields := []struct {
			key string
			dst *int
		}{
			{"length", &next.Image.Length},
			{"width", &next.Image.Width},
			{"height", &next.Image.Height},
			{"noise_count", &next.Image.NoiseCount},
			{"show_line", &next.Image.ShowLine},
			{"expire_seconds", &next.Image.ExpireSeconds},
			{"max_store", &next.Image.MaxStore},
		}
		for _, field := range fields {
			*field.dst = fieldInt(image, field.key, *field.dst)
		}
	}
	return next
}

func overrideInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// clampOr 越界回退到默认值
func clampOr(value, min, max, fallback int) int {
	if value < min || value > max {
		return fallback
	}
	return value
}

// floorOr 低于下限回退到默认值
func floorOr(value, min, fallback int) int {
	if value < min {
		return fallback
	}
	return value
}
