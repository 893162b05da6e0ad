package service

import (
	"strings"
	"sync"
	"time"

	"github.com/sitewave-growth/internal/config"
	"github.com/sitewave-growth/internal/constants"
	"github.com/sitewave-growth/internal/models"

	"github.com/mojocn/base64Captcha"
)

const (
	captchaSettingTTL = 30 * time.Second
	captchaCharset    = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// CaptchaVerifyPayload 验证码校验请求载荷
type CaptchaVerifyPayload struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService 验证码读取、挑战生成与校验的统一入口
// 配置带 30 秒本地缓存，场景未开启时 Verify 直接放行
type CaptchaService struct {
	settings *SettingService

	mu       sync.RWMutex
	fallback config.CaptchaConfig
	cached   CaptchaSetting
	cachedAt time.Time

	store       base64Captcha.Store
	storeSize   int
	storeExpire int
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(settings *SettingService, fallback config.CaptchaConfig) *CaptchaService {
	return &CaptchaService{settings: settings, fallback: fallback}
}

// SetDefaultConfig 替换回退配置并失效本地缓存
func (s *CaptchaService) SetDefaultConfig(fallback config.CaptchaConfig) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.fallback = fallback
	s.cachedAt = time.Time{}
	s.mu.Unlock()
}

// InvalidateCache 失效本地缓存配置
func (s *CaptchaService) InvalidateCache() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.cachedAt = time.Time{}
	s.mu.Unlock()
}

// GetPublicSetting 获取公开可下发配置
func (s *CaptchaService) GetPublicSetting() (models.JSON, error) {
	setting, err := s.getSetting()
	if err != nil {
		return nil, err
	}
	return PublicCaptchaSetting(setting), nil
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	setting, err := s.getSetting()
	if err != nil {
		return nil, err
	}
	if setting.Provider != constants.CaptchaProviderImage {
		return nil, ErrCaptchaConfigInvalid
	}

	captcha := base64Captcha.NewCaptcha(imageDriver(setting.Image), s.imageStore(setting))
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{CaptchaID: strings.TrimSpace(id), ImageBase64: strings.TrimSpace(b64s)}, nil
}

// Verify 按场景校验验证码
func (s *CaptchaService) Verify(scene string, payload CaptchaVerifyPayload) error {
	setting, err := s.getSetting()
	if err != nil {
		return err
	}
	if !setting.IsSceneEnabled(scene) {
		return nil
	}
	// 场景开启但提供方不可用属于配置错误
	if setting.Provider != constants.CaptchaProviderImage {
		return ErrCaptchaConfigInvalid
	}

	id := strings.TrimSpace(payload.CaptchaID)
	code := strings.TrimSpace(payload.CaptchaCode)
	if id == "" || code == "" {
		return ErrCaptchaRequired
	}
	if !s.imageStore(setting).Verify(id, code, true) {
		return ErrCaptchaInvalid
	}
	return nil
}

func imageDriver(img CaptchaImageSetting) base64Captcha.Driver {
	return base64Captcha.NewDriverString(
		img.Height,
		img.Width,
		img.NoiseCount,
		img.ShowLine,
		img.Length,
		captchaCharset,
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
}

// imageStore 容量或过期参数变化时重建内存存储
func (s *CaptchaService) imageStore(setting CaptchaSetting) base64Captcha.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil || s.storeSize != setting.Image.MaxStore || s.storeExpire != setting.Image.ExpireSeconds {
		s.store = base64Captcha.NewMemoryStore(setting.Image.MaxStore, time.Duration(setting.Image.ExpireSeconds)*time.Second)
		s.storeSize = setting.Image.MaxStore
		s.storeExpire = setting.Image.ExpireSeconds
	}
	return s.store
}

func (s *CaptchaService) getSetting() (CaptchaSetting, error) {
	if s == nil {
		return CaptchaDefaultSetting(config.CaptchaConfig{}), nil
	}

	s.mu.RLock()
	cached, fallback := s.cached, s.fallback
	fresh := !s.cachedAt.IsZero() && time.Since(s.cachedAt) <= captchaSettingTTL
	s.mu.RUnlock()
	if fresh {
		return cached, nil
	}

	setting := CaptchaDefaultSetting(fallback)
	if s.settings != nil {
		loaded, err := s.settings.GetCaptchaSetting(fallback)
		if err != nil {
			return CaptchaSetting{}, err
		}
		setting = NormalizeCaptchaSetting(loaded)
	}

	s.mu.Lock()
	s.cached = setting
	s.cachedAt = time.Now()
	s.mu.Unlock()
	return setting, nil
}
