package public

import (
	"errors"

	"github.com/sitewave-growth/internal/http/response"
	"github.com/sitewave-growth/internal/service"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha 下发一张图片验证码
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if h.CaptchaService == nil {
		respondError(c, response.CodeInternal, "error.captcha_unavailable", service.ErrCaptchaConfigInvalid)
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if errors.Is(err, service.ErrCaptchaConfigInvalid) {
		// 场景开着但提供方没配好，按客户端错误返回
		respondError(c, response.CodeBadRequest, "error.captcha_unavailable", nil)
		return
	}
	if err != nil {
		respondError(c, response.CodeInternal, "error.captcha_generate_failed", err)
		return
	}

	response.Success(c, gin.H{
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}
