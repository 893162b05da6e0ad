package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/sitewave-growth/internal/models"
)

// authStateTTL 快照过期后中间件会回源数据库重建
const authStateTTL = 10 * time.Minute

// AdminAuthState 管理员鉴权快照，仅存在于服务端 Redis
// token_invalid_before 为 Unix 秒，0 表示未设置
type AdminAuthState struct {
	AdminID            uint   `json:"admin_id"`
	Username           string `json:"username"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	IsSuper            bool   `json:"is_super"`
	Disabled           bool   `json:"disabled"`
	UpdatedAt          int64  `json:"updated_at"`
}

func authStateKey(adminID uint) string {
	return fmt.Sprintf("auth:admin:%d", adminID)
}

// BuildAdminAuthState 从管理员模型构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	var invalidBefore int64
	if admin.TokenInvalidBefore != nil {
		invalidBefore = admin.TokenInvalidBefore.Unix()
	}
	return &AdminAuthState{
		AdminID:            admin.ID,
		Username:           admin.Username,
		TokenVersion:       admin.TokenVersion,
		TokenInvalidBefore: invalidBefore,
		IsSuper:            admin.IsSuper,
		Disabled:           admin.Disabled,
		UpdatedAt:          time.Now().Unix(),
	}
}

// GetAdminAuthState 读取管理员鉴权快照，未命中时返回 hit=false
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	if adminID == 0 {
		return nil, false, nil
	}
	state := new(AdminAuthState)
	hit, err := GetJSON(ctx, authStateKey(adminID), state)
	if err != nil {
		return nil, false, err
	}
	if !hit {
		return nil, false, nil
	}
	return state, true, nil
}

// SetAdminAuthState 写入管理员鉴权快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey(state.AdminID), state, authStateTTL)
}

// DelAdminAuthState 删除管理员鉴权快照
func DelAdminAuthState(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return nil
	}
	return Del(ctx, authStateKey(adminID))
}
