package cache

import (
	"context"
	"fmt"
	"time"
)

const showcaseVersionKey = "showcase:ver"

// ShowcaseVersion 读取展示位缓存版本号，未初始化时视为 1
func ShowcaseVersion(ctx context.Context) int64 {
	if !Enabled() {
		return 1
	}
	var version int64
	hit, err := GetJSON(ctx, showcaseVersionKey, &version)
	if err != nil || !hit || version < 1 {
		return 1
	}
	return version
}

// BumpShowcaseVersion 重排后递增版本号，旧页面缓存随 TTL 自然过期
func BumpShowcaseVersion(ctx context.Context) error {
	if !Enabled() {
		return nil
	}
	_, err := Incr(ctx, showcaseVersionKey)
	return err
}

// ShowcasePageKey 构造展示位分页缓存键（携带版本号实现整体失效）
func ShowcasePageKey(version int64, boostTier string, page, pageSize int) string {
	if boostTier == "" {
		boostTier = "all"
	}
	return fmt.Sprintf("showcase:v%d:%s:%d:%d", version, boostTier, page, pageSize)
}

// GetShowcasePage 读取展示位分页缓存
func GetShowcasePage(ctx context.Context, key string, dest interface{}) (bool, error) {
	return GetJSON(ctx, key, dest)
}

// SetShowcasePage 写入展示位分页缓存
func SetShowcasePage(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, key, value, ttl)
}
