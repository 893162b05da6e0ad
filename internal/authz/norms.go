package authz

import (
	"fmt"
	"strings"
)

const (
	apiPrefix     = "/api/v1"
	consolePrefix = "/admin"
)

// AdminSubject 管理员在策略中的主体标识
func AdminSubject(adminID uint) string {
	return fmt.Sprintf(adminSubjectFmt, adminID)
}

// NormalizeRole 统一角色名：小写、空白折叠为下划线、强制 role: 前缀
func NormalizeRole(name string) (string, error) {
	cleaned := strings.ToLower(strings.Join(strings.Fields(name), "_"))
	cleaned = strings.TrimPrefix(cleaned, rolePrefix)
	if cleaned == "" {
		return "", ErrRoleRequired
	}
	return rolePrefix + cleaned, nil
}

// NormalizeObject 统一资源路径：补全前导斜杠并剥掉 API 版本前缀
func NormalizeObject(object string) string {
	cleaned := strings.TrimSpace(object)
	if cleaned == "" {
		return "/"
	}
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	if cleaned == apiPrefix {
		return "/"
	}
	if rest, ok := strings.CutPrefix(cleaned, apiPrefix+"/"); ok {
		return "/" + rest
	}
	return cleaned
}

// NormalizeAction 统一动作为大写 HTTP 方法
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}

// consoleObject 校验授权对象落在管理端路径内
// 公开接口与服务间接口不走 RBAC，管理端之外的授权一律拒绝
func consoleObject(object string) (string, error) {
	normalized := NormalizeObject(object)
	if normalized != consolePrefix && !strings.HasPrefix(normalized, consolePrefix+"/") {
		return "", ErrOutsideConsole
	}
	return normalized, nil
}
