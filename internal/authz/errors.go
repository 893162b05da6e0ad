package authz

import "errors"

// 授权模块哨兵错误，处理层用 errors.Is 区分参数类与系统类失败
var (
	ErrUnavailable     = errors.New("authz: enforcer not initialized")
	ErrRoleRequired    = errors.New("authz: role name is required")
	ErrRoleReserved    = errors.New("authz: role name is reserved")
	ErrRoleBuiltin     = errors.New("authz: builtin role cannot be removed")
	ErrActionRequired  = errors.New("authz: action is required")
	ErrAdminIDRequired = errors.New("authz: admin id is required")
	ErrOutsideConsole  = errors.New("authz: grant object must live under /admin")
)
