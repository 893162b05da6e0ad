package authz

import "fmt"

// GrantSpec 预置授权（对象 + 动作）
type GrantSpec struct {
	Object string
	Action string
}

// RoleSeed 预置角色：继承关系与默认授权
type RoleSeed struct {
	Role     string
	Inherits []string
	Grants   []GrantSpec
}

// BuiltinRoleSeeds 管理端预置角色矩阵
// 审计角色只读全站，运营、客服、财务在其上叠加各自的写权限
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Grants: []GrantSpec{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     "growth_ops",
			Inherits: []string{"readonly_auditor"},
			Grants: []GrantSpec{
				{Object: "/admin/artifacts/:id/suspend", Action: "POST"},
				{Object: "/admin/artifacts/:id/unsuspend", Action: "POST"},
				{Object: "/admin/artifacts/:id/rescore", Action: "POST"},
				{Object: "/admin/showcase/refresh", Action: "POST"},
				{Object: "/admin/settings/growth", Action: "PUT"},
				{Object: "/admin/settings/showcase", Action: "PUT"},
				{Object: "/admin/settings/dashboard", Action: "PUT"},
			},
		},
		{
			Role:     "support",
			Inherits: []string{"readonly_auditor"},
			Grants: []GrantSpec{
				{Object: "/admin/accounts/:id/disable", Action: "POST"},
				{Object: "/admin/accounts/:id/enable", Action: "POST"},
			},
		},
		{
			Role:     "finance",
			Inherits: []string{"readonly_auditor"},
			Grants: []GrantSpec{
				{Object: "/admin/commissions/:id/paid", Action: "POST"},
				{Object: "/admin/commissions/:id/reject", Action: "POST"},
				{Object: "/admin/commissions/confirm-due", Action: "POST"},
				{Object: "/admin/settings/commission", Action: "PUT"},
			},
		},
	}
}

func builtinRoleSet() map[string]struct{} {
	seeds := BuiltinRoleSeeds()
	set := make(map[string]struct{}, len(seeds))
	for _, seed := range seeds {
		if role, err := NormalizeRole(seed.Role); err == nil {
			set[role] = struct{}{}
		}
	}
	return set
}

// SeedBuiltinRoles 登记预置角色并补齐默认授权，可重复执行
func (s *Service) SeedBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("authz: link builtin inheritance: %w", err)
			}
		}
		for _, grant := range seed.Grants {
			if err := s.GrantToRole(role, grant.Object, grant.Action); err != nil {
				return err
			}
		}
	}
	return nil
}
