package authz

import (
	"fmt"
	"sort"
	"strings"
)

// EnsureRole 登记角色（不存在则创建），返回归一化后的角色名
func (s *Service) EnsureRole(name string) (string, error) {
	role, err := NormalizeRole(name)
	if err != nil {
		return "", err
	}
	if role == registryAnchor {
		return "", ErrRoleReserved
	}
	if err := s.ready(); err != nil {
		return "", err
	}

	registered, err := s.enforcer.HasNamedGroupingPolicy("g", role, registryAnchor)
	if err != nil {
		return "", fmt.Errorf("authz: check role: %w", err)
	}
	if !registered {
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, registryAnchor); err != nil {
			return "", fmt.Errorf("authz: register role: %w", err)
		}
	}
	return role, nil
}

// Roles 返回已登记角色（字典序）
func (s *Service) Roles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	links, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 1, registryAnchor)
	if err != nil {
		return nil, fmt.Errorf("authz: list roles: %w", err)
	}
	roles := make([]string, 0, len(links))
	for _, link := range links {
		if len(link) > 0 && link[0] != registryAnchor {
			roles = append(roles, link[0])
		}
	}
	sort.Strings(roles)
	return roles, nil
}

// RemoveRole 删除角色及其全部授权与成员关系，预置角色受保护
func (s *Service) RemoveRole(name string) error {
	role, err := NormalizeRole(name)
	if err != nil {
		return err
	}
	if role == registryAnchor {
		return ErrRoleReserved
	}
	if _, builtin := builtinRoleSet()[role]; builtin {
		return ErrRoleBuiltin
	}
	if err := s.ready(); err != nil {
		return err
	}

	if _, err := s.enforcer.RemoveFilteredPolicy(0, role); err != nil {
		return fmt.Errorf("authz: drop role grants: %w", err)
	}
	// 两个方向都要清：作为成员（含登记锚点）与被他人继承
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, role); err != nil {
		return fmt.Errorf("authz: drop role links: %w", err)
	}
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 1, role); err != nil {
		return fmt.Errorf("authz: drop role members: %w", err)
	}
	return nil
}

// ReplaceAdminRoles 以覆盖方式设置管理员的角色集合
func (s *Service) ReplaceAdminRoles(adminID uint, roles []string) error {
	if adminID == 0 {
		return ErrAdminIDRequired
	}
	if err := s.ready(); err != nil {
		return err
	}

	subject := AdminSubject(adminID)
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("authz: clear admin roles: %w", err)
	}
	for _, name := range roles {
		role, err := s.EnsureRole(name)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, role); err != nil {
			return fmt.Errorf("authz: assign role: %w", err)
		}
	}
	return nil
}

// AdminRoles 返回管理员当前角色（字典序）
func (s *Service) AdminRoles(adminID uint) ([]string, error) {
	if adminID == 0 {
		return nil, ErrAdminIDRequired
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	assigned, err := s.enforcer.GetRolesForUser(AdminSubject(adminID))
	if err != nil {
		return nil, fmt.Errorf("authz: get admin roles: %w", err)
	}
	roles := make([]string, 0, len(assigned))
	for _, role := range assigned {
		if strings.HasPrefix(role, rolePrefix) && role != registryAnchor {
			roles = append(roles, role)
		}
	}
	sort.Strings(roles)
	return roles, nil
}
