package authz

import (
	"fmt"
	"sort"
	"strings"
)

// Grant 授权条目，主体为角色或管理员
type Grant struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

func grantLess(a, b Grant) bool {
	if a.Subject != b.Subject {
		return a.Subject < b.Subject
	}
	if a.Object != b.Object {
		return a.Object < b.Object
	}
	return a.Action < b.Action
}

// GrantToRole 给角色授予一条管理端授权
func (s *Service) GrantToRole(role, object, action string) error {
	normalizedRole, err := s.EnsureRole(role)
	if err != nil {
		return err
	}
	normalizedObject, err := consoleObject(object)
	if err != nil {
		return err
	}
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return ErrActionRequired
	}

	if _, err := s.enforcer.AddPolicy(normalizedRole, normalizedObject, normalizedAction); err != nil {
		return fmt.Errorf("authz: add grant: %w", err)
	}
	return nil
}

// RevokeFromRole 撤销角色的一条授权
// 撤销不限制对象范围，历史遗留条目也要能清掉
func (s *Service) RevokeFromRole(role, object, action string) error {
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return ErrActionRequired
	}
	if err := s.ready(); err != nil {
		return err
	}

	if _, err := s.enforcer.RemovePolicy(normalizedRole, NormalizeObject(object), normalizedAction); err != nil {
		return fmt.Errorf("authz: remove grant: %w", err)
	}
	return nil
}

// RoleGrants 返回角色的全部授权（排序稳定）
func (s *Service) RoleGrants(role string) ([]Grant, error) {
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	grants, err := s.subjectGrants(normalizedRole)
	if err != nil {
		return nil, err
	}
	sort.Slice(grants, func(i, j int) bool { return grantLess(grants[i], grants[j]) })
	return grants, nil
}

// EffectiveGrants 返回管理员生效授权：直连条目加上所属角色的条目，去重合并
func (s *Service) EffectiveGrants(adminID uint) ([]Grant, error) {
	if adminID == 0 {
		return nil, ErrAdminIDRequired
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	roles, err := s.AdminRoles(adminID)
	if err != nil {
		return nil, err
	}
	subjects := append([]string{AdminSubject(adminID)}, roles...)

	seen := make(map[Grant]struct{})
	merged := make([]Grant, 0)
	for _, subject := range subjects {
		grants, err := s.subjectGrants(subject)
		if err != nil {
			return nil, err
		}
		for _, grant := range grants {
			if _, dup := seen[grant]; dup {
				continue
			}
			seen[grant] = struct{}{}
			merged = append(merged, grant)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return grantLess(merged[i], merged[j]) })
	return merged, nil
}

func (s *Service) subjectGrants(subject string) ([]Grant, error) {
	rules, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("authz: read grants: %w", err)
	}
	grants := make([]Grant, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		grants = append(grants, Grant{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return grants, nil
}
