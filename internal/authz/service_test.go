package authz

import (
	"errors"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("init authz service: %v", err)
	}
	return svc
}

func enforce(t *testing.T, svc *Service, adminID uint, object, action string) bool {
	t.Helper()
	allow, err := svc.EnforceAdmin(adminID, object, action)
	if err != nil {
		t.Fatalf("enforce %s %s: %v", action, object, err)
	}
	return allow
}

func TestEnforceAdminWithRoleGrant(t *testing.T) {
	svc := newTestService(t)
	if err := svc.GrantToRole("ops", "/admin/artifacts/:id", "GET"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := svc.ReplaceAdminRoles(1, []string{"ops"}); err != nil {
		t.Fatalf("replace roles failed: %v", err)
	}

	if !enforce(t, svc, 1, "/api/v1/admin/artifacts/42", "get") {
		t.Fatalf("expected allow=true")
	}
	if enforce(t, svc, 1, "/api/v1/admin/artifacts/42", "POST") {
		t.Fatalf("expected allow=false for unmatched action")
	}
}

func TestReplaceAdminRolesOverrides(t *testing.T) {
	svc := newTestService(t)
	if err := svc.GrantToRole("ops", "/admin/referrals", "GET"); err != nil {
		t.Fatalf("grant ops failed: %v", err)
	}
	if err := svc.GrantToRole("finance", "/admin/commissions", "GET"); err != nil {
		t.Fatalf("grant finance failed: %v", err)
	}

	if err := svc.ReplaceAdminRoles(2, []string{"ops"}); err != nil {
		t.Fatalf("assign ops failed: %v", err)
	}
	if err := svc.ReplaceAdminRoles(2, []string{"finance"}); err != nil {
		t.Fatalf("assign finance failed: %v", err)
	}

	roles, err := svc.AdminRoles(2)
	if err != nil {
		t.Fatalf("admin roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:finance" {
		t.Fatalf("roles want [role:finance], got=%v", roles)
	}

	if enforce(t, svc, 2, "/admin/referrals", "GET") {
		t.Fatalf("expected old role permission removed")
	}
	if !enforce(t, svc, 2, "/admin/commissions", "GET") {
		t.Fatalf("expected new role permission granted")
	}
}

func TestGrantRejectsObjectOutsideConsole(t *testing.T) {
	svc := newTestService(t)
	err := svc.GrantToRole("ops", "/public/showcase", "GET")
	if !errors.Is(err, ErrOutsideConsole) {
		t.Fatalf("want ErrOutsideConsole, got %v", err)
	}
}

func TestEffectiveGrantsMergesRoleAndDirect(t *testing.T) {
	svc := newTestService(t)
	if err := svc.GrantToRole("ops", "/admin/artifacts", "GET"); err != nil {
		t.Fatalf("grant role failed: %v", err)
	}
	if err := svc.ReplaceAdminRoles(7, []string{"ops"}); err != nil {
		t.Fatalf("replace roles failed: %v", err)
	}

	grants, err := svc.EffectiveGrants(7)
	if err != nil {
		t.Fatalf("effective grants failed: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("grants want 1 entry, got=%v", grants)
	}
	if grants[0].Subject != "role:ops" || grants[0].Object != "/admin/artifacts" || grants[0].Action != "GET" {
		t.Fatalf("unexpected grant: %+v", grants[0])
	}
}

func TestNormalizeRoleLowersAndPrefixes(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{raw: "Growth Ops", want: "role:growth_ops"},
		{raw: "role:finance", want: "role:finance"},
		{raw: "FINANCE", want: "role:finance"},
	}
	for _, tc := range cases {
		got, err := NormalizeRole(tc.raw)
		if err != nil {
			t.Fatalf("normalize role %q failed: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("normalize role %q want %q got %q", tc.raw, tc.want, got)
		}
	}
	if _, err := NormalizeRole("  "); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("want ErrRoleRequired for blank role, got %v", err)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{raw: "/api/v1/admin/referrals/:id", want: "/admin/referrals/:id"},
		{raw: "/admin/referrals/:id", want: "/admin/referrals/:id"},
		{raw: "admin/referrals", want: "/admin/referrals"},
		{raw: "/api/v1", want: "/"},
		{raw: "", want: "/"},
	}
	for _, tc := range cases {
		if got := NormalizeObject(tc.raw); got != tc.want {
			t.Fatalf("normalize object raw=%q want=%q got=%q", tc.raw, tc.want, got)
		}
	}
}

func TestSeedBuiltinRoles(t *testing.T) {
	svc := newTestService(t)
	if err := svc.SeedBuiltinRoles(); err != nil {
		t.Fatalf("seed builtin roles failed: %v", err)
	}

	roles, err := svc.Roles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	missing := map[string]bool{
		"role:readonly_auditor": true,
		"role:growth_ops":       true,
		"role:support":          true,
		"role:finance":          true,
	}
	for _, role := range roles {
		delete(missing, role)
	}
	if len(missing) != 0 {
		t.Fatalf("builtin roles missing: %v", missing)
	}

	if err := svc.ReplaceAdminRoles(3, []string{"growth_ops"}); err != nil {
		t.Fatalf("replace roles failed: %v", err)
	}

	if !enforce(t, svc, 3, "/admin/settings", "GET") {
		t.Fatalf("expected inherited readonly permission")
	}
	if enforce(t, svc, 3, "/admin/settings", "DELETE") {
		t.Fatalf("expected write denied for inherited readonly")
	}
	if !enforce(t, svc, 3, "/admin/showcase/refresh", "POST") {
		t.Fatalf("expected growth ops refresh permission")
	}
}

func TestRemoveRoleProtectsBuiltin(t *testing.T) {
	svc := newTestService(t)
	if err := svc.SeedBuiltinRoles(); err != nil {
		t.Fatalf("seed builtin roles failed: %v", err)
	}
	if err := svc.RemoveRole("growth_ops"); !errors.Is(err, ErrRoleBuiltin) {
		t.Fatalf("want ErrRoleBuiltin, got %v", err)
	}

	if err := svc.GrantToRole("temp", "/admin/accounts", "GET"); err != nil {
		t.Fatalf("grant temp failed: %v", err)
	}
	if err := svc.RemoveRole("temp"); err != nil {
		t.Fatalf("remove temp failed: %v", err)
	}
	roles, err := svc.Roles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	for _, role := range roles {
		if role == "role:temp" {
			t.Fatalf("role:temp should be removed, roles=%v", roles)
		}
	}
}
