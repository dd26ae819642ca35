package authz

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	return svc
}

func TestBuiltinRoleMatrix(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	cases := []struct {
		role   string
		path   string
		method string
		want   bool
	}{
		{role: "user", path: "/me", method: "GET", want: true},
		{role: "user", path: "/register-affiliate", method: "POST", want: true},
		{role: "user", path: "/create-payment-intent", method: "post", want: true},
		{role: "user", path: "/affiliate/stats", method: "GET", want: false},
		{role: "user", path: "/admin/products", method: "POST", want: false},
		{role: "affiliate", path: "/me", method: "GET", want: true},
		{role: "affiliate", path: "/affiliate/link/12", method: "GET", want: true},
		{role: "affiliate", path: "/affiliate/stats", method: "POST", want: false},
		{role: "affiliate", path: "/admin/affiliates", method: "GET", want: false},
		{role: "admin", path: "/admin/products/3", method: "DELETE", want: true},
		{role: "admin", path: "/admin/affiliates/7/payout", method: "POST", want: true},
		{role: "admin", path: "/me", method: "GET", want: true},
		{role: "admin", path: "/affiliate/stats", method: "GET", want: false},
		{role: "", path: "/me", method: "GET", want: false},
		{role: "guest", path: "/me", method: "GET", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.role+tc.method+tc.path, func(t *testing.T) {
			allow, err := svc.EnforceRole(tc.role, tc.path, tc.method)
			if err != nil {
				t.Fatalf("enforce failed: %v", err)
			}
			if allow != tc.want {
				t.Fatalf("role=%s %s %s allow=%v want %v", tc.role, tc.method, tc.path, allow, tc.want)
			}
		})
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	policies, err := svc.RolePolicies("user")
	if err != nil {
		t.Fatalf("get role policies failed: %v", err)
	}
	want := []Policy{
		{Object: "/create-payment-intent", Action: "POST"},
		{Object: "/me", Action: "GET"},
		{Object: "/register-affiliate", Action: "POST"},
	}
	if !reflect.DeepEqual(policies, want) {
		t.Fatalf("unexpected user policies: %+v", policies)
	}

	adminPolicies, err := svc.RolePolicies("role:admin")
	if err != nil {
		t.Fatalf("get admin policies failed: %v", err)
	}
	if len(adminPolicies) != 1 || adminPolicies[0].Object != "/admin/*" || adminPolicies[0].Action != "*" {
		t.Fatalf("unexpected admin policies: %+v", adminPolicies)
	}
}

func TestNilServiceIsUnavailable(t *testing.T) {
	var svc *Service
	if _, err := svc.EnforceRole("admin", "/admin/products", "POST"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from bootstrap, got %v", err)
	}
}

func TestNormalizeHelpers(t *testing.T) {
	if role, err := NormalizeRole(" Admin "); err != nil || role != "role:admin" {
		t.Fatalf("unexpected role: %s err=%v", role, err)
	}
	if role, err := NormalizeRole("role:affiliate"); err != nil || role != "role:affiliate" {
		t.Fatalf("prefixed role should be kept: %s err=%v", role, err)
	}
	if _, err := NormalizeRole("role:"); !errors.Is(err, ErrRoleRequired) {
		t.Fatalf("expected ErrRoleRequired for empty role, got %v", err)
	}
	if got := NormalizeObject("admin/products"); got != "/admin/products" {
		t.Fatalf("unexpected object: %s", got)
	}
	if got := NormalizeAction(" post "); got != "POST" {
		t.Fatalf("unexpected action: %s", got)
	}
}
