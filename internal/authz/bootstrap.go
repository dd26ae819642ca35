package authz

import (
	"github.com/storefront/internal/constants"
)

// RoleSeed 预置角色
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds affiliate 与 admin 均继承 user，admin 不继承 affiliate
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleUser,
			Policies: []Policy{
				{Object: "/me", Action: "GET"},
				{Object: "/register-affiliate", Action: "POST"},
				{Object: "/create-payment-intent", Action: "POST"},
			},
		},
		{
			Role:     constants.RoleAffiliate,
			Inherits: []string{constants.RoleUser},
			Policies: []Policy{
				{Object: "/affiliate/*", Action: "GET"},
			},
		},
		{
			Role:     constants.RoleAdmin,
			Inherits: []string{constants.RoleUser},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 写入预置角色矩阵，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	for _, seed := range BuiltinRoleSeeds() {
		subject, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentSubject, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if err := s.inherit(subject, parentSubject); err != nil {
				return err
			}
		}
		for _, policy := range seed.Policies {
			if err := s.grant(subject, policy); err != nil {
				return err
			}
		}
	}
	return nil
}
