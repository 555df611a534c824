package auth

import (
	"os"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// defaultModel is the RBAC model used when no model file is configured.
// Paths match with keyMatch2 so /users/:id style routes work, methods with
// a regex.
const defaultModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// CasbinService wraps the enforcer guarding the stub's admin surface.
type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService builds an enforcer backed by the stub database. When
// modelPath does not exist the embedded default model is used.
func NewCasbinService(db *gorm.DB, modelPath string) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}

	var enforcer *casbin.Enforcer
	if _, statErr := os.Stat(modelPath); statErr == nil {
		enforcer, err = casbin.NewEnforcer(modelPath, adp)
	} else {
		m, mErr := model.NewModelFromString(defaultModel)
		if mErr != nil {
			return nil, mErr
		}
		enforcer, err = casbin.NewEnforcer(m, adp)
	}
	if err != nil {
		return nil, err
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	return &CasbinService{E: enforcer}, nil
}

// SeedPolicies installs the default role grants if the policy table is
// empty.
func (s *CasbinService) SeedPolicies() error {
	policies, err := s.E.GetPolicy()
	if err != nil {
		return err
	}
	if len(policies) > 0 {
		return nil
	}
	s.E.AddPolicy("role_admin", "/users", "GET")
	s.E.AddPolicy("role_admin", "/users/:id", "(GET|DELETE)")
	s.E.AddPolicy("role_admin", "/users/:id/activate", "PATCH")
	s.E.AddPolicy("role_admin", "/users/:id/deactivate", "PATCH")
	s.E.AddPolicy("role_admin", "/registration-requests", "GET")
	s.E.AddPolicy("role_admin", "/registration-requests/:id", "GET")
	s.E.AddPolicy("role_admin", "/registration-requests/:id/approve", "POST")
	s.E.AddPolicy("role_admin", "/registration-requests/:id/deny", "POST")
	s.E.AddPolicy("role_admin", "/profile/:id", "GET")
	s.E.AddPolicy("role_user", "/profile", "(GET|PATCH)")
	s.E.AddGroupingPolicy("role_admin", "role_user")
	return s.E.SavePolicy()
}
