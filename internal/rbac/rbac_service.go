package rbac

import (
	"go-presence/internal/domain"

	"github.com/casbin/casbin/v2"
)

const (
	ResourcePresence = "presence"

	// ActionReadAny allows reading another user's upcoming days.
	ActionReadAny = "read_any"
	// ActionWriteAny allows upserting a day record on behalf of another user.
	ActionWriteAny = "write_any"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
}

func NewService(enforcer *casbin.Enforcer) Service {
	return &service{enforcer: enforcer}
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	if req.Role == "" {
		return false, nil
	}
	return s.enforcer.Enforce(req.Role, req.Resource, req.Action)
}
