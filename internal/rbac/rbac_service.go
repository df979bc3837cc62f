package rbac

import (
	"context"
	"strings"
	"sync"

	"go-hrpayroll/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

type Service interface {
	Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

// loadPolicyUnlocked replaces the enforcer policy with the grants relevant to
// one subject: its role's permissions and its own overrides.
func (s *service) loadPolicyUnlocked(ctx context.Context, employeeID, role string) error {
	s.enforcer.ClearPolicy()

	rolePerms, err := s.repo.GetRolePermissions(ctx, role)
	if err != nil {
		return err
	}
	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.Role, rp.Resource, rp.Action, "allow"); err != nil {
			return err
		}
	}

	grants, err := s.repo.GetEmployeeGrants(ctx, employeeID)
	if err != nil {
		return err
	}
	for _, g := range grants {
		resource, action, ok := strings.Cut(g.Code, ":")
		if !ok {
			s.logger.Warn("skip malformed permission code", zap.String("employee_id", employeeID), zap.String("code", g.Code))
			continue
		}
		eft := "deny"
		if g.Access {
			eft = "allow"
		}
		if _, err := s.enforcer.AddPolicy(g.EmployeeID, resource, action, eft); err != nil {
			return err
		}
	}

	return nil
}

func (s *service) Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error) {
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		r, err := s.repo.GetEmployeeRole(ctx, req.EmployeeID)
		if err != nil {
			return false, err
		}
		role = strings.ToUpper(r)
	}

	if role == domain.RoleAdmin {
		return true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadPolicyUnlocked(ctx, req.EmployeeID, role); err != nil {
		s.logger.Error("load rbac policy failed", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.EmployeeID, role, req.Resource, req.Action)
	if err != nil {
		return false, err
	}

	s.logger.Debug("rbac enforce",
		zap.String("employee_id", req.EmployeeID),
		zap.String("role", role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)

	return allowed, nil
}
