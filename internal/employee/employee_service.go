package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"go-hrpayroll/internal/domain"
	employeeerrors "go-hrpayroll/internal/employee/errors"
	"go-hrpayroll/internal/events"
	"go-hrpayroll/internal/messaging/kafka"
	"go-hrpayroll/internal/shared/contextutil"
	"go-hrpayroll/internal/shared/counter"
	"go-hrpayroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

const (
	OptionsCacheKey = "employees:options"
	optionsTTL      = time.Hour
)

// CacheObserver receives hit/miss notifications; *metrics.Metrics fits.
type CacheObserver interface {
	CacheLookup(cache string, hit bool)
}

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]OptionResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
	GetPermissions(ctx context.Context, id string) ([]domain.PermissionGrant, error)
	UpdatePermissions(ctx context.Context, id string, req UpdatePermissionsRequest) ([]domain.PermissionGrant, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	rdb     redis.Cmdable
	sf      *singleflight.Group
	metrics CacheObserver
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counter counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb redis.Cmdable,
	metrics CacheObserver,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counter,
		outbox:  outboxRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		metrics: metrics,
		now:     time.Now,
		logger:  l,
	}
}

// DefaultPassword is the initial password of a provisioned account: the
// lowercase name with spaces removed, followed by "@123".
func DefaultPassword(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "") + "@123"
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
	)

	doj, err := dateutil.ParseDate(req.DateOfJoining)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidDateOfJoining
	}
	if req.Salary < 0 {
		return EmployeeResponse{}, employeeerrors.ErrInvalidSalary
	}
	role := req.Role
	if role == "" {
		role = domain.RoleEmployee
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword(req.Name)), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("create employee hash password failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	next, err := s.counter.WithTx(tx).GetNextValue(ctx, counter.TypeEmployeeCode)
	if err != nil {
		s.logger.Error("create employee generate code failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	now := s.now().UTC()
	empl := &Employee{
		ID:            uuid.New(),
		EmployeeCode:  counter.FormatEmployeeCode(next),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         req.Phone,
		Address:       req.Address,
		DateOfJoining: doj,
		Level:         req.Level,
		Experience:    dateutil.CompletedYears(doj, now),
		Role:          role,
		Designation:   req.Designation,
		Salary:        decimal.NewFromFloat(req.Salary).Round(2),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := qtx.CreateAccount(ctx, &Account{
		ID:         uuid.New(),
		EmployeeID: empl.ID,
		Email:      empl.Email,
		Password:   string(hashed),
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		s.logger.Error("create employee account persist failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event, err := kafka.NewPendingEvent(rid, "employee", empl.ID.String(),
			events.EmployeeCreatedType, events.EmployeeCreatedTopic,
			events.EmployeeCreatedEvent{
				EventType:     events.EmployeeCreatedType,
				RequestID:     rid,
				EmployeeID:    empl.ID.String(),
				Name:          empl.Name,
				DateOfJoining: dateutil.Format(empl.DateOfJoining),
				Salary:        empl.Salary.StringFixed(2),
				OccurredAt:    now,
			})
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return EmployeeResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("create employee outbox persist failed",
				zap.String("request_id", rid),
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx)
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("employee_code", empl.EmployeeCode),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(empls), nil
}

func (s *service) GetOptions(ctx context.Context) ([]OptionResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, OptionsCacheKey).Result(); err == nil {
			var resp []OptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				s.observe(true)
				return resp, nil
			}
		}
	}
	s.observe(false)

	v, err, _ := s.sf.Do(OptionsCacheKey, func() (interface{}, error) {
		empls, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]OptionResponse, len(empls))
		for i, e := range empls {
			resp[i] = OptionResponse{
				ID:           e.ID.String(),
				EmployeeCode: e.EmployeeCode,
				Name:         e.Name,
				Designation:  e.Designation,
			}
		}

		if s.rdb != nil {
			if data, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, OptionsCacheKey, data, optionsTTL).Err(); err != nil {
					s.logger.Warn("cache employee options failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]OptionResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	doj, err := dateutil.ParseDate(req.DateOfJoining)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidDateOfJoining
	}
	if req.Salary < 0 {
		return EmployeeResponse{}, employeeerrors.ErrInvalidSalary
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	now := s.now().UTC()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	emailChanged := email != empl.Email

	empl.Name = strings.TrimSpace(req.Name)
	empl.Email = email
	empl.Phone = req.Phone
	empl.Address = req.Address
	empl.DateOfJoining = doj
	empl.Level = req.Level
	empl.Experience = dateutil.CompletedYears(doj, now)
	empl.Designation = req.Designation
	empl.Salary = decimal.NewFromFloat(req.Salary).Round(2)
	empl.UpdatedAt = now

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	if emailChanged {
		if err := qtx.UpdateAccountEmail(ctx, id, email); err != nil {
			s.logger.Error("update employee account email failed", zap.Error(err))
			return EmployeeResponse{}, mapRepositoryError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx)
	s.logger.Info("update employee success", zap.String("employee_id", id))
	return mapToResponse(*empl), nil
}

func (s *service) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	if !domain.ValidRole(req.Role) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidRole
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update role begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	n, err := qtx.UpdateRole(ctx, id, req.Role)
	if err != nil {
		s.logger.Error("update role persist failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	if n == 0 {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
	}
	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update role commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.logger.Info("update role success", zap.String("employee_id", id), zap.String("role", req.Role))
	return mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete employee begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	n, err := qtx.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}
	if n == 0 {
		return employeeerrors.ErrEmployeeNotFound
	}
	if err := qtx.DeleteAccount(ctx, id); err != nil {
		s.logger.Error("delete employee account failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete employee commit failed", zap.Error(err))
		return err
	}

	s.invalidateOptions(ctx)
	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func (s *service) GetPermissions(ctx context.Context, id string) ([]domain.PermissionGrant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, mapRepositoryError(err)
	}
	perms, err := s.repo.ListPermissions(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapGrants(perms), nil
}

// UpdatePermissions replaces the employee's operation grants wholesale.
func (s *service) UpdatePermissions(ctx context.Context, id string, req UpdatePermissionsRequest) ([]domain.PermissionGrant, error) {
	empID, err := uuid.Parse(id)
	if err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}

	perms := make([]Permission, 0, len(req.Permissions))
	seen := make(map[string]bool, len(req.Permissions))
	for _, g := range req.Permissions {
		code := strings.ToLower(strings.TrimSpace(g.Code))
		resource, action, ok := strings.Cut(code, ":")
		if !ok || resource == "" || action == "" {
			return nil, employeeerrors.ErrInvalidPermissionCode
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		perms = append(perms, Permission{EmployeeID: empID, Code: code, Access: g.Access})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update permissions begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if _, err := qtx.FindByID(ctx, id); err != nil {
		return nil, mapRepositoryError(err)
	}
	if err := qtx.ReplacePermissions(ctx, id, perms); err != nil {
		s.logger.Error("update permissions persist failed", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update permissions commit failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("update permissions success", zap.String("employee_id", id), zap.Int("count", len(perms)))
	return mapGrants(perms), nil
}

func (s *service) invalidateOptions(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, OptionsCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", OptionsCacheKey),
		)
	}
}

func (s *service) observe(hit bool) {
	if s.metrics != nil {
		s.metrics.CacheLookup("employee_options", hit)
	}
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:            empl.ID.String(),
		EmployeeCode:  empl.EmployeeCode,
		Name:          empl.Name,
		Email:         empl.Email,
		Phone:         empl.Phone,
		Address:       empl.Address,
		DateOfJoining: dateutil.Format(empl.DateOfJoining),
		Level:         empl.Level,
		Experience:    empl.Experience,
		Role:          empl.Role,
		Designation:   empl.Designation,
		Salary:        empl.Salary.InexactFloat64(),
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}

func mapGrants(perms []Permission) []domain.PermissionGrant {
	res := make([]domain.PermissionGrant, len(perms))
	for i, p := range perms {
		res[i] = domain.PermissionGrant{Code: p.Code, Access: p.Access}
	}
	return res
}
