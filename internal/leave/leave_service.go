package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-hrpayroll/internal/events"
	leaveerrors "go-hrpayroll/internal/leave/errors"
	"go-hrpayroll/internal/leavepolicy"
	leavepolicyerrors "go-hrpayroll/internal/leavepolicy/errors"
	"go-hrpayroll/internal/messaging/kafka"
	"go-hrpayroll/internal/shared/contextutil"
	"go-hrpayroll/internal/shared/dateutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Recorder receives ledger counters; *metrics.Metrics fits.
type Recorder interface {
	LeaveSubmitted(ok bool)
	LeaveDecided(status string)
}

type Service interface {
	Create(ctx context.Context, actorID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context) ([]LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	GetPending(ctx context.Context) ([]LeaveResponse, error)
	PendingCount(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, actorID, id string, req UpdateStatusRequest) (LeaveResponse, error)
	Balances(ctx context.Context, employeeID string) ([]Balance, error)
	MarkSeen(ctx context.Context, employeeID string) (int64, error)
	DecidedUnseenCount(ctx context.Context, employeeID string) (int64, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	policies leavepolicy.Provider
	outbox   kafka.OutboxRepository
	metrics  Recorder
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	policies leavepolicy.Provider,
	outbox kafka.OutboxRepository,
	metrics Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		policies: policies,
		outbox:   outbox,
		metrics:  metrics,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateLeaveRequest) (resp LeaveResponse, err error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actorID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("from_date", req.FromDate),
		zap.String("to_date", req.ToDate),
	)
	defer func() {
		if s.metrics != nil {
			s.metrics.LeaveSubmitted(err == nil)
		}
	}()

	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	from, err := dateutil.ParseDate(req.FromDate)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	to, err := dateutil.ParseDate(req.ToDate)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	if from.After(to) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.LockEmployee(ctx, req.EmployeeID); err != nil {
		s.logger.Error("create leave employee lock failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	employee, err := qtx.FindEmployee(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
		}
		s.logger.Error("create leave employee lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	policy, err := s.policies.Active(ctx)
	if err != nil {
		if !errors.Is(err, leavepolicyerrors.ErrPolicyNotFound) {
			s.logger.Error("create leave policy load failed", zap.Error(err))
		}
		return LeaveResponse{}, err
	}

	existing, err := qtx.FindActiveOverlapping(ctx, req.EmployeeID, from, to)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	used, err := qtx.SumApprovedDaysSince(ctx, req.EmployeeID, req.LeaveType, dateutil.StartOfYear(s.now().Year()))
	if err != nil {
		s.logger.Error("create leave usage lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	eval, err := ValidateSubmission(policy, existing, req.LeaveType, from, to, used)
	if err != nil {
		s.logger.Warn("create leave rejected",
			zap.String("request_id", rid),
			zap.String("employee_id", req.EmployeeID),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	now := s.now().UTC()
	l := &Leave{
		ID:           uuid.New(),
		EmployeeID:   employeeUUID,
		EmployeeName: employee.Name,
		LeaveType:    req.LeaveType,
		FromDate:     from,
		ToDate:       to,
		TotalDays:    eval.TotalDays,
		Reason:       req.Reason,
		Status:       StatusPending,
		Mode:         eval.TypePolicy.Mode,
		LWPDays:      eval.LWPDays,
		CreatedBy:    parseUUIDPtr(actorID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("total_days", eval.TotalDays),
		zap.Int("lwp_days", eval.LWPDays),
	)

	resp = mapToResponse(*l)
	resp.Advisory = eval.Advisory
	return resp, nil
}

// GetAll annotates every request with its eligibility warning. Usage is
// aggregated once for the whole ledger instead of per request.
func (s *service) GetAll(ctx context.Context) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("list leaves failed", zap.Error(err))
		return nil, err
	}

	policy, err := s.policies.Active(ctx)
	if err != nil && !errors.Is(err, leavepolicyerrors.ErrPolicyNotFound) {
		s.logger.Error("list leaves policy load failed", zap.Error(err))
		return nil, err
	}

	yearStart := dateutil.StartOfYear(s.now().Year())
	usage, err := s.repo.ApprovedDaysSinceByEmployeeType(ctx, yearStart)
	if err != nil {
		s.logger.Error("list leaves usage lookup failed", zap.Error(err))
		return nil, err
	}

	out := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		resp := mapToResponse(l)
		warning := Annotate(policy, l, usage[UsageKey{EmployeeID: l.EmployeeID, LeaveType: l.LeaveType}], yearStart)
		resp.EligibilityWarning = &warning
		out = append(out, resp)
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}
	leaves, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetPending(ctx context.Context) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindByStatus(ctx, StatusPending)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) PendingCount(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, StatusPending)
}

func (s *service) UpdateStatus(ctx context.Context, actorID, id string, req UpdateStatusRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update leave status requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("status", req.Status),
	)

	decision := Decision{
		Status:    req.Status,
		Message:   req.Message,
		DecidedBy: parseUUIDPtr(actorID),
		DecidedAt: s.now().UTC(),
	}
	if req.FromDate != "" && req.ToDate != "" {
		from, err := dateutil.ParseDate(req.FromDate)
		if err != nil {
			return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
		}
		to, err := dateutil.ParseDate(req.ToDate)
		if err != nil {
			return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
		}
		decision.ApprovedFrom = &from
		decision.ApprovedTo = &to
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave status begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("update leave status lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := ApplyDecision(l, decision); err != nil {
		s.logger.Warn("update leave status rejected",
			zap.String("leave_id", id),
			zap.String("current_status", l.Status),
			zap.String("target_status", req.Status),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	l.UpdatedAt = decision.DecidedAt

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("update leave status persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if s.outbox != nil {
		resp := mapToResponse(*l)
		event, err := kafka.NewPendingEvent(rid, "leave", l.ID.String(),
			events.LeaveStatusChangedType, events.LeaveStatusChangedTopic,
			events.LeaveStatusChangedEvent{
				EventType:         events.LeaveStatusChangedType,
				LeaveID:           l.ID.String(),
				EmployeeID:        l.EmployeeID.String(),
				LeaveType:         l.LeaveType,
				Status:            l.Status,
				ApprovedFromDate:  resp.ApprovedFromDate,
				ApprovedToDate:    resp.ApprovedToDate,
				ApprovedTotalDays: l.ApprovedTotalDays,
				DecidedBy:         actorID,
				OccurredAt:        decision.DecidedAt,
			})
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return LeaveResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("update leave status outbox persist failed",
				zap.String("leave_id", l.ID.String()),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave status commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.LeaveDecided(l.Status)
	}
	s.logger.Info("update leave status success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("status", l.Status),
		zap.Int("approved_total_days", l.ApprovedTotalDays),
	)

	return mapToResponse(*l), nil
}

// Balances is empty, not an error, while no policy is configured.
func (s *service) Balances(ctx context.Context, employeeID string) ([]Balance, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}

	policy, err := s.policies.Active(ctx)
	if err != nil {
		if errors.Is(err, leavepolicyerrors.ErrPolicyNotFound) {
			return []Balance{}, nil
		}
		return nil, err
	}

	used, err := s.repo.ApprovedTotalsByType(ctx, employeeID)
	if err != nil {
		s.logger.Error("compute balances usage lookup failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, err
	}

	return ComputeBalances(policy, used), nil
}

func (s *service) MarkSeen(ctx context.Context, employeeID string) (int64, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return 0, leaveerrors.ErrInvalidEmployeeID
	}
	return s.repo.MarkDecidedSeen(ctx, employeeID)
}

func (s *service) DecidedUnseenCount(ctx context.Context, employeeID string) (int64, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return 0, leaveerrors.ErrInvalidEmployeeID
	}
	return s.repo.CountDecidedUnseen(ctx, employeeID)
}

func parseUUIDPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}
