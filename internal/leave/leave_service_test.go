package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-hrpayroll/internal/events"
	"go-hrpayroll/internal/leave"
	leaveerrors "go-hrpayroll/internal/leave/errors"
	"go-hrpayroll/internal/leavepolicy"
	leavepolicyerrors "go-hrpayroll/internal/leavepolicy/errors"
	"go-hrpayroll/internal/messaging/kafka"
	"go-hrpayroll/internal/shared/dateutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeLeaveRepository struct {
	lockEmployeeFn          func(ctx context.Context, employeeID string) error
	findEmployeeFn          func(ctx context.Context, employeeID string) (*leave.EmployeeRef, error)
	createFn                func(ctx context.Context, l *leave.Leave) error
	updateFn                func(ctx context.Context, l *leave.Leave) error
	findAllFn               func(ctx context.Context) ([]leave.Leave, error)
	findByIDFn              func(ctx context.Context, id string) (*leave.Leave, error)
	findByIDForUpdateFn     func(ctx context.Context, id string) (*leave.Leave, error)
	findByEmployeeFn        func(ctx context.Context, employeeID string) ([]leave.Leave, error)
	findByStatusFn          func(ctx context.Context, status string) ([]leave.Leave, error)
	findActiveOverlappingFn func(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Leave, error)
	sumApprovedDaysSinceFn  func(ctx context.Context, employeeID, leaveType string, since time.Time) (int, error)
	usageByEmployeeTypeFn   func(ctx context.Context, since time.Time) (map[leave.UsageKey]int, error)
	approvedTotalsByTypeFn  func(ctx context.Context, employeeID string) (map[string]int, error)
	countByStatusFn         func(ctx context.Context, status string) (int64, error)
	countDecidedUnseenFn    func(ctx context.Context, employeeID string) (int64, error)
	markDecidedSeenFn       func(ctx context.Context, employeeID string) (int64, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository { return f }

func (f *fakeLeaveRepository) LockEmployee(ctx context.Context, employeeID string) error {
	if f.lockEmployeeFn != nil {
		return f.lockEmployeeFn(ctx, employeeID)
	}
	return nil
}

func (f *fakeLeaveRepository) FindEmployee(ctx context.Context, employeeID string) (*leave.EmployeeRef, error) {
	if f.findEmployeeFn != nil {
		return f.findEmployeeFn(ctx, employeeID)
	}
	return &leave.EmployeeRef{ID: uuid.MustParse(employeeID), Name: "Asha"}, nil
}

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) Update(ctx context.Context, l *leave.Leave) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) FindAll(ctx context.Context) ([]leave.Leave, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByID(ctx context.Context, id string) (*leave.Leave, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) FindByIDForUpdate(ctx context.Context, id string) (*leave.Leave, error) {
	if f.findByIDForUpdateFn != nil {
		return f.findByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) FindByEmployee(ctx context.Context, employeeID string) ([]leave.Leave, error) {
	if f.findByEmployeeFn != nil {
		return f.findByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByStatus(ctx context.Context, status string) ([]leave.Leave, error) {
	if f.findByStatusFn != nil {
		return f.findByStatusFn(ctx, status)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindActiveOverlapping(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Leave, error) {
	if f.findActiveOverlappingFn != nil {
		return f.findActiveOverlappingFn(ctx, employeeID, from, to)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) SumApprovedDaysSince(ctx context.Context, employeeID, leaveType string, since time.Time) (int, error) {
	if f.sumApprovedDaysSinceFn != nil {
		return f.sumApprovedDaysSinceFn(ctx, employeeID, leaveType, since)
	}
	return 0, nil
}

func (f *fakeLeaveRepository) ApprovedDaysSinceByEmployeeType(ctx context.Context, since time.Time) (map[leave.UsageKey]int, error) {
	if f.usageByEmployeeTypeFn != nil {
		return f.usageByEmployeeTypeFn(ctx, since)
	}
	return map[leave.UsageKey]int{}, nil
}

func (f *fakeLeaveRepository) ApprovedTotalsByType(ctx context.Context, employeeID string) (map[string]int, error) {
	if f.approvedTotalsByTypeFn != nil {
		return f.approvedTotalsByTypeFn(ctx, employeeID)
	}
	return map[string]int{}, nil
}

func (f *fakeLeaveRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	if f.countByStatusFn != nil {
		return f.countByStatusFn(ctx, status)
	}
	return 0, nil
}

func (f *fakeLeaveRepository) CountDecidedUnseen(ctx context.Context, employeeID string) (int64, error) {
	if f.countDecidedUnseenFn != nil {
		return f.countDecidedUnseenFn(ctx, employeeID)
	}
	return 0, nil
}

func (f *fakeLeaveRepository) MarkDecidedSeen(ctx context.Context, employeeID string) (int64, error) {
	if f.markDecidedSeenFn != nil {
		return f.markDecidedSeenFn(ctx, employeeID)
	}
	return 0, nil
}

type fakePolicyProvider struct {
	policy leavepolicy.Policy
	err    error
}

func (f *fakePolicyProvider) Active(ctx context.Context) (leavepolicy.Policy, error) {
	return f.policy, f.err
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
	err     error
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error                 { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type fakeRecorder struct {
	submitted map[bool]int
	decided   []string
}

func (f *fakeRecorder) LeaveSubmitted(ok bool) {
	if f.submitted == nil {
		f.submitted = map[bool]int{}
	}
	f.submitted[ok]++
}

func (f *fakeRecorder) LeaveDecided(status string) { f.decided = append(f.decided, status) }

type leaveServiceDeps struct {
	sqlMock  sqlmock.Sqlmock
	service  leave.Service
	repo     *fakeLeaveRepository
	policies *fakePolicyProvider
	outbox   *fakeOutbox
	recorder *fakeRecorder
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	deps := &leaveServiceDeps{
		sqlMock:  sqlMock,
		repo:     &fakeLeaveRepository{},
		policies: &fakePolicyProvider{policy: elPolicy()},
		outbox:   &fakeOutbox{},
		recorder: &fakeRecorder{},
	}
	deps.service = leave.NewService(db, deps.repo, deps.policies, deps.outbox, deps.recorder)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestLeaveService_Create(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.NewString()
	actorID := uuid.NewString()
	year := time.Now().Year()

	req := leave.CreateLeaveRequest{
		EmployeeID: employeeID,
		LeaveType:  "EL",
		FromDate:   dateutil.Format(dateutil.Date(year, time.June, 1)),
		ToDate:     dateutil.Format(dateutil.Date(year, time.June, 7)),
		Reason:     "family",
	}

	t.Run("creates pending with lwp and advisory", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		var locked string
		var since time.Time
		var stored *leave.Leave
		deps.repo.lockEmployeeFn = func(ctx context.Context, id string) error {
			locked = id
			return nil
		}
		deps.repo.sumApprovedDaysSinceFn = func(ctx context.Context, empID, leaveType string, s time.Time) (int, error) {
			since = s
			return 4, nil
		}
		deps.repo.createFn = func(ctx context.Context, l *leave.Leave) error {
			stored = l
			return nil
		}

		resp, err := deps.service.Create(ctx, actorID, req)
		require.NoError(t, err)
		assert.Equal(t, employeeID, locked)
		assert.Equal(t, dateutil.StartOfYear(year), since)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, 7, resp.TotalDays)
		assert.Equal(t, 1, resp.LWPDays)
		assert.Equal(t, "Paid", resp.Mode)
		assert.Equal(t, "Asha", resp.EmployeeName)
		assert.Contains(t, resp.Advisory, "max 5 days per request")
		require.NotNil(t, stored.CreatedBy)
		assert.Equal(t, actorID, stored.CreatedBy.String())
		assert.Equal(t, 1, deps.recorder.submitted[true])
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("invalid range never opens a transaction", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		bad := req
		bad.FromDate, bad.ToDate = bad.ToDate, bad.FromDate

		_, err := deps.service.Create(ctx, actorID, bad)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
		assert.Equal(t, 1, deps.recorder.submitted[false])
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("bad date format", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		bad := req
		bad.FromDate = "01/06/2026"

		_, err := deps.service.Create(ctx, actorID, bad)
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("employee not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findEmployeeFn = func(ctx context.Context, id string) (*leave.EmployeeRef, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Create(ctx, actorID, req)
		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("policy missing", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.policies.err = leavepolicyerrors.ErrPolicyNotFound

		_, err := deps.service.Create(ctx, actorID, req)
		assert.ErrorIs(t, err, leavepolicyerrors.ErrPolicyNotFound)
	})

	t.Run("overlap rejected", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findActiveOverlappingFn = func(ctx context.Context, empID string, from, to time.Time) ([]leave.Leave, error) {
			return []leave.Leave{{
				ID:       uuid.New(),
				FromDate: dateutil.Date(year, time.June, 5),
				ToDate:   dateutil.Date(year, time.June, 9),
				Status:   leave.StatusPending,
			}}, nil
		}
		deps.repo.createFn = func(ctx context.Context, l *leave.Leave) error {
			t.Fatal("must not persist overlapping leave")
			return nil
		}

		_, err := deps.service.Create(ctx, actorID, req)
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("usage lookup error is surfaced", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.sumApprovedDaysSinceFn = func(ctx context.Context, empID, leaveType string, s time.Time) (int, error) {
			return 0, errors.New("db down")
		}

		_, err := deps.service.Create(ctx, actorID, req)
		assert.EqualError(t, err, "db down")
	})
}

func TestLeaveService_GetAll(t *testing.T) {
	deps := setupLeaveServiceTest(t)
	empA, empB := uuid.New(), uuid.New()
	yearStart := dateutil.StartOfYear(time.Now().Year())
	from := yearStart.AddDate(0, 2, 0)

	deps.repo.findAllFn = func(ctx context.Context) ([]leave.Leave, error) {
		return []leave.Leave{
			{ID: uuid.New(), EmployeeID: empA, LeaveType: "EL", TotalDays: 4, FromDate: from, ToDate: from.AddDate(0, 0, 3), Status: leave.StatusPending},
			{ID: uuid.New(), EmployeeID: empB, LeaveType: "EL", TotalDays: 2, FromDate: from, ToDate: from.AddDate(0, 0, 1), Status: leave.StatusPending},
			{ID: uuid.New(), EmployeeID: empB, LeaveType: "XX", TotalDays: 1, FromDate: from, ToDate: from, Status: leave.StatusPending},
		}, nil
	}
	deps.repo.usageByEmployeeTypeFn = func(ctx context.Context, since time.Time) (map[leave.UsageKey]int, error) {
		assert.Equal(t, yearStart, since)
		return map[leave.UsageKey]int{{EmployeeID: empA, LeaveType: "EL"}: 8}, nil
	}

	out, err := deps.service.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.NotNil(t, out[0].EligibilityWarning)
	assert.Equal(t, "Only 2 days left this year, requested 4", *out[0].EligibilityWarning)
	assert.Equal(t, "", *out[1].EligibilityWarning)
	assert.Equal(t, "Invalid leave type", *out[2].EligibilityWarning)
}

func TestLeaveService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.NewString()
	leaveID := uuid.New()

	pending := func() *leave.Leave {
		return &leave.Leave{
			ID:         leaveID,
			EmployeeID: uuid.New(),
			LeaveType:  "EL",
			FromDate:   dateutil.Date(2026, 5, 4),
			ToDate:     dateutil.Date(2026, 5, 8),
			TotalDays:  5,
			Status:     leave.StatusPending,
		}
	}

	t.Run("approve with range publishes event", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return pending(), nil
		}

		resp, err := deps.service.UpdateStatus(ctx, actorID, leaveID.String(), leave.UpdateStatusRequest{
			Status:   leave.StatusApproved,
			Message:  "ok",
			FromDate: "2026-05-05",
			ToDate:   "2026-05-07",
		})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.ApprovedTotalDays)
		assert.Equal(t, 5, resp.TotalDays)
		require.NotNil(t, resp.ApprovedFromDate)
		assert.Equal(t, "2026-05-05", *resp.ApprovedFromDate)

		require.Len(t, deps.outbox.created, 1)
		ev := deps.outbox.created[0]
		assert.Equal(t, events.LeaveStatusChangedTopic, ev.Topic)
		assert.Equal(t, leaveID.String(), ev.AggregateID)
		assert.Contains(t, string(ev.Payload), `"status":"APPROVED"`)
		assert.Equal(t, []string{leave.StatusApproved}, deps.recorder.decided)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("already decided", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			l := pending()
			l.Status = leave.StatusApproved
			return l, nil
		}

		_, err := deps.service.UpdateStatus(ctx, actorID, leaveID.String(), leave.UpdateStatusRequest{Status: leave.StatusRejected})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.Empty(t, deps.outbox.created)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.UpdateStatus(ctx, actorID, leaveID.String(), leave.UpdateStatusRequest{Status: leave.StatusRejected})
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("outbox failure rolls back", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*leave.Leave, error) {
			return pending(), nil
		}
		deps.outbox.err = errors.New("insert failed")

		_, err := deps.service.UpdateStatus(ctx, actorID, leaveID.String(), leave.UpdateStatusRequest{Status: leave.StatusRejected})
		assert.EqualError(t, err, "insert failed")
		assert.Empty(t, deps.recorder.decided)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestLeaveService_Balances(t *testing.T) {
	employeeID := uuid.NewString()

	t.Run("rows for every policy type", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.approvedTotalsByTypeFn = func(ctx context.Context, id string) (map[string]int, error) {
			return map[string]int{"EL": 3}, nil
		}

		rows, err := deps.service.Balances(context.Background(), employeeID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 7, rows[0].Remaining)
		assert.Equal(t, 6, rows[1].Remaining)
	})

	t.Run("no policy yields empty list", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.policies.err = leavepolicyerrors.ErrPolicyNotFound

		rows, err := deps.service.Balances(context.Background(), employeeID)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("invalid employee id", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		_, err := deps.service.Balances(context.Background(), "nope")
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidEmployeeID)
	})
}

func TestLeaveService_SeenTracking(t *testing.T) {
	deps := setupLeaveServiceTest(t)
	employeeID := uuid.NewString()
	deps.repo.markDecidedSeenFn = func(ctx context.Context, id string) (int64, error) {
		assert.Equal(t, employeeID, id)
		return 2, nil
	}
	deps.repo.countDecidedUnseenFn = func(ctx context.Context, id string) (int64, error) {
		return 1, nil
	}
	deps.repo.countByStatusFn = func(ctx context.Context, status string) (int64, error) {
		assert.Equal(t, leave.StatusPending, status)
		return 9, nil
	}

	updated, err := deps.service.MarkSeen(context.Background(), employeeID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err := deps.service.DecidedUnseenCount(context.Background(), employeeID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	pending, err := deps.service.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), pending)
}
