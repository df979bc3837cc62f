package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-hrpayroll/internal/domain"
	"go-hrpayroll/internal/employee"
	employeeerrors "go-hrpayroll/internal/employee/errors"
	"go-hrpayroll/internal/events"
	"go-hrpayroll/internal/messaging/kafka"
	"go-hrpayroll/internal/shared/counter"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeRepository struct {
	createFn             func(ctx context.Context, empl *employee.Employee) error
	createAccountFn      func(ctx context.Context, acc *employee.Account) error
	findAllFn            func(ctx context.Context) ([]employee.Employee, error)
	findOptionsFn        func(ctx context.Context) ([]employee.Employee, error)
	findByIDFn           func(ctx context.Context, id string) (*employee.Employee, error)
	updateFn             func(ctx context.Context, empl *employee.Employee) error
	updateAccountEmailFn func(ctx context.Context, employeeID, email string) error
	updateRoleFn         func(ctx context.Context, employeeID, role string) (int64, error)
	deleteFn             func(ctx context.Context, id string) (int64, error)
	replacePermissionsFn func(ctx context.Context, employeeID string, perms []employee.Permission) error
}

func (f *fakeRepository) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, empl *employee.Employee) error {
	if f.createFn != nil {
		return f.createFn(ctx, empl)
	}
	return nil
}
func (f *fakeRepository) CreateAccount(ctx context.Context, acc *employee.Account) error {
	if f.createAccountFn != nil {
		return f.createAccountFn(ctx, acc)
	}
	return nil
}
func (f *fakeRepository) FindAll(ctx context.Context) ([]employee.Employee, error) {
	return f.findAllFn(ctx)
}
func (f *fakeRepository) FindOptions(ctx context.Context) ([]employee.Employee, error) {
	return f.findOptionsFn(ctx)
}
func (f *fakeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRepository) Update(ctx context.Context, empl *employee.Employee) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, empl)
	}
	return nil
}
func (f *fakeRepository) UpdateAccountEmail(ctx context.Context, employeeID, email string) error {
	if f.updateAccountEmailFn != nil {
		return f.updateAccountEmailFn(ctx, employeeID, email)
	}
	return nil
}
func (f *fakeRepository) UpdateRole(ctx context.Context, employeeID, role string) (int64, error) {
	return f.updateRoleFn(ctx, employeeID, role)
}
func (f *fakeRepository) Delete(ctx context.Context, id string) (int64, error) {
	return f.deleteFn(ctx, id)
}
func (f *fakeRepository) DeleteAccount(ctx context.Context, employeeID string) error { return nil }
func (f *fakeRepository) ListPermissions(ctx context.Context, employeeID string) ([]employee.Permission, error) {
	return nil, nil
}
func (f *fakeRepository) ReplacePermissions(ctx context.Context, employeeID string, perms []employee.Permission) error {
	if f.replacePermissionsFn != nil {
		return f.replacePermissionsFn(ctx, employeeID, perms)
	}
	return nil
}

type fakeCounter struct{ next int64 }

func (f *fakeCounter) WithTx(tx *sql.Tx) counter.Repository { return f }
func (f *fakeCounter) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeOutbox struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error              { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type countingObserver struct{ hits, misses int }

func (o *countingObserver) CacheLookup(_ string, hit bool) {
	if hit {
		o.hits++
		return
	}
	o.misses++
}

func createRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		Name:          "Asha Rao",
		Email:         "Asha@Example.com",
		DateOfJoining: "2020-04-01",
		Designation:   "Engineer",
		Salary:        50000.5,
	}
}

func TestDefaultPassword(t *testing.T) {
	assert.Equal(t, "asharao@123", employee.DefaultPassword("Asha Rao"))
	assert.Equal(t, "x@123", employee.DefaultPassword("X"))
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions account and queues event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		var account *employee.Account
		repo := &fakeRepository{
			createAccountFn: func(ctx context.Context, acc *employee.Account) error {
				account = acc
				return nil
			},
		}
		outbox := &fakeOutbox{}
		rdb, rmock := redismock.NewClientMock()
		svc := employee.NewService(db, repo, &fakeCounter{next: 41}, outbox, rdb, nil)

		mock.ExpectBegin()
		mock.ExpectCommit()
		rmock.ExpectDel(employee.OptionsCacheKey).SetVal(1)

		resp, err := svc.Create(ctx, createRequest())
		require.NoError(t, err)
		assert.Equal(t, "EMP-00042", resp.EmployeeCode)
		assert.Equal(t, "asha@example.com", resp.Email)
		assert.Equal(t, domain.RoleEmployee, resp.Role)
		assert.Equal(t, 50000.5, resp.Salary)

		require.NotNil(t, account)
		assert.Equal(t, resp.ID, account.EmployeeID.String())
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.Password), []byte("asharao@123")))

		require.Len(t, outbox.events, 1)
		ev := outbox.events[0]
		assert.Equal(t, events.EmployeeCreatedTopic, ev.Topic)
		assert.Equal(t, events.EmployeeCreatedType, ev.EventType)
		var payload events.EmployeeCreatedEvent
		require.NoError(t, json.Unmarshal(ev.Payload, &payload))
		assert.Equal(t, "50000.50", payload.Salary)
		assert.Equal(t, "2020-04-01", payload.DateOfJoining)
		assert.Equal(t, "Asha Rao", payload.Name)

		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock, _ := sqlmock.New()
		defer db.Close()

		repo := &fakeRepository{
			createFn: func(ctx context.Context, empl *employee.Employee) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_email"}
			},
		}
		outbox := &fakeOutbox{}
		svc := employee.NewService(db, repo, &fakeCounter{}, outbox, nil, nil)

		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.Create(ctx, createRequest())
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
		assert.Empty(t, outbox.events)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid date of joining", func(t *testing.T) {
		req := createRequest()
		req.DateOfJoining = "01/04/2020"
		svc := employee.NewService(nil, &fakeRepository{}, &fakeCounter{}, nil, nil, nil)

		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidDateOfJoining)
	})
}

func TestEmployeeService_GetOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss loads and stores", func(t *testing.T) {
		rdb, rmock := redismock.NewClientMock()
		obs := &countingObserver{}
		repo := &fakeRepository{
			findOptionsFn: func(ctx context.Context) ([]employee.Employee, error) {
				return []employee.Employee{{ID: uuid.New(), EmployeeCode: "EMP-00001", Name: "Asha"}}, nil
			},
		}
		svc := employee.NewService(nil, repo, nil, nil, rdb, obs)

		rmock.ExpectGet(employee.OptionsCacheKey).RedisNil()
		rmock.Regexp().ExpectSet(employee.OptionsCacheKey, `.*`, time.Hour).SetVal("OK")

		resp, err := svc.GetOptions(ctx)
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, "Asha", resp[0].Name)
		assert.Equal(t, 1, obs.misses)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("cache hit", func(t *testing.T) {
		rdb, rmock := redismock.NewClientMock()
		obs := &countingObserver{}
		repo := &fakeRepository{
			findOptionsFn: func(ctx context.Context) ([]employee.Employee, error) {
				t.Fatal("repository must not be called on cache hit")
				return nil, nil
			},
		}
		svc := employee.NewService(nil, repo, nil, nil, rdb, obs)

		cached, _ := json.Marshal([]employee.OptionResponse{{ID: "1", Name: "Cached"}})
		rmock.ExpectGet(employee.OptionsCacheKey).SetVal(string(cached))

		resp, err := svc.GetOptions(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Cached", resp[0].Name)
		assert.Equal(t, 1, obs.hits)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	id := uuid.New()
	var syncedEmail string
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, _ string) (*employee.Employee, error) {
			return &employee.Employee{ID: id, Name: "Asha", Email: "asha@example.com", Role: domain.RoleHR, Salary: decimal.NewFromInt(100)}, nil
		},
		updateAccountEmailFn: func(ctx context.Context, employeeID, email string) error {
			syncedEmail = email
			return nil
		},
	}
	svc := employee.NewService(db, repo, nil, nil, nil, nil)

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Update(context.Background(), id.String(), employee.UpdateEmployeeRequest{
		Name:          "Asha R",
		Email:         "asha.r@example.com",
		DateOfJoining: "2021-01-15",
		Salary:        120,
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha R", resp.Name)
	assert.Equal(t, domain.RoleHR, resp.Role)
	assert.Equal(t, "asha.r@example.com", syncedEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeService_UpdateRole(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		db, mock, _ := sqlmock.New()
		defer db.Close()

		repo := &fakeRepository{
			updateRoleFn: func(ctx context.Context, employeeID, role string) (int64, error) {
				return 1, nil
			},
			findByIDFn: func(ctx context.Context, _ string) (*employee.Employee, error) {
				return &employee.Employee{ID: id, Role: domain.RoleHR}, nil
			},
		}
		svc := employee.NewService(db, repo, nil, nil, nil, nil)

		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.UpdateRole(ctx, id.String(), employee.UpdateRoleRequest{Role: domain.RoleHR})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleHR, resp.Role)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, _ := sqlmock.New()
		defer db.Close()

		repo := &fakeRepository{
			updateRoleFn: func(ctx context.Context, employeeID, role string) (int64, error) {
				return 0, nil
			},
		}
		svc := employee.NewService(db, repo, nil, nil, nil, nil)

		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.UpdateRole(ctx, id.String(), employee.UpdateRoleRequest{Role: domain.RoleHR})
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("invalid role", func(t *testing.T) {
		svc := employee.NewService(nil, &fakeRepository{}, nil, nil, nil, nil)
		_, err := svc.UpdateRole(ctx, id.String(), employee.UpdateRoleRequest{Role: "OWNER"})
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidRole)
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeRepository{
		deleteFn: func(ctx context.Context, id string) (int64, error) {
			return 0, nil
		},
	}
	svc := employee.NewService(db, repo, nil, nil, nil, nil)

	mock.ExpectBegin()
	mock.ExpectRollback()
	assert.ErrorIs(t, svc.Delete(context.Background(), uuid.NewString()), employeeerrors.ErrEmployeeNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), "bad"), employeeerrors.ErrInvalidEmployeeID)
}

func TestEmployeeService_UpdatePermissions(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("normalizes and dedupes", func(t *testing.T) {
		db, mock, _ := sqlmock.New()
		defer db.Close()

		var stored []employee.Permission
		repo := &fakeRepository{
			findByIDFn: func(ctx context.Context, _ string) (*employee.Employee, error) {
				return &employee.Employee{ID: id}, nil
			},
			replacePermissionsFn: func(ctx context.Context, employeeID string, perms []employee.Permission) error {
				stored = perms
				return nil
			},
		}
		svc := employee.NewService(db, repo, nil, nil, nil, nil)

		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := svc.UpdatePermissions(ctx, id.String(), employee.UpdatePermissionsRequest{
			Permissions: []domain.PermissionGrant{
				{Code: "Leave:Approve", Access: true},
				{Code: "leave:approve", Access: false},
				{Code: "task:manage", Access: false},
			},
		})
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, []domain.PermissionGrant{
			{Code: "leave:approve", Access: true},
			{Code: "task:manage", Access: false},
		}, resp)
	})

	t.Run("malformed code", func(t *testing.T) {
		svc := employee.NewService(nil, &fakeRepository{}, nil, nil, nil, nil)
		_, err := svc.UpdatePermissions(ctx, id.String(), employee.UpdatePermissionsRequest{
			Permissions: []domain.PermissionGrant{{Code: "leave", Access: true}},
		})
		assert.ErrorIs(t, err, employeeerrors.ErrInvalidPermissionCode)
	})

	t.Run("unknown employee", func(t *testing.T) {
		db, mock, _ := sqlmock.New()
		defer db.Close()

		svc := employee.NewService(db, &fakeRepository{}, nil, nil, nil, nil)
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.UpdatePermissions(ctx, id.String(), employee.UpdatePermissionsRequest{})
		assert.True(t, errors.Is(err, employeeerrors.ErrEmployeeNotFound))
	})
}
