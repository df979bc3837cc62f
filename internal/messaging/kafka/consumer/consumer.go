package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go-hrpayroll/internal/events"
	"go-hrpayroll/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	retryBackoff    = 500 * time.Millisecond
	maxRetryBackoff = 30 * time.Second
)

const (
	incrementRecordConstraint = "uq_salary_increment_employee"
	salaryPeriodConstraint    = "uq_employee_salary_period"
)

// MessageReader is the part of *kafkago.Reader the consumers use.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// RecordCreator is implemented by increment.Service.
type RecordCreator interface {
	CreateRecord(ctx context.Context, event events.EmployeeCreatedEvent) error
}

// SalarySeeder is implemented by employeesalary.Service.
type SalarySeeder interface {
	SeedFromEvent(ctx context.Context, event events.EmployeeCreatedEvent) error
}

type employeeCreatedHandler struct {
	name       string
	constraint string
	handle     func(ctx context.Context, event events.EmployeeCreatedEvent) error
}

// ConsumeEmployeeLifecycle opens an increment record per new employee.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	records RecordCreator,
	logger *zap.Logger,
) {
	consumeEmployeeCreated(ctx, reader, employeeCreatedHandler{
		name:       "employee_lifecycle",
		constraint: incrementRecordConstraint,
		handle:     records.CreateRecord,
	}, logger)
}

// ConsumeSalarySeed gives each new employee a BASIC SALARY assignment for
// the joining month. It must run on its own consumer group.
func ConsumeSalarySeed(
	ctx context.Context,
	reader MessageReader,
	seeder SalarySeeder,
	logger *zap.Logger,
) {
	consumeEmployeeCreated(ctx, reader, employeeCreatedHandler{
		name:       "salary_seed",
		constraint: salaryPeriodConstraint,
		handle:     seeder.SeedFromEvent,
	}, logger)
}

func consumeEmployeeCreated(ctx context.Context, reader MessageReader, h employeeCreatedHandler, logger *zap.Logger) {
	log := logger.Named("kafka.consumer." + h.name)
	log.Info("consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		var event events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode employee_created event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if event.EventType != "" && event.EventType != events.EmployeeCreatedType {
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if !applyWithRetry(ctx, h, event, log) {
			log.Info("consumer stopped")
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", zap.Error(err))
			continue
		}

		log.Info("employee_created event handled",
			zap.String("employee_id", event.EmployeeID),
			zap.String("request_id", event.RequestID),
		)
	}
}

// applyWithRetry runs the handler until it succeeds or fails for good,
// backing off between transient failures. The offset is not committed
// before then, so later messages never move the group past this one. It
// returns false only when ctx ends first.
func applyWithRetry(ctx context.Context, h employeeCreatedHandler, event events.EmployeeCreatedEvent, log *zap.Logger) bool {
	backoff := retryBackoff
	for attempt := 1; ; attempt++ {
		err := h.handle(ctx, event)
		switch {
		case err == nil:
			return true
		case isDuplicate(err, h.constraint):
			log.Warn("event already applied, skipping",
				zap.String("employee_id", event.EmployeeID),
				zap.String("request_id", event.RequestID),
			)
			return true
		case isPermanent(err):
			log.Error("drop invalid employee_created event",
				zap.String("employee_id", event.EmployeeID),
				zap.Error(err),
			)
			return true
		}

		log.Error("apply employee_created event failed, retrying",
			zap.String("employee_id", event.EmployeeID),
			zap.String("request_id", event.RequestID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}
}

func isDuplicate(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus == http.StatusConflict {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, constraint)
}

// isPermanent reports input errors that a retry cannot fix.
func isPermanent(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.HTTPStatus == http.StatusBadRequest
}
