package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go-hrpayroll/internal/config"
	"go-hrpayroll/internal/employeesalary"
	"go-hrpayroll/internal/events"
	"go-hrpayroll/internal/increment"
	"go-hrpayroll/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func newEmployeeCreatedReader(broker, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          events.EmployeeCreatedTopic,
		GroupID:        groupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}

// RunConsumer applies employee_created events. Each handler reads on its own
// consumer group so both see every event.
func RunConsumer(cfg *config.Config, logger *zap.Logger) error {
	logger = logger.Named("app.consumer")

	deps, cleanup, err := connect(cfg, logger, false)
	if err != nil {
		return err
	}
	defer cleanup()

	incrementService := increment.NewService(deps.sqlDB, increment.NewRepository(deps.gormDB), logger)
	salaryService := employeesalary.NewService(deps.sqlDB, employeesalary.NewRepository(deps.gormDB), logger)

	incrementReader := newEmployeeCreatedReader(cfg.Kafka.Broker, cfg.Kafka.GroupID+"-increment")
	defer incrementReader.Close()
	salaryReader := newEmployeeCreatedReader(cfg.Kafka.Broker, cfg.Kafka.GroupID+"-salary-seed")
	defer salaryReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumeEmployeeLifecycle(ctx, incrementReader, incrementService, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumeSalarySeed(ctx, salaryReader, salaryService, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	wg.Wait()

	return nil
}
