package test

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sanayimarketi/marketplace/internal/marketplace/controller"
	"github.com/sanayimarketi/marketplace/internal/marketplace/db"
	e "github.com/sanayimarketi/marketplace/internal/marketplace/errors"
	"github.com/sanayimarketi/marketplace/internal/marketplace/events"
	"github.com/sanayimarketi/marketplace/internal/marketplace/models"
	"github.com/sanayimarketi/marketplace/internal/pkg/utils"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const (
	kafkaBroker = "localhost:9092"
	eventsTopic = "marketplace.applications.it"
)

type IntegrationTestSuite struct {
	suite.Suite
	dbRepo       *db.Repository
	kafkaReader  *kafka.Reader
	producer     *events.Producer
	logger       *zap.Logger
	testTimeout  time.Duration
	cleanupFuncs []func()
}

func TestIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.logger = zap.NewNop()
	s.testTimeout = 20 * time.Second

	var err error
	s.dbRepo, err = initializeDBWithRetry()
	if err != nil {
		s.T().Fatal("Database initialization failed:", err)
	}
	s.cleanupFuncs = append(s.cleanupFuncs, func() { _ = s.dbRepo.Close() })
}

func initializeDBWithRetry() (*db.Repository, error) {
	cfg := &db.Config{
		Host:     "localhost",
		Port:     5432,
		User:     "test",
		Password: "test",
		DBName:   "test",
		SSLMode:  "disable",
	}

	var repo *db.Repository
	err := backoff.Retry(func() error {
		var err error
		repo, err = db.NewRepository(cfg)
		return err
	}, backoff.NewExponentialBackOff())

	return repo, err
}

func initializeKafkaWithRetry(topic string) (*events.Producer, *kafka.Reader, error) {
	producer, err := events.NewProducer([]string{kafkaBroker}, zap.NewNop(), topic, 30*time.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer initialization failed: %w", err)
	}

	err = backoff.Retry(func() error {
		conn, err := kafka.Dial("tcp", kafkaBroker)
		if err != nil {
			return err
		}
		defer conn.Close()

		partitions, err := conn.ReadPartitions(topic)
		if err != nil || len(partitions) == 0 {
			return fmt.Errorf("topic %s not found", topic)
		}
		return nil
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	if err != nil {
		producer.Close()
		return nil, nil, fmt.Errorf("kafka topic check failed: %w", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{kafkaBroker},
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	return producer, reader, nil
}

func (s *IntegrationTestSuite) TearDownSuite() {
	for _, fn := range s.cleanupFuncs {
		fn()
	}
}

func (s *IntegrationTestSuite) SetupTest() {
	if s.dbRepo == nil {
		s.T().Fatal("Database connection not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	if err := s.dbRepo.Exec(ctx, "TRUNCATE TABLE company_applications, company_users, companies, users RESTART IDENTITY CASCADE"); err != nil {
		s.T().Fatal("Failed to clean database:", err)
	}
}

func (s *IntegrationTestSuite) seedUser(ctx context.Context, email string, role models.Role) *models.User {
	user := &models.User{Email: email, Role: role}
	if err := s.dbRepo.CreateUser(ctx, user); err != nil {
		s.T().Fatal("CreateUser failed:", err)
	}
	return user
}

func (s *IntegrationTestSuite) TestApproveManualNew() {
	var err error
	s.producer, s.kafkaReader, err = initializeKafkaWithRetry(eventsTopic)
	if err != nil {
		s.T().Fatal("Kafka initialization failed:", err)
	}
	defer s.producer.Close()
	defer s.kafkaReader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	started := time.Now()
	reviewer := s.seedUser(ctx, "admin@example.com", models.RoleAdmin)
	applicant := s.seedUser(ctx, "applicant@example.com", models.RoleUser)
	ctrl := controller.NewApplicationService(s.dbRepo, s.producer, s.logger)

	app, err := ctrl.Submit(ctx, models.Actor{UserID: applicant.ID, Role: models.RoleUser}, controller.SubmitRequest{
		Type:                models.ManualNew,
		ProposedCompanyName: utils.Ptr("Acme Metal"),
	})
	if err != nil {
		s.T().Fatal("Submit failed:", err)
	}

	approved, err := ctrl.Approve(ctx, models.Actor{UserID: reviewer.ID, Role: models.RoleAdmin}, app.ID)
	if err != nil {
		s.T().Fatal("Approve failed:", err)
	}

	assert.Equal(s.T(), models.StatusApproved, approved.Status)
	if assert.NotNil(s.T(), approved.TargetCompany) {
		assert.Equal(s.T(), "Acme Metal", approved.TargetCompany.Name)
	}

	link, err := s.dbRepo.GetCompanyUser(ctx, applicant.ID)
	if assert.NoError(s.T(), err) {
		assert.Equal(s.T(), *approved.TargetCompanyID, link.CompanyID)
	}

	_, err = ctrl.Approve(ctx, models.Actor{UserID: reviewer.ID, Role: models.RoleAdmin}, app.ID)
	assert.ErrorIs(s.T(), err, e.ErrInvalidState)

	s.verifyKafkaEvent(ctx, events.ApplicationApproved, app.ID, started)
}

// TestConcurrentApprovals races two admins on the same application: the row
// lock lets exactly one of them win.
func (s *IntegrationTestSuite) TestConcurrentApprovals() {
	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	reviewer := s.seedUser(ctx, "admin@example.com", models.RoleAdmin)
	applicant := s.seedUser(ctx, "applicant@example.com", models.RoleUser)
	ctrl := controller.NewApplicationService(s.dbRepo, events.NopProducer{}, s.logger)

	app, err := ctrl.Submit(ctx, models.Actor{UserID: applicant.ID, Role: models.RoleUser}, controller.SubmitRequest{
		Type:                models.ManualNew,
		ProposedCompanyName: utils.Ptr("Race Condition Ltd"),
	})
	if err != nil {
		s.T().Fatal("Submit failed:", err)
	}

	const racers = 4
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		go func() {
			_, err := ctrl.Approve(ctx, models.Actor{UserID: reviewer.ID, Role: models.RoleAdmin}, app.ID)
			errs <- err
		}()
	}

	var won, lost int
	for i := 0; i < racers; i++ {
		err := <-errs
		switch {
		case err == nil:
			won++
		case assert.ErrorIs(s.T(), err, e.ErrInvalidState):
			lost++
		}
	}
	assert.Equal(s.T(), 1, won)
	assert.Equal(s.T(), racers-1, lost)

	pending, err := ctrl.ListPending(ctx, models.Actor{UserID: reviewer.ID, Role: models.RoleAdmin})
	if assert.NoError(s.T(), err) {
		assert.Empty(s.T(), pending)
	}
}

func (s *IntegrationTestSuite) TestConflictingLinkRollsBack() {
	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	reviewer := s.seedUser(ctx, "admin@example.com", models.RoleAdmin)
	applicant := s.seedUser(ctx, "applicant@example.com", models.RoleUser)
	other := &models.Company{Name: "Other", Status: models.CompanyActive, CreatedAt: time.Now()}
	if err := s.dbRepo.CreateCompany(ctx, other); err != nil {
		s.T().Fatal("CreateCompany failed:", err)
	}
	ctrl := controller.NewApplicationService(s.dbRepo, events.NopProducer{}, s.logger)
	applicantActor := models.Actor{UserID: applicant.ID, Role: models.RoleUser}
	reviewerActor := models.Actor{UserID: reviewer.ID, Role: models.RoleAdmin}

	first, err := ctrl.Submit(ctx, applicantActor, controller.SubmitRequest{Type: models.ManualNew, ProposedCompanyName: utils.Ptr("First")})
	if err != nil {
		s.T().Fatal("Submit failed:", err)
	}
	second, err := ctrl.Submit(ctx, applicantActor, controller.SubmitRequest{Type: models.ManualNew, ProposedCompanyName: utils.Ptr("Second")})
	if err != nil {
		s.T().Fatal("Submit failed:", err)
	}
	join, err := ctrl.Submit(ctx, applicantActor, controller.SubmitRequest{Type: models.ManualExisting, TargetCompanyID: &other.ID})
	if err != nil {
		s.T().Fatal("Submit failed:", err)
	}

	approved, err := ctrl.Approve(ctx, reviewerActor, first.ID)
	assert.NoError(s.T(), err)

	// A second company is still created; the first link stays.
	_, err = ctrl.Approve(ctx, reviewerActor, second.ID)
	assert.NoError(s.T(), err)

	_, err = ctrl.Approve(ctx, reviewerActor, join.ID)
	assert.ErrorIs(s.T(), err, e.ErrConflict)

	got, err := ctrl.Get(ctx, applicantActor, join.ID)
	if assert.NoError(s.T(), err) {
		assert.Equal(s.T(), models.StatusPending, got.Status)
	}
	link, err := s.dbRepo.GetCompanyUser(ctx, applicant.ID)
	if assert.NoError(s.T(), err) && approved != nil {
		assert.Equal(s.T(), *approved.TargetCompanyID, link.CompanyID)
	}
}

// verifyKafkaEvent scans the topic for eventType on applicationID. Ids restart
// after each truncation, so events older than since are ignored.
func (s *IntegrationTestSuite) verifyKafkaEvent(ctx context.Context, eventType events.EventType, applicationID int64, since time.Time) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	key := strconv.FormatInt(applicationID, 10)
	for attempts := 0; attempts < 1000; attempts++ {
		msg, err := s.kafkaReader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.T().Logf("Kafka read attempt %d failed: %v", attempts, err)
			time.Sleep(time.Second)
			continue
		}
		if string(msg.Key) != key {
			continue
		}

		var event events.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			s.T().Fatalf("Failed to unmarshal Kafka message: %v", err)
		}
		if event.Type != eventType || event.OccurredAt.Before(since) {
			continue
		}
		if assert.NotNil(s.T(), event.Application) {
			assert.Equal(s.T(), applicationID, event.Application.ID)
		}
		return
	}
	s.T().Fatalf("No %s event received for application %d", eventType, applicationID)
}
