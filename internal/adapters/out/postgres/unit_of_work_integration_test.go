package postgres_test

import (
	"context"
	"testing"
	"time"

	"orders/internal/adapters/out/postgres"
	"orders/internal/adapters/out/postgres/orderrepo"
	"orders/internal/adapters/out/postgres/outboxrepo"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/model/outbox"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite verifies the atomicity contract: the order
// row and its outbox row commit together or not at all.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *pgcontainer.PostgresContainer
	db        *gorm.DB
	factory   *postgres.GormUnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &outboxrepo.OutboxDTO{}))

	suite.factory = postgres.NewGormUnitOfWorkFactory(db, 3*time.Second)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, outbox").Error)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) newDraftWithEvent() (*order.Order, *outbox.Message) {
	now := time.Now().UTC()
	o, err := order.NewOrder(kernel.NewUUID(), "tenant-a", now)
	suite.Require().NoError(err)

	message, err := outbox.NewMessage(outbox.EventTypeCreated, o, now)
	suite.Require().NoError(err)
	return o, message
}

func (suite *UnitOfWorkIntegrationTestSuite) countRows(table string) int64 {
	var count int64
	suite.Require().NoError(suite.db.Table(table).Count(&count).Error)
	return count
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PersistsOrderAndOutboxTogether() {
	ctx := context.Background()
	o, message := suite.newDraftWithEvent()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.OutboxRepository().Add(ctx, message))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Equal(int64(1), suite.countRows("orders"))
	suite.Equal(int64(1), suite.countRows("outbox"))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsBothWrites() {
	ctx := context.Background()
	o, message := suite.newDraftWithEvent()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.OutboxRepository().Add(ctx, message))
	suite.Require().NoError(uow.Rollback(ctx))

	// Neither the state change nor the would-be event survives.
	suite.Equal(int64(0), suite.countRows("orders"))
	suite.Equal(int64(0), suite.countRows("outbox"))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUncommittedWritesAreInvisibleToOthers() {
	ctx := context.Background()
	o, message := suite.newDraftWithEvent()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.OutboxRepository().Add(ctx, message))

	// Another connection must not observe the half-done work.
	suite.Equal(int64(0), suite.countRows("orders"))
	suite.Equal(int64(0), suite.countRows("outbox"))

	suite.Require().NoError(uow.Commit(ctx))

	suite.Equal(int64(1), suite.countRows("orders"))
	suite.Equal(int64(1), suite.countRows("outbox"))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollbackAfterCommit_IsHarmless() {
	ctx := context.Background()
	o, message := suite.newDraftWithEvent()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.OutboxRepository().Add(ctx, message))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
	suite.Equal(int64(1), suite.countRows("orders"))
	suite.Equal(int64(1), suite.countRows("outbox"))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommitWithoutBegin_Fails() {
	ctx := context.Background()

	uow := suite.factory.Create()
	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
