package cmd

import (
	"log/slog"

	httpin "orders/internal/adapters/in/http"
	"orders/internal/adapters/out/postgres"
	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/ports"
	"orders/internal/jobs"
	"orders/internal/pkg/relaymetrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters to use cases. It owns no lifecycle beyond
// construction; main starts and stops the pieces.
type CompositionRoot struct {
	config      Config
	gormDB      *gorm.DB
	uowFactory  *postgres.GormUnitOfWorkFactory
	idempotency ports.IdempotencyStore
	publisher   ports.EventPublisher
	registry    *prometheus.Registry
	logger      *slog.Logger
}

// NewCompositionRoot assembles the object graph from already-connected
// infrastructure clients.
func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	idempotency ports.IdempotencyStore,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CompositionRoot {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return CompositionRoot{
		config:      config,
		gormDB:      gormDB,
		uowFactory:  postgres.NewGormUnitOfWorkFactory(gormDB, config.CloseLockTimeout),
		idempotency: idempotency,
		publisher:   publisher,
		registry:    registry,
		logger:      logger,
	}
}

func (c *CompositionRoot) commandUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateDraftCommandHandler() commands.CreateDraftCommandHandler {
	return commands.NewCreateDraftCommandHandler(
		c.commandUoWFactory(), c.idempotency, c.config.IdempotencyTTL, c.logger)
}

func (c *CompositionRoot) CreateConfirmOrderCommandHandler() commands.ConfirmOrderCommandHandler {
	return commands.NewConfirmOrderCommandHandler(c.commandUoWFactory())
}

func (c *CompositionRoot) CreateCloseOrderCommandHandler() commands.CloseOrderCommandHandler {
	return commands.NewCloseOrderCommandHandler(c.commandUoWFactory())
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

// CreateHTTPServer builds the REST adapter with all routes wired.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateCreateDraftCommandHandler(),
		c.CreateConfirmOrderCommandHandler(),
		c.CreateCloseOrderCommandHandler(),
		c.CreateListOrdersQueryHandler(),
		c.registry,
	)
}

// CreateJobManager builds the background outbox relay.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	relay := jobs.NewOutboxRelayJob(
		c.uowFactory,
		c.publisher,
		relaymetrics.New(c.registry),
		c.config.OutboxBatchSize,
		c.logger,
	)
	return jobs.NewJobManager(relay)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
