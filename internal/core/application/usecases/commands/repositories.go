// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management,
// and persistence of the order row together with its outbox row.
package commands

import (
	"context"

	"orders/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure the order mutation and its outbox append commit
// atomically.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// OutboxRepoFactory provides access to the outbox repository within a transaction.
	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// UoW manages transactions spanning the order and its outbox journal.
	// Every mutating command uses this shape: both writes share one
	// transaction, never two.
	UoW interface {
		TxManager
		OrderRepoFactory
		OutboxRepoFactory
	}

	// UoWFactory creates new unit of work instances, one per command.
	UoWFactory interface {
		Create() UoW
	}
)
