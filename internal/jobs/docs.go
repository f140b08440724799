// Package jobs provides scheduled background tasks for the orders system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the orders service.
//
// # Available Jobs
//
// 1. OutboxRelayJob - Runs every second to drain pending outbox rows to the event sink
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with the relay dependencies
//	jobManager := jobs.NewJobManager(relayJob)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The relay uses the cron expression "* * * * * *" which means it runs every
// second. Each pass claims a bounded batch of unpublished rows under
// FOR UPDATE SKIP LOCKED, so multiple service instances drain disjoint
// batches without coordination.
//
// # Error Handling
//
// A failed publish stops the pass: the failed row and its successors stay
// unpublished and are retried on a later pass, preserving per-order event
// order. Consecutive failed passes back off with a doubling cool-down so a
// down sink is not hammered once a second.
package jobs
