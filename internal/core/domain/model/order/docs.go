// Package order implements the Order aggregate and its lifecycle state machine.
//
// An order is a multi-tenant record that moves through three guarded states:
//
//	draft ──> confirmed ──> closed
//
// Transitions are monotonic: no transition ever moves backward and closed is
// terminal. Every successful transition increments the order's version, which
// doubles as the optimistic-lock token for concurrent writers.
//
// The aggregate is pure with respect to persistence: transition methods mutate
// only the aggregate's own fields. Persisting the new state and appending the
// matching outbox row are the application layer's responsibility, inside one
// atomic unit of work.
package order
