// Package kernel provides core domain primitives for the orders service.
// It implements fundamental building blocks following Domain-Driven Design
// principles that are used throughout the domain model.
//
// The package includes:
//   - UUID: A value object for unique identifiers with validation and comparison capabilities
//
// These primitives enforce domain invariants, ensuring that domain objects are
// always in a valid state. They are immutable and thread-safe, making them
// suitable for concurrent use.
package kernel
