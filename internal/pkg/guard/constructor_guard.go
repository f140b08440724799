// Package guard provides a zero-value detector for types that must be built
// through their constructor functions. Embedding a ConstructorGuard in a struct
// lets Validate distinguish a properly constructed value from a zero value.
package guard

import "errors"

// ErrNotConstructed is the default error returned when a guarded value
// was not created through its constructor.
var ErrNotConstructed = errors.New("object must be created via its constructor")

// ConstructorGuard marks a value as having passed through a constructor.
// The zero value is invalid; NewConstructorGuard produces a valid guard.
type ConstructorGuard struct {
	constructed bool
}

// NewConstructorGuard creates a guard in the constructed state.
// Constructors embed the result in the value they return.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{constructed: true}
}

// Validate returns nil if the guard was created via NewConstructorGuard.
// For a zero-value guard it returns notConstructedErr, or ErrNotConstructed
// when notConstructedErr is nil.
func (g ConstructorGuard) Validate(notConstructedErr error) error {
	if g.constructed {
		return nil
	}

	if notConstructedErr != nil {
		return notConstructedErr
	}

	return ErrNotConstructed
}
