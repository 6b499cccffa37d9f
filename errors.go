package condreg

import "fmt"

// DuplicateDefaultError represents an attempt to register a second default
// for a capability key that already holds one.
type DuplicateDefaultError struct {
	Key string
}

func (e *DuplicateDefaultError) Error() string {
	return fmt.Sprintf("duplicate default registration for key: %s", e.Key)
}

// NoMatchingComponentError represents a resolution where no condition
// matched and no default was registered.
type NoMatchingComponentError struct {
	Key string
}

func (e *NoMatchingComponentError) Error() string {
	return fmt.Sprintf("no matching component for key: %s", e.Key)
}

// FactoryError represents a failure raised by a winning registration's
// factory during instantiation.
type FactoryError struct {
	Key  string
	Name string
	Err  error
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("factory %s failed for key %s: %v", e.Name, e.Key, e.Err)
}

func (e *FactoryError) Unwrap() error {
	return e.Err
}

// NilFactoryError represents an attempt to register a nil factory.
type NilFactoryError struct {
	Key string
}

func (e *NilFactoryError) Error() string {
	return fmt.Sprintf("nil factory provided for key: %s", e.Key)
}

// SealedError represents a registration attempt after the registry was
// frozen.
type SealedError struct {
	Key string
}

func (e *SealedError) Error() string {
	return fmt.Sprintf("registry is frozen, cannot register key: %s", e.Key)
}

// TypeMismatchError represents a type assertion failure on a resolved
// instance.
type TypeMismatchError struct {
	Key      string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for key %s: expected %s, got %s", e.Key, e.Expected, e.Got)
}
