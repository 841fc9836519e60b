package kinematics

import (
	"errors"
	"fmt"
)

var (
	// ErrNoModules indicates kinematics is built without modules.
	ErrNoModules = errors.New("at least one module is required")
	// ErrDuplicateModule indicates two modules share the same offset.
	ErrDuplicateModule = errors.New("duplicated module offset")
	// ErrModuleCountMismatch indicates a per-module slice doesn't match the geometry.
	ErrModuleCountMismatch = errors.New("module count mismatch")
)

// CheckCount returns ErrModuleCountMismatch when got != expected.
func CheckCount(expected, got int) error {
	if expected != got {
		return fmt.Errorf("%w: expect %d, got %d", ErrModuleCountMismatch, expected, got)
	}
	return nil
}
