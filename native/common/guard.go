package common

import "errors"

var (
	ErrModulePaused       = errors.New("module paused")
	ErrReentrantCall      = errors.New("reentrant call blocked")
	ErrGuardNotConfigured = errors.New("call guard not configured")
)

// PauseView reports whether a module has been administratively halted.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the operation when the module is paused.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// CallGuard provides the exclusive-section contract for top-level operations.
// Exactly one operation may hold the guard at a time; a re-entrant attempt
// (for example a collaborator calling back into the engine mid-operation)
// fails with ErrReentrantCall instead of interleaving.
//
// The protocol executes single-writer and fully sequential, so a plain flag
// is sufficient; no finer-grained locking is assumed or provided.
type CallGuard struct {
	active bool
}

// Enter acquires the guard and returns the release function. The release
// must run on every exit path of the operation, success or error.
func (g *CallGuard) Enter() (func(), error) {
	if g == nil {
		return nil, ErrGuardNotConfigured
	}
	if g.active {
		return nil, ErrReentrantCall
	}
	g.active = true
	return func() { g.active = false }, nil
}

// Held reports whether an operation currently holds the guard.
func (g *CallGuard) Held() bool {
	return g != nil && g.active
}
