package common

import (
	"errors"
	"testing"
)

type pausedModules map[string]bool

func (p pausedModules) IsPaused(module string) bool { return p[module] }

func TestGuardChecksPauseView(t *testing.T) {
	if err := Guard(nil, "lending"); err != nil {
		t.Fatalf("nil view must allow: %v", err)
	}
	pauses := pausedModules{"lending": true}
	if err := Guard(pauses, "lending"); !errors.Is(err, ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
	if err := Guard(pauses, "other"); err != nil {
		t.Fatalf("unpaused module must allow: %v", err)
	}
}

func TestCallGuardExclusion(t *testing.T) {
	guard := &CallGuard{}
	release, err := guard.Enter()
	if err != nil {
		t.Fatalf("first enter: %v", err)
	}
	if !guard.Held() {
		t.Fatalf("guard must report held")
	}
	if _, err := guard.Enter(); !errors.Is(err, ErrReentrantCall) {
		t.Fatalf("expected ErrReentrantCall, got %v", err)
	}
	release()
	if guard.Held() {
		t.Fatalf("guard must release")
	}
	release2, err := guard.Enter()
	if err != nil {
		t.Fatalf("enter after release: %v", err)
	}
	release2()
}

func TestNilCallGuard(t *testing.T) {
	var guard *CallGuard
	if _, err := guard.Enter(); !errors.Is(err, ErrGuardNotConfigured) {
		t.Fatalf("expected ErrGuardNotConfigured, got %v", err)
	}
	if guard.Held() {
		t.Fatalf("nil guard is never held")
	}
}
