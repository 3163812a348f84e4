package lending

import (
	"errors"
	"testing"
)

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewTokenRegistry()
	if err := registry.AddCollateralToken("NVC"); err != nil {
		t.Fatalf("add collateral: %v", err)
	}
	if err := registry.AddCollateralToken("nvc"); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if err := registry.AddLendingToken("ZUSD"); err != nil {
		t.Fatalf("add lending: %v", err)
	}
	if err := registry.AddLendingToken(" zusd "); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestRegistrySetsAreIndependent(t *testing.T) {
	registry := NewTokenRegistry()
	if err := registry.AddCollateralToken("NVC"); err != nil {
		t.Fatalf("add collateral: %v", err)
	}
	if err := registry.AddLendingToken("NVC"); err != nil {
		t.Fatalf("same token in both sets should register: %v", err)
	}
	if !registry.IsCollateral("NVC") || !registry.IsLending("NVC") {
		t.Fatalf("expected NVC in both sets")
	}
	if registry.IsLending("ZUSD") {
		t.Fatalf("unexpected lending membership")
	}
}

func TestRegistryRejectsEmptyToken(t *testing.T) {
	registry := NewTokenRegistry()
	if err := registry.AddCollateralToken("  "); !errors.Is(err, ErrUnsupportedToken) {
		t.Fatalf("expected ErrUnsupportedToken, got %v", err)
	}
	if err := registry.AddLendingToken(""); !errors.Is(err, ErrUnsupportedToken) {
		t.Fatalf("expected ErrUnsupportedToken, got %v", err)
	}
}

func TestRegistryPreservesInsertionOrder(t *testing.T) {
	registry := NewTokenRegistry()
	for _, token := range []string{"NVC", "GOLD", "SILVER"} {
		if err := registry.AddCollateralToken(token); err != nil {
			t.Fatalf("add %s: %v", token, err)
		}
	}
	tokens := registry.CollateralTokens()
	want := []string{"NVC", "GOLD", "SILVER"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, token := range want {
		if tokens[i] != token {
			t.Fatalf("index %d: expected %s, got %s", i, token, tokens[i])
		}
	}
}
