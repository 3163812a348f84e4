package lending

import "strings"

// TokenRegistry holds the two independent supported-token sets: tokens that
// may be pledged as collateral and tokens that may be supplied and borrowed.
// Both sets are append-only; membership is checked before any operation that
// touches the token. Insertion order is preserved so valuation scans stay
// deterministic.
type TokenRegistry struct {
	collateral    []string
	collateralSet map[string]struct{}
	lending       []string
	lendingSet    map[string]struct{}
}

// NewTokenRegistry constructs an empty registry.
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		collateralSet: make(map[string]struct{}),
		lendingSet:    make(map[string]struct{}),
	}
}

func normalizeToken(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}

// AddCollateralToken registers a token as collateral-eligible. Re-adding an
// existing token fails with ErrAlreadyRegistered.
func (r *TokenRegistry) AddCollateralToken(token string) error {
	normalized := normalizeToken(token)
	if normalized == "" {
		return ErrUnsupportedToken
	}
	if _, ok := r.collateralSet[normalized]; ok {
		return ErrAlreadyRegistered
	}
	r.collateralSet[normalized] = struct{}{}
	r.collateral = append(r.collateral, normalized)
	return nil
}

// AddLendingToken registers a token as lending-eligible. Re-adding an
// existing token fails with ErrAlreadyRegistered.
func (r *TokenRegistry) AddLendingToken(token string) error {
	normalized := normalizeToken(token)
	if normalized == "" {
		return ErrUnsupportedToken
	}
	if _, ok := r.lendingSet[normalized]; ok {
		return ErrAlreadyRegistered
	}
	r.lendingSet[normalized] = struct{}{}
	r.lending = append(r.lending, normalized)
	return nil
}

// IsCollateral reports whether the token may be pledged as collateral.
func (r *TokenRegistry) IsCollateral(token string) bool {
	_, ok := r.collateralSet[normalizeToken(token)]
	return ok
}

// IsLending reports whether the token may be supplied and borrowed.
func (r *TokenRegistry) IsLending(token string) bool {
	_, ok := r.lendingSet[normalizeToken(token)]
	return ok
}

// CollateralTokens returns the collateral set in registration order.
func (r *TokenRegistry) CollateralTokens() []string {
	return append([]string(nil), r.collateral...)
}

// LendingTokens returns the lending set in registration order.
func (r *TokenRegistry) LendingTokens() []string {
	return append([]string(nil), r.lending...)
}
