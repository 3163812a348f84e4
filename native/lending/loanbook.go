package lending

import (
	"math"
	"math/big"

	"lendvault/crypto"
)

// paymentsForTerm maps the enumerated duration classes onto their
// installment schedules. An unknown term has no schedule and fails the
// borrow outright.
func paymentsForTerm(term Term) (uint32, error) {
	switch term {
	case TermSevenDays, TermThirtyDays:
		return 1, nil
	case TermNinetyDays:
		return 3, nil
	case TermHalfYear:
		return 6, nil
	case TermFullYear:
		return 12, nil
	default:
		return 0, ErrInvalidTerm
	}
}

// issueLoan builds a fresh loan record. The caller owns identifier
// allocation and liquidity accounting.
func issueLoan(id uint64, borrower crypto.Address, token string, amount *big.Int, term Term, nowUnix uint64) (*Loan, error) {
	payments, err := paymentsForTerm(term)
	if err != nil {
		return nil, err
	}
	return &Loan{
		ID:                id,
		Borrower:          borrower,
		Token:             normalizeToken(token),
		Principal:         new(big.Int).Set(amount),
		Term:              term,
		RemainingPayments: payments,
		StartTime:         nowUnix,
		LastPaymentTime:   nowUnix,
	}, nil
}

// loanIndexByID locates a loan inside the position by its stable identifier.
// The collection is small and per-user bounded, so a linear scan is the
// whole index.
func loanIndexByID(loans []*Loan, id uint64) int {
	for i, loan := range loans {
		if loan != nil && loan.ID == id {
			return i
		}
	}
	return -1
}

// removeLoanAt deletes the loan at idx by swapping it with the last element
// and truncating. Positional order is not preserved; only loan IDs are
// durable handles.
func removeLoanAt(loans []*Loan, idx int) []*Loan {
	last := len(loans) - 1
	loans[idx] = loans[last]
	loans[last] = nil
	return loans[:last]
}

// nextLoanID advances the global loan sequence, guarding the fixed-width
// counter.
func nextLoanID(seq uint64) (uint64, error) {
	if seq == math.MaxUint64 {
		return 0, ErrArithmeticOverflow
	}
	return seq + 1, nil
}

// installmentPrincipal returns the principal slice due on the next
// installment: principal / remainingPayments with truncating division, with
// the final installment sweeping the full remainder.
func installmentPrincipal(loan *Loan) *big.Int {
	if loan == nil || loan.Principal == nil || loan.Principal.Sign() == 0 {
		return big.NewInt(0)
	}
	if loan.RemainingPayments <= 1 {
		return new(big.Int).Set(loan.Principal)
	}
	slice := new(big.Int).Quo(loan.Principal, new(big.Int).SetUint64(uint64(loan.RemainingPayments)))
	return slice
}
