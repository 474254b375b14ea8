// Package account holds the per-client balance record.
package account

import (
	"github.com/paystream-engine/internal/domain/money"
	"github.com/paystream-engine/internal/domain/shared"
)

// Account is a per-client balance record. Available and Held are each
// independently representable; their sum is computed on demand and may
// overflow, which is a reporting concern, not a stored state.
type Account struct {
	Available money.Money
	Held      money.Money
	Locked    bool
}

// Total returns Available + Held. It fails when the sum is not
// representable; callers reporting totals must surface that instead of
// silently dropping it.
func (a Account) Total() (money.Money, error) {
	return a.Available.Add(a.Held)
}

// Snapshot is a read-only copy of one account used for reporting.
type Snapshot struct {
	Client    shared.ClientID
	Available money.Money
	Held      money.Money
	Locked    bool
}

// Total returns Available + Held, failing when the sum is not representable.
func (s Snapshot) Total() (money.Money, error) {
	return s.Available.Add(s.Held)
}
