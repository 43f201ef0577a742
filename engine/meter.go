package engine

import (
	"fmt"

	authharness "github.com/mark3labs/auth-harness"
)

// Cycle costs charged by the in-process engine.
const (
	CostLoadUnit          uint64 = 40_000
	CostHashBlock         uint64 = 1_200
	CostEd25519Verify     uint64 = 2_600_000
	CostSecp256k1Recover  uint64 = 1_400_000
	CostSolanaMessageScan uint64 = 60_000
)

// DefaultCycleBudget is a generous budget that every supported verification fits in.
const DefaultCycleBudget uint64 = 3_500_000_000

type meter struct {
	limit uint64
	used  uint64
}

func newMeter(limit uint64) *meter {
	return &meter{limit: limit}
}

// consume charges n cycles. Once the budget is exceeded every call fails.
func (m *meter) consume(n uint64, what string) error {
	m.used += n
	if m.used > m.limit {
		return authharness.EngineFailure(
			fmt.Sprintf("cycle budget exceeded while %s: needed %d, budget %d", what, m.used, m.limit),
			authharness.ErrBudgetExceeded)
	}
	return nil
}

// consumeHash charges the cost of hashing n bytes.
func (m *meter) consumeHash(n int, what string) error {
	blocks := uint64((n + 63) / 64)
	if blocks == 0 {
		blocks = 1
	}
	return m.consume(blocks*CostHashBlock, what)
}
