package repo

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/escrow-bet-market/internal/engine"
	"github.com/radieske/escrow-bet-market/internal/engine/keys"
)

func TestMarketRow_PreservesFullRangeAmounts(t *testing.T) {
	w := uint8(1)
	resolved := time.Date(2025, 5, 25, 18, 0, 0, 0, time.UTC)
	m := &engine.Market{
		Address:         keys.ProgramID("market"),
		Admin:           "admin",
		League:          "Premier League",
		Season:          "2024/25",
		Outcomes:        []string{"A", "B"},
		Odds:            []uint64{2, math.MaxUint64},
		Resolved:        true,
		WinningIndex:    &w,
		Funding:         &engine.BoundedFunding{MaxStake: math.MaxUint64, SlotsRemaining: 7, Reserve: 600},
		Vault:           keys.ProgramID("vault"),
		BetCount:        3,
		PayoutByOutcome: []uint64{0, math.MaxUint64 - 1},
		UnclaimedPayout: math.MaxUint64 - 1,
		Version:         7,
		CreatedAt:       resolved.Add(-time.Hour),
		ResolvedAt:      &resolved,
		Bump:            254,
	}

	r, err := toMarketRow(m)
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", r.MaxStake)
	assert.False(t, r.ClosedAt.Valid)

	got, err := r.toMarket()
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMarketRow_Accumulating(t *testing.T) {
	m := &engine.Market{
		Address:         keys.ProgramID("market"),
		Outcomes:        []string{"A", "B"},
		Odds:            []uint64{2, 3},
		Funding:         &engine.AccumulatingFunding{TotalStaked: 150},
		Vault:           keys.ProgramID("vault"),
		PayoutByOutcome: []uint64{0, 0},
		CreatedAt:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	r, err := toMarketRow(m)
	require.NoError(t, err)
	assert.Equal(t, "accumulating", r.Policy)

	got, err := r.toMarket()
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMarketRow_UnknownPolicy(t *testing.T) {
	r := marketRow{
		Address: keys.ProgramID("m").String(), Vault: keys.ProgramID("v").String(),
		Outcomes: []byte(`[]`), Odds: []byte(`[]`), PayoutByOutcome: []byte(`[]`),
		UnclaimedPayout: "0", Policy: "parimutuel",
	}
	_, err := r.toMarket()
	assert.Error(t, err)
}

func TestBetRow_RoundTrip(t *testing.T) {
	claimed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b := &engine.Bet{
		Address:      keys.ProgramID("bet"),
		Bettor:       "alice",
		Market:       keys.ProgramID("market"),
		OutcomeIndex: 1,
		Amount:       100,
		Payout:       300,
		Claimed:      true,
		PlacedAt:     claimed.Add(-24 * time.Hour),
		ClaimedAt:    &claimed,
		Bump:         251,
	}
	got, err := toBetRow(b).toBet()
	require.NoError(t, err)
	assert.Equal(t, b, got)
}
