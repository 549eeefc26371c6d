package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeriver(t *testing.T) *Deriver {
	t.Helper()
	d, err := NewDeriver(ProgramID("solscore-test"), 64)
	require.NoError(t, err)
	return d
}

func TestFindAddress_Deterministic(t *testing.T) {
	d := newTestDeriver(t)

	a1, b1, err := d.MarketAddress("Premier League", "2024/25")
	require.NoError(t, err)
	// segundo deriver sem cache precisa chegar no mesmo resultado
	d2 := newTestDeriver(t)
	a2, b2, err := d2.MarketAddress("Premier League", "2024/25")
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.False(t, a1.IsZero())
}

func TestFindAddress_OffCurve(t *testing.T) {
	d := newTestDeriver(t)
	for _, season := range []string{"2021", "2022", "2023", "2024", "2025"} {
		addr, bump, err := d.MarketAddress("La Liga", season)
		require.NoError(t, err)
		assert.False(t, onCurve(addr), "season %s", season)
		assert.True(t, d.Verify(addr, bump, MarketSeeds("La Liga", season)...))
	}
}

func TestFindAddress_NoCollisionAcrossSeedBoundaries(t *testing.T) {
	d := newTestDeriver(t)
	a1, _, err := d.MarketAddress("ab", "c")
	require.NoError(t, err)
	a2, _, err := d.MarketAddress("a", "bc")
	require.NoError(t, err)
	assert.NotEqual(t, a1, a2)
}

func TestFindAddress_DifferentPrograms(t *testing.T) {
	d1, err := NewDeriver(ProgramID("one"), 8)
	require.NoError(t, err)
	d2, err := NewDeriver(ProgramID("two"), 8)
	require.NoError(t, err)

	a1, _, err := d1.MarketAddress("Serie A", "2024")
	require.NoError(t, err)
	a2, _, err := d2.MarketAddress("Serie A", "2024")
	require.NoError(t, err)
	assert.NotEqual(t, a1, a2)
}

func TestBetAddress_PerBettorPerMarket(t *testing.T) {
	d := newTestDeriver(t)
	m1, _, err := d.MarketAddress("NBA", "2024")
	require.NoError(t, err)
	m2, _, err := d.MarketAddress("NBA", "2025")
	require.NoError(t, err)

	alice1, _, err := d.BetAddress("alice", m1)
	require.NoError(t, err)
	alice1Again, _, err := d.BetAddress("alice", m1)
	require.NoError(t, err)
	alice2, _, err := d.BetAddress("alice", m2)
	require.NoError(t, err)
	bob1, _, err := d.BetAddress("bob", m1)
	require.NoError(t, err)

	assert.Equal(t, alice1, alice1Again)
	assert.NotEqual(t, alice1, alice2)
	assert.NotEqual(t, alice1, bob1)
}

func TestVerify_WrongBump(t *testing.T) {
	d := newTestDeriver(t)
	addr, bump, err := d.MarketAddress("MLS", "2024")
	require.NoError(t, err)
	assert.False(t, d.Verify(addr, bump-1, MarketSeeds("MLS", "2024")...))
	assert.False(t, d.Verify(addr, bump, MarketSeeds("MLS", "2023")...))
}

func TestCreateAddress_SeedTooLong(t *testing.T) {
	_, err := CreateAddress([][]byte{[]byte(strings.Repeat("x", MaxSeedLength+1))}, 255, ProgramID("p"))
	assert.ErrorIs(t, err, ErrSeedTooLong)
}

func TestParseAddress_RoundTrip(t *testing.T) {
	d := newTestDeriver(t)
	addr, _, err := d.MarketAddress("Bundesliga", "2024")
	require.NoError(t, err)

	parsed, err := ParseAddress(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)

	_, err = ParseAddress("not-base58-0OIl")
	assert.ErrorIs(t, err, ErrInvalidBase58)
}
