package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecap_TwoTeams(t *testing.T) {
	text := `K:
alice 10k
bob 10.000
B:
carol 5k LF
dave 2.5k P
eve 5,000 lf p`

	parsed := ParseRecap(text)
	require.NotNil(t, parsed)

	require.Len(t, parsed.TeamK, 2)
	assert.Equal(t, "alice", parsed.TeamK[0].Name)
	assert.Equal(t, int64(10000), parsed.TeamK[0].Amount)
	assert.Equal(t, "bob", parsed.TeamK[1].Name)
	assert.Equal(t, int64(10000), parsed.TeamK[1].Amount)

	require.Len(t, parsed.TeamB, 3)
	assert.Equal(t, int64(5000), parsed.TeamB[0].Amount)
	assert.True(t, parsed.TeamB[0].IsLastWin)
	assert.False(t, parsed.TeamB[0].IsPending)

	assert.Equal(t, int64(2500), parsed.TeamB[1].Amount)
	assert.False(t, parsed.TeamB[1].IsLastWin)
	assert.True(t, parsed.TeamB[1].IsPending)

	assert.Equal(t, int64(5000), parsed.TeamB[2].Amount)
	assert.True(t, parsed.TeamB[2].IsLastWin)
	assert.True(t, parsed.TeamB[2].IsPending)

	assert.Equal(t, int64(20000), parsed.TeamK.Total())
	assert.Equal(t, int64(12500), parsed.TeamB.Total())
}

func TestParseRecap_NoMarkerReturnsNil(t *testing.T) {
	assert.Nil(t, ParseRecap("hello everyone"))
	assert.Nil(t, ParseRecap("alice 10k\nbob 5k"))
	assert.Nil(t, ParseRecap(""))
}

func TestParseRecap_MarkerWithoutEntries(t *testing.T) {
	parsed := ParseRecap("K:")
	require.NotNil(t, parsed)
	assert.False(t, parsed.HasEntries())
}

func TestParseRecap_CaseInsensitiveMarkers(t *testing.T) {
	parsed := ParseRecap("k:\nalice 5k\nb:\nbob 5k")
	require.NotNil(t, parsed)
	require.Len(t, parsed.TeamK, 1)
	require.Len(t, parsed.TeamB, 1)
}

func TestParseRecap_SkipsMalformedLines(t *testing.T) {
	text := `K:
alice 10k
just some chatter
bob
carol 7k`

	parsed := ParseRecap(text)
	require.NotNil(t, parsed)
	require.Len(t, parsed.TeamK, 2)
	assert.Equal(t, "alice", parsed.TeamK[0].Name)
	assert.Equal(t, "carol", parsed.TeamK[1].Name)
}

func TestParseRecap_LinesBeforeFirstMarkerIgnored(t *testing.T) {
	parsed := ParseRecap("alice 10k\nK:\nbob 5k")
	require.NotNil(t, parsed)
	require.Len(t, parsed.TeamK, 1)
	assert.Equal(t, "bob", parsed.TeamK[0].Name)
}

func TestParseRecap_MultiWordNames(t *testing.T) {
	parsed := ParseRecap("B:\nbig john 15k")
	require.NotNil(t, parsed)
	require.Len(t, parsed.TeamB, 1)
	assert.Equal(t, "big john", parsed.TeamB[0].Name)
	assert.Equal(t, int64(15000), parsed.TeamB[0].Amount)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"5k", 5000, true},
		{"5K", 5000, true},
		{"2.5k", 2500, true},
		{"10.000", 10000, true},
		{"10,000", 10000, true},
		{"1.250.000", 1250000, true},
		{"7000", 7000, true},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseAmount(tt.raw)
		assert.Equal(t, tt.ok, ok, "ok for %q", tt.raw)
		if tt.ok {
			assert.Equal(t, tt.want, got, "amount for %q", tt.raw)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "500", FormatAmount(500))
	assert.Equal(t, "5.000", FormatAmount(5000))
	assert.Equal(t, "1.250.000", FormatAmount(1250000))
	assert.Equal(t, "-10.000", FormatAmount(-10000))
}

func TestFormatTally_Balanced(t *testing.T) {
	tally := FormatTally(10000, 10000)
	assert.Contains(t, tally, "K: 10.000")
	assert.Contains(t, tally, "B: 10.000")
	assert.NotContains(t, tally, "equalize")
}

func TestFormatTally_Deficit(t *testing.T) {
	tally := FormatTally(15000, 10000)
	assert.Contains(t, tally, "Team B needs 5.000 to equalize")

	tally = FormatTally(10000, 15000)
	assert.Contains(t, tally, "Team K needs 5.000 to equalize")
}
