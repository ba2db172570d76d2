package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/replaystats/pkg/fuzz"
	"github.com/Sumatoshi-tech/replaystats/pkg/replay"
)

// tableScorer returns fixed scores per (in-game, expected) pair.
type tableScorer map[[2]string]int

func (s tableScorer) Score(a, b string) int {
	return s[[2]string{a, b}]
}

func players(first, second string) map[int]replay.Player {
	return map[int]replay.Player{
		1: {Name: first, Race: replay.RaceTerran},
		2: {Name: second, Race: replay.RaceZerg},
	}
}

func TestResolve_FirstName(t *testing.T) {
	t.Parallel()

	r, err := NewResolver(fuzz.ScorerFunc(fuzz.PartialRatio), "")
	require.NoError(t, err)
	assert.Equal(t, StrategyFirstName, r.Strategy())

	tests := []struct {
		name     string
		players  map[int]replay.Player
		expected []string
		want     map[int]string
	}{
		{
			name:     "clan tag on first player",
			players:  players("[BASE]PlayerOne", "PlayerTwo"),
			expected: []string{"PlayerOne", "PlayerTwo"},
			want:     map[int]string{1: "PlayerOne", 2: "PlayerTwo"},
		},
		{
			name:     "first expected name is player two",
			players:  players("Serral", "Reynor"),
			expected: []string{"Reynor", "Serral"},
			want:     map[int]string{1: "Serral", 2: "Reynor"},
		},
		{
			name:     "extra expected names ignored",
			players:  players("Maru", "Clem"),
			expected: []string{"Clem", "Maru", "Oliveira"},
			want:     map[int]string{1: "Maru", 2: "Clem"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Resolve(tt.players, tt.expected)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_FirstNameTieGoesToLowerID(t *testing.T) {
	t.Parallel()

	r, err := NewResolver(tableScorer{}, StrategyFirstName)
	require.NoError(t, err)

	got, err := r.Resolve(players("a", "b"), []string{"X", "Y"})
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "X", 2: "Y"}, got)
}

func TestResolve_FirstNameIgnoresSecondName(t *testing.T) {
	t.Parallel()

	// Player 2 matches the second name perfectly but player 1 still wins
	// the first name on a higher score.
	scorer := tableScorer{
		{"p1", "X"}: 40,
		{"p2", "X"}: 30,
		{"p2", "Y"}: 0,
		{"p1", "Y"}: 100,
	}

	first, err := NewResolver(scorer, StrategyFirstName)
	require.NoError(t, err)

	got, err := first.Resolve(players("p1", "p2"), []string{"X", "Y"})
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "X", 2: "Y"}, got)

	assignment, err := NewResolver(scorer, StrategyAssignment)
	require.NoError(t, err)

	got, err = assignment.Resolve(players("p1", "p2"), []string{"X", "Y"})
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "Y", 2: "X"}, got)
}

func TestResolve_AssignmentTieKeepsOrder(t *testing.T) {
	t.Parallel()

	r, err := NewResolver(tableScorer{}, StrategyAssignment)
	require.NoError(t, err)

	got, err := r.Resolve(players("a", "b"), []string{"X", "Y"})
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "X", 2: "Y"}, got)
}

func TestResolve_Validation(t *testing.T) {
	t.Parallel()

	r, err := NewResolver(fuzz.ScorerFunc(fuzz.Ratio), StrategyFirstName)
	require.NoError(t, err)

	_, err = r.Resolve(players("a", "b"), []string{"only"})
	require.ErrorIs(t, err, ErrExpectedNames)

	_, err = r.Resolve(players("a", "b"), nil)
	require.ErrorIs(t, err, ErrExpectedNames)

	three := players("a", "b")
	three[3] = replay.Player{Name: "c"}

	_, err = r.Resolve(three, []string{"a", "b"})
	require.ErrorIs(t, err, ErrUnsupportedPlayers)

	_, err = r.Resolve(map[int]replay.Player{1: {Name: "a"}, 4: {Name: "b"}}, []string{"a", "b"})
	require.ErrorIs(t, err, ErrUnsupportedPlayers)

	_, err = r.Resolve(map[int]replay.Player{1: {Name: "a"}}, []string{"a", "b"})
	require.ErrorIs(t, err, ErrUnsupportedPlayers)
}

func TestNewResolver_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewResolver(nil, StrategyFirstName)
	require.ErrorIs(t, err, ErrNilScorer)

	_, err = NewResolver(fuzz.ScorerFunc(fuzz.Ratio), "hungarian")
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestResolve_BindingIsInjective(t *testing.T) {
	t.Parallel()

	for _, strategy := range Strategies() {
		r, err := NewResolver(fuzz.ScorerFunc(fuzz.PartialRatio), strategy)
		require.NoError(t, err)

		got, err := r.Resolve(players("Zest", "Zest"), []string{"Zest", "Rogue"})
		require.NoError(t, err, strategy)
		assert.Len(t, got, 2, strategy)
		assert.NotEqual(t, got[1], got[2], strategy)
	}
}
