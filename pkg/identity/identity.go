// Package identity binds in-game player ids to the player names expected
// from the directory hierarchy.
//
// Replays carry whatever name a player used in the client, often with a
// clan tag or a smurf suffix. The resolver scores those names against the
// expected names with a fuzzy scorer and assigns each player id exactly one
// expected name.
package identity

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/replaystats/pkg/replay"
)

// Sentinel resolver errors.
var (
	ErrUnsupportedPlayers = errors.New("replay must have exactly players 1 and 2")
	ErrExpectedNames      = errors.New("at least two expected player names required")
	ErrUnknownStrategy    = errors.New("unknown matching strategy")
	ErrNilScorer          = errors.New("scorer is nil")
)

// Matching strategies.
const (
	// StrategyFirstName scores every player against the first expected name
	// only. The best match takes it and the other player takes the second.
	StrategyFirstName = "first-name"
	// StrategyAssignment scores both expected names and keeps the
	// permutation with the highest total.
	StrategyAssignment = "assignment"
)

// Player ids supported by the resolver.
const (
	firstPlayer  = 1
	secondPlayer = 2
)

// Scorer rates the similarity of two strings in [0, 100]. The resolver
// passes the in-game name first and the expected name second.
type Scorer interface {
	Score(a, b string) int
}

// Resolver resolves player ids to expected names.
type Resolver struct {
	scorer   Scorer
	strategy string
}

// Strategies returns the known strategy names.
func Strategies() []string {
	return []string{StrategyAssignment, StrategyFirstName}
}

// NewResolver creates a resolver. An empty strategy means StrategyFirstName.
func NewResolver(scorer Scorer, strategy string) (*Resolver, error) {
	if scorer == nil {
		return nil, ErrNilScorer
	}

	if strategy == "" {
		strategy = StrategyFirstName
	}

	if !slices.Contains(Strategies(), strategy) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	return &Resolver{scorer: scorer, strategy: strategy}, nil
}

// Strategy returns the strategy in use.
func (r *Resolver) Strategy() string {
	return r.strategy
}

// Resolve maps each player id to one of the expected names.
// The returned map always holds ids 1 and 2 bound to distinct names.
func (r *Resolver) Resolve(players map[int]replay.Player, expected []string) (map[int]string, error) {
	err := validate(players, expected)
	if err != nil {
		return nil, err
	}

	if r.strategy == StrategyAssignment {
		return r.assign(players, expected), nil
	}

	return r.firstName(players, expected), nil
}

func validate(players map[int]replay.Player, expected []string) error {
	if len(expected) < 2 {
		return fmt.Errorf("%w: got %d", ErrExpectedNames, len(expected))
	}

	_, hasFirst := players[firstPlayer]
	_, hasSecond := players[secondPlayer]

	if len(players) != 2 || !hasFirst || !hasSecond {
		return fmt.Errorf("%w: got ids %v", ErrUnsupportedPlayers, sortedIDs(players))
	}

	return nil
}

// firstName iterates ids in ascending order, so the lower id wins a tie.
func (r *Resolver) firstName(players map[int]replay.Player, expected []string) map[int]string {
	bestID, bestScore := 0, -1

	for _, id := range sortedIDs(players) {
		score := r.scorer.Score(players[id].Name, expected[0])
		if score > bestScore {
			bestID, bestScore = id, score
		}
	}

	return map[int]string{
		bestID:          expected[0],
		otherID(bestID):   expected[1],
	}
}

// assign keeps the identity permutation unless the swap scores strictly higher.
func (r *Resolver) assign(players map[int]replay.Player, expected []string) map[int]string {
	first, second := players[firstPlayer].Name, players[secondPlayer].Name

	straight := r.scorer.Score(first, expected[0]) + r.scorer.Score(second, expected[1])
	swapped := r.scorer.Score(second, expected[0]) + r.scorer.Score(first, expected[1])

	if swapped > straight {
		return map[int]string{firstPlayer: expected[1], secondPlayer: expected[0]}
	}

	return map[int]string{firstPlayer: expected[0], secondPlayer: expected[1]}
}

func otherID(id int) int {
	if id == firstPlayer {
		return secondPlayer
	}

	return firstPlayer
}

func sortedIDs(players map[int]replay.Player) []int {
	ids := make([]int, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
