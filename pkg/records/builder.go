package records

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Sumatoshi-tech/replaystats/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/replaystats/pkg/replay"
	"github.com/Sumatoshi-tech/replaystats/pkg/units"
)

// Sentinel builder errors.
var (
	ErrNilTelemetry   = errors.New("telemetry is nil")
	ErrUnknownPlayer  = errors.New("player missing from telemetry")
	ErrInvalidRace    = errors.New("invalid race")
	ErrNegativeCount  = errors.New("negative unit count")
	ErrNegativeLength = errors.New("negative game length")
)

const secondsPerMinute = 60

// mergeKey identifies one merged record within a game.
type mergeKey struct {
	playerID int
	unit     string
}

// Builder turns one game's telemetry into records.
type Builder struct {
	newID func() string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithIDGenerator replaces the random game id source.
func WithIDGenerator(gen func() string) BuilderOption {
	return func(b *Builder) {
		b.newID = gen
	}
}

// NewBuilder creates a Builder that stamps each game with a random UUID.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{newID: uuid.NewString}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build emits the records of one game. names binds player ids to player
// names. Kept units are emitted in the order the final snapshot lists them,
// players in ascending id order. Merged units follow in first-seen order.
func (b *Builder) Build(tel *replay.Telemetry, names map[int]string, group string) ([]Record, error) {
	if tel == nil {
		return nil, ErrNilTelemetry
	}

	if tel.Metadata.GameLength < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativeLength, tel.Metadata.GameLength)
	}

	base := Record{
		GameID:   b.newID(),
		Map:      tel.Metadata.Map,
		Duration: Minutes(tel.Metadata.GameLength),
		Group:    groupPtr(group),
	}

	var out []Record

	merged := mapx.NewOrderedMap[mergeKey, *Record]()

	for _, id := range mapx.SortedKeys(names) {
		player, ok := tel.Players[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, id)
		}

		if !player.Race.Valid() {
			return nil, fmt.Errorf("%w: player %d: %q", ErrInvalidRace, id, player.Race)
		}

		state, err := tel.FinalUnits(id)
		if err != nil {
			return nil, err
		}

		rec := base
		rec.PlayerName = names[id]
		rec.IsWinner = id == tel.Metadata.Winner
		rec.Race = string(player.Race)

		for _, unit := range state {
			if unit.Live < 0 || unit.Died < 0 {
				return nil, fmt.Errorf("%w: player %d: %s live=%d died=%d",
					ErrNegativeCount, id, unit.Name, unit.Live, unit.Died)
			}

			class := units.Classify(unit.Name)

			switch class.Kind {
			case units.Ignore:
				continue
			case units.Merge:
				acc, _ := merged.GetOrInsert(mergeKey{playerID: id, unit: class.Name}, func() *Record {
					r := rec
					r.UnitName = class.Name

					return &r
				})
				acc.Produced += unit.Live + unit.Died
				acc.Killed += unit.Died
			case units.Keep:
				r := rec
				r.UnitName = class.Name
				r.Produced = unit.Live + unit.Died
				r.Killed = unit.Died
				out = append(out, r)
			}
		}
	}

	for _, r := range merged.Values() {
		out = append(out, *r)
	}

	return out, nil
}

// Minutes converts a game length in seconds to minutes rounded to two decimals.
func Minutes(seconds float64) float64 {
	return math.Round(seconds/secondsPerMinute*100) / 100
}

func groupPtr(group string) *string {
	if group == "" {
		return nil
	}

	return &group
}
