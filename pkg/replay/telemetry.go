// Package replay defines the per-game telemetry consumed by the walker and
// the parser adapters that produce it.
//
// Replay files themselves are decoded by an external engine. This package
// reads what that engine emits: players, a per-tick timeline of unit
// states, and match metadata.
package replay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Sentinel telemetry errors.
var (
	ErrEmptyTimeline      = errors.New("telemetry timeline is empty")
	ErrMissingPlayerFrame = errors.New("final snapshot has no frame for player")
	ErrMalformedUnitState = errors.New("malformed unit state")
)

// Race is a playable race.
type Race string

// Playable races.
const (
	RaceProtoss Race = "Protoss"
	RaceTerran  Race = "Terran"
	RaceZerg    Race = "Zerg"
)

// Valid reports whether r is one of the three playable races.
func (r Race) Valid() bool {
	switch r {
	case RaceProtoss, RaceTerran, RaceZerg:
		return true
	default:
		return false
	}
}

// Player is an in-game participant as reported by the replay.
type Player struct {
	Name string `json:"name" yaml:"name"`
	Race Race   `json:"race" yaml:"race"`
}

// Metadata describes the match as a whole.
type Metadata struct {
	Map        string  `json:"map"         yaml:"map"`
	GameLength float64 `json:"game_length" yaml:"game_length"`
	Winner     int     `json:"winner"      yaml:"winner"`
}

// UnitCount is the cumulative state of one unit type for one player.
type UnitCount struct {
	Name string
	Live int
	Died int
}

// unitCounts is the wire form of a UnitCount value.
type unitCounts struct {
	Live int `json:"live" yaml:"live"`
	Died int `json:"died" yaml:"died"`
}

// UnitState lists unit counts in the order the replay reported them.
// On the wire it is an object keyed by unit name.
type UnitState []UnitCount

// PlayerFrame is one player's share of a timeline snapshot.
type PlayerFrame struct {
	Units UnitState `json:"unit" yaml:"unit"`
}

// Snapshot is one timeline tick keyed by player id.
type Snapshot map[int]PlayerFrame

// Telemetry is everything extracted from one replay file.
type Telemetry struct {
	Players  map[int]Player `json:"players"  yaml:"players"`
	Timeline []Snapshot     `json:"timeline" yaml:"timeline"`
	Metadata Metadata       `json:"metadata" yaml:"metadata"`
}

// FinalUnits returns the unit state of playerID in the last timeline snapshot.
func (t *Telemetry) FinalUnits(playerID int) (UnitState, error) {
	if len(t.Timeline) == 0 {
		return nil, ErrEmptyTimeline
	}

	frame, ok := t.Timeline[len(t.Timeline)-1][playerID]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrMissingPlayerFrame, playerID)
	}

	return frame.Units, nil
}

// upsert sets the counts of name. A repeated name keeps its first position
// and takes the latest counts.
func (u UnitState) upsert(name string, c unitCounts) UnitState {
	for i := range u {
		if u[i].Name == name {
			u[i].Live, u[i].Died = c.Live, c.Died

			return u
		}
	}

	return append(u, UnitCount{Name: name, Live: c.Live, Died: c.Died})
}

// UnmarshalJSON decodes a unit-name keyed object, keeping key order.
func (u *UnitState) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedUnitState, err)
	}

	if tok == nil {
		*u = nil

		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected object, got %v", ErrMalformedUnitState, tok)
	}

	var state UnitState

	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return fmt.Errorf("%w: %w", ErrMalformedUnitState, keyErr)
		}

		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected key %v", ErrMalformedUnitState, keyTok)
		}

		var counts unitCounts

		decodeErr := dec.Decode(&counts)
		if decodeErr != nil {
			return fmt.Errorf("%w: unit %q: %w", ErrMalformedUnitState, name, decodeErr)
		}

		state = state.upsert(name, counts)
	}

	_, err = dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedUnitState, err)
	}

	*u = state

	return nil
}

// MarshalJSON encodes the state as an object in list order.
func (u UnitState) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, c := range u {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, fmt.Errorf("encode unit name: %w", err)
		}

		val, err := json.Marshal(unitCounts{Live: c.Live, Died: c.Died})
		if err != nil {
			return nil, fmt.Errorf("encode unit %q: %w", c.Name, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a unit-name keyed mapping, keeping key order.
func (u *UnitState) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected mapping", ErrMalformedUnitState, node.Line)
	}

	state := make(UnitState, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value

		var counts unitCounts

		err := node.Content[i+1].Decode(&counts)
		if err != nil {
			return fmt.Errorf("%w: unit %q: %w", ErrMalformedUnitState, name, err)
		}

		state = state.upsert(name, counts)
	}

	*u = state

	return nil
}
