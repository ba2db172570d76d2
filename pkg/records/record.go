// Package records builds per-unit stat records from replay telemetry and
// accumulates them across a run.
package records

import "github.com/Sumatoshi-tech/replaystats/pkg/alg/mapx"

// Record is one unit type's production and loss for one player in one game.
type Record struct {
	GameID     string  `json:"game_id"     yaml:"game_id"     schema:"minLength=1"`
	Map        string  `json:"map"         yaml:"map"`
	Duration   float64 `json:"duration"    yaml:"duration"    schema:"minimum=0"`
	Group      *string `json:"group"       yaml:"group"`
	PlayerName string  `json:"player_name" yaml:"player_name" schema:"minLength=1"`
	IsWinner   bool    `json:"is_winner"   yaml:"is_winner"`
	Race       string  `json:"race"        yaml:"race"        schema:"enum=Protoss|Terran|Zerg"`
	UnitName   string  `json:"unit_name"   yaml:"unit_name"   schema:"minLength=1"`
	Produced   int     `json:"produced"    yaml:"produced"    schema:"minimum=0"`
	Killed     int     `json:"killed"      yaml:"killed"      schema:"minimum=0"`
}

// GroupLabel returns the group letter, or "" when the game had no group.
func (r *Record) GroupLabel() string {
	if r.Group == nil {
		return ""
	}

	return *r.Group
}

// Aggregator is the append-only sequence of records of a run.
type Aggregator struct {
	records []Record
	games   int
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Append adds the records of one game, preserving their order.
func (a *Aggregator) Append(game []Record) {
	a.records = append(a.records, game...)
	a.games++
}

// Records returns the accumulated records in append order.
// The returned slice is owned by the caller.
func (a *Aggregator) Records() []Record {
	return mapx.CloneSlice(a.records)
}

// Len returns the number of records.
func (a *Aggregator) Len() int {
	return len(a.records)
}

// Games returns the number of Append calls.
func (a *Aggregator) Games() int {
	return a.games
}

// GameIDs returns the distinct game ids of recs in first-seen order.
func GameIDs(recs []Record) []string {
	return mapx.UniqueBy(recs, func(r Record) string { return r.GameID })
}
