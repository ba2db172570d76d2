// Package units classifies raw in-game unit type names into the canonical
// unit vocabulary used by exported records.
package units

// Kind is the outcome of classifying a raw unit name.
type Kind int

const (
	// Keep means the unit is reported under its own name.
	Keep Kind = iota
	// Ignore means the unit never produces an output record.
	Ignore
	// Merge means the unit is folded into a canonical unit shared by its variants.
	Merge
)

// String returns a lowercase label for the kind.
func (k Kind) String() string {
	switch k {
	case Ignore:
		return "ignore"
	case Merge:
		return "merge"
	case Keep:
		return "keep"
	default:
		return "unknown"
	}
}

// Classification pairs a Kind with the name records should carry.
// Name is empty for Ignore.
type Classification struct {
	Kind Kind
	Name string
}

// ignored lists transient and child entities: larvae, eggs, cocoons,
// summoned temporary units and auto-turrets.
var ignored = map[string]struct{}{
	"AdeptPhaseShift":         {},
	"Larva":                   {},
	"LocustMP":                {},
	"OracleStasisTrap":        {},
	"Interceptor":             {},
	"MULE":                    {},
	"AutoTurret":              {},
	"Egg":                     {},
	"TransportOverlordCocoon": {},
	"OverlordCocoon":          {},
	"LurkerMPEgg":             {},
	"LocustMPFlying":          {},
	"LocustMPPrecursor":       {},
	"InfestedTerransEgg":      {},
	"InfestorTerran":          {},
	"BroodlingEscort":         {},
	"Broodling":               {},
	"RavagerCocoon":           {},
	"BanelingCocoon":          {},
	"BroodLordCocoon":         {},
}

// variants maps unit-state variants (burrowed, sieged, transformed) to the
// logical unit they belong to.
var variants = map[string]string{
	"ObserverSiegeMode": "Observer",
	"WarpPrismPhasing":  "WarpPrism",
	"WidowMineBurrowed": "WidowMine",
	"SiegeTankSieged":   "SiegeTank",
	"ThorAP":            "Thor",
	"VikingFighter":     "Viking",
	"VikingAssault":     "Viking",
	"LiberatorAG":       "Liberator",
	"OverseerSiegeMode": "Overseer",
	"OverlordTransport": "Overlord",
	"LurkerMP":          "Lurker",
	"LurkerMPBurrowed":  "Lurker",
	"SwarmhostMP":       "Swarmhost",
}

// canonical is the value set of variants, so a canonical name seen on its
// own accumulates into the same record as its variants.
var canonical = func() map[string]struct{} {
	set := make(map[string]struct{}, len(variants))
	for _, name := range variants {
		set[name] = struct{}{}
	}

	return set
}()

// Classify maps a raw unit name to Ignore, Merge(canonical) or Keep(name).
func Classify(name string) Classification {
	if _, ok := ignored[name]; ok {
		return Classification{Kind: Ignore}
	}

	if target, ok := variants[name]; ok {
		return Classification{Kind: Merge, Name: target}
	}

	if _, ok := canonical[name]; ok {
		return Classification{Kind: Merge, Name: name}
	}

	return Classification{Kind: Keep, Name: name}
}

// IsIgnored reports whether name belongs to the ignore set.
func IsIgnored(name string) bool {
	_, ok := ignored[name]

	return ok
}

// IgnoredNames returns the ignore set in no particular order.
func IgnoredNames() []string {
	names := make([]string, 0, len(ignored))
	for name := range ignored {
		names = append(names, name)
	}

	return names
}
