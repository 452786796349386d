// internal/fixture/fixture.go
// Package fixture is a minimal in-memory stand-in for the out-of-scope
// "population/lineage" data structure (spec.md §1): the core rating
// modules only need a flat slice of unique string identifiers, but
// the example CLI wants named players with collision-free
// synthetic IDs. Real fixture loading (JSON parsers for chess/football/
// LLM datasets) stays an external collaborator — this package never
// reads files.
package fixture

import (
	"fmt"

	"github.com/google/uuid"
)

// Player is one named entrant in a toy population.
type Player struct {
	ID   uuid.UUID
	Name string
}

// Population is an ordered, name-unique roster. It exists only to hand
// callers a `[]string` of identifiers in a stable order plus a
// human-readable label for each — the rating core never sees this type.
type Population struct {
	players []Player
	byName  map[string]int
}

// NewPopulation builds a Population from the given names, assigning each
// a fresh random UUID. Duplicate names are rejected.
func NewPopulation(names ...string) (*Population, error) {
	p := &Population{byName: make(map[string]int, len(names))}
	for _, name := range names {
		if _, ok := p.byName[name]; ok {
			return nil, fmt.Errorf("fixture: duplicate player name %q", name)
		}
		p.byName[name] = len(p.players)
		p.players = append(p.players, Player{ID: uuid.New(), Name: name})
	}
	return p, nil
}

// Names returns the roster's identifiers in registration order, the
// shape every rating function's `players` parameter expects.
func (p *Population) Names() []string {
	out := make([]string, len(p.players))
	for i, player := range p.players {
		out[i] = player.Name
	}
	return out
}

// Player looks up a roster entry by name.
func (p *Population) Player(name string) (Player, bool) {
	idx, ok := p.byName[name]
	if !ok {
		return Player{}, false
	}
	return p.players[idx], true
}

// Len returns the roster size.
func (p *Population) Len() int {
	return len(p.players)
}
