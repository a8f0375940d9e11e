package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// Session is one recorded play-through.
type Session struct {
	ID   string `json:"id"`
	Song string `json:"song"`
	// ConfigHash and Config identify the rules the session ran under.
	// Config is the JSON encoding of the full configuration.
	ConfigHash    string `json:"config_hash"`
	Config        []byte `json:"-"`
	EngineVersion string `json:"engine_version"`
	EventVersion  string `json:"event_version"`

	// Set by FinishSession.
	FinalFingerprint string `json:"final_fingerprint,omitempty"`
	Steps            int64  `json:"steps"`
	Finished         bool   `json:"finished"`
}

// NewSession fills in an unfinished session with a fresh id and the
// current engine and event versions.
func NewSession(gen IDGenerator, song string, configJSON []byte, configHash string) Session {
	return Session{
		ID:            gen.Generate(),
		Song:          song,
		ConfigHash:    configHash,
		Config:        configJSON,
		EngineVersion: ir.EngineVersion,
		EventVersion:  ir.EventVersion,
	}
}

// IDGenerator produces session ids.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids, so listing
// sessions by id lists them in creation order.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids for testing.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics once the ids are exhausted, which catches tests that create more
// sessions than they expect.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
