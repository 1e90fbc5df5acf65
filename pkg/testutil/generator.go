// Package testutil provides test fixture generators for various graph
// topologies. All generators produce deterministic output for reproducible
// tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dvermeulen86/pertview/pkg/model"
)

// GeneratorConfig controls issue generation.
type GeneratorConfig struct {
	Seed          int64     // Random seed for determinism (0 = use current time)
	IDPrefix      string    // Prefix for issue IDs (default: "TEST")
	BaseTime      time.Time // Base time for timestamps (default: fixed time)
	IncludeHours  bool      // Generate estimated_hours on a subset of issues
	DefaultStatus model.Status
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42,
		IDPrefix:      "TEST",
		BaseTime:      time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		DefaultStatus: model.StatusOpen,
	}
}

// Generator creates test fixtures with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "TEST"
	}
	if cfg.DefaultStatus == "" {
		cfg.DefaultStatus = model.StatusOpen
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

func (g *Generator) id(i int) string {
	return fmt.Sprintf("%s-%d", g.cfg.IDPrefix, i)
}

func (g *Generator) issue(i int) model.Issue {
	iss := model.Issue{
		ID:        g.id(i),
		Title:     fmt.Sprintf("Issue %d", i),
		Status:    g.cfg.DefaultStatus,
		IssueType: model.TypeTask,
		CreatedAt: g.cfg.BaseTime.Add(time.Duration(i) * time.Minute),
	}
	if g.cfg.IncludeHours && g.rng.Intn(4) != 0 {
		h := float64(1 + g.rng.Intn(16))
		iss.EstimatedHours = &h
	}
	return iss
}

// Chain creates a linear chain: TEST-0 blocks TEST-1 blocks ... TEST-{n-1}.
func (g *Generator) Chain(size int) []model.Issue {
	issues := make([]model.Issue, size)
	for i := 0; i < size; i++ {
		issues[i] = g.issue(i)
		if i > 0 {
			issues[i].DependencyIDs = []string{g.id(i - 1)}
		}
	}
	return issues
}

// Diamond creates the classic four-node diamond: 0 blocks 1 and 2, both of
// which block 3. The two relation directions are deliberately mixed to cover
// both entry points of the same fact.
func (g *Generator) Diamond() []model.Issue {
	issues := make([]model.Issue, 4)
	for i := range issues {
		issues[i] = g.issue(i)
	}
	issues[0].BlocksIDs = []string{g.id(1), g.id(2)}
	issues[3].DependencyIDs = []string{g.id(1), g.id(2)}
	return issues
}

// Fan creates one root blocking n leaves.
func (g *Generator) Fan(leaves int) []model.Issue {
	issues := make([]model.Issue, leaves+1)
	issues[0] = g.issue(0)
	for i := 1; i <= leaves; i++ {
		issues[i] = g.issue(i)
		issues[i].DependencyIDs = []string{g.id(0)}
	}
	return issues
}

// Ring creates a dependency cycle of the given size.
func (g *Generator) Ring(size int) []model.Issue {
	issues := make([]model.Issue, size)
	for i := 0; i < size; i++ {
		issues[i] = g.issue(i)
		issues[i].DependencyIDs = []string{g.id((i + size - 1) % size)}
	}
	return issues
}

// RandomDAG creates a random acyclic graph of the given size. Edges only go
// from lower to higher index, so the result is guaranteed acyclic.
func (g *Generator) RandomDAG(size int, edgeProb float64) []model.Issue {
	issues := make([]model.Issue, size)
	for i := 0; i < size; i++ {
		issues[i] = g.issue(i)
	}
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if g.rng.Float64() < edgeProb {
				issues[j].DependencyIDs = append(issues[j].DependencyIDs, g.id(i))
			}
		}
	}
	return issues
}
