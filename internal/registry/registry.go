// Package registry provides an extraction-strategy registry for dispatching
// tabular cargo documents to format-specific extractors.
package registry

import (
	"sort"
	"sync"

	"uld_ingest/internal/cargo"
)

// Kind identifies the shape of tabular input a strategy consumes.
type Kind int

const (
	// KindSheet is a workbook sheet rendered as a string cell matrix.
	KindSheet Kind = iota
	// KindDelimited is a delimiter-split text file rendered the same way.
	KindDelimited
)

// Stats carries per-extraction row diagnostics. Processed counts accepted
// rows, Skipped counts rows dropped for missing or malformed fields.
type Stats struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// Add accumulates another extraction's counters.
func (s *Stats) Add(other Stats) {
	s.Processed += other.Processed
	s.Skipped += other.Skipped
}

// Strategy is implemented by each tabular extraction format.
type Strategy interface {
	// Name returns the strategy's unique identifier.
	Name() string

	// Kinds returns which input shapes this strategy handles.
	Kinds() []Kind

	// SheetNames returns the workbook sheet names this strategy targets.
	// Empty means "first sheet only" for KindSheet input.
	SheetNames() []string

	// Priority determines dispatch order. Lower number = tried first.
	Priority() int

	// Match performs a cheap layout check before extraction.
	// False means the grid definitely does not carry this format.
	Match(grid [][]string) bool

	// Extract parses the grid into flight records. A nil/empty result with
	// a nil error means "format not detected"; an error means the format
	// was recognized but the data is unusable.
	Extract(grid [][]string) ([]cargo.Flight, Stats, error)
}

// Registry holds registered strategies organised for priority dispatch.
type Registry struct {
	mu     sync.RWMutex
	byKind map[Kind][]Strategy
	sorted bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{byKind: make(map[Kind][]Strategy)}
}

// Global default registry.
var defaultRegistry = New()

// Default returns the global registry instance.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a strategy to the default registry.
// Called during init() in each extractor package.
func Register(s Strategy) {
	defaultRegistry.Register(s)
}

// Register adds a strategy to the registry.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range s.Kinds() {
		r.byKind[k] = append(r.byKind[k], s)
	}
	r.sorted = false
}

// Sort orders all strategy slices by priority. Call before dispatching.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sorted {
		return
	}
	for k := range r.byKind {
		strategies := r.byKind[k]
		sort.SliceStable(strategies, func(i, j int) bool {
			return strategies[i].Priority() < strategies[j].Priority()
		})
	}
	r.sorted = true
}

// StrategiesFor returns the strategies registered for a kind, in priority
// order when Sort has been called, otherwise in registration order.
func (r *Registry) StrategiesFor(kind Kind) []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Strategy, len(r.byKind[kind]))
	copy(out, r.byKind[kind])
	return out
}

// StrategyCount returns the number of unique registered strategies.
func (r *Registry) StrategyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	for _, strategies := range r.byKind {
		for _, s := range strategies {
			seen[s.Name()] = true
		}
	}
	return len(seen)
}
