// Package store persists enumeration runs so results can be listed,
// inspected, and compared after the fact.
//
// Three backends are provided:
//   - memory: for tests and short-lived servers
//   - file: JSON files in a config directory, for CLI usage
//   - mongo: MongoDB, for shared deployments
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chromatree/chromatree/pkg/coloring"
	"github.com/chromatree/chromatree/pkg/graph"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("run not found")

// Run is the archived record of one enumeration.
type Run struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Problem   graph.Problem `json:"problem" bson:"problem"`
	GraphHash string        `json:"graph_hash" bson:"graph_hash"`

	// Outcome of the enumeration loop.
	Colorings  [][]int       `json:"colorings" bson:"colorings"`
	Iterations int           `json:"iterations" bson:"iterations"`
	Discarded  int           `json:"discarded" bson:"discarded"`
	Reason     string        `json:"reason" bson:"reason"`
	Duration   time.Duration `json:"duration_ns" bson:"duration_ns"`

	// Tree statistics at the time of the run.
	TotalNodes    int `json:"total_nodes" bson:"total_nodes"`
	ValidLeaves   int `json:"valid_leaves" bson:"valid_leaves"`
	InvalidLeaves int `json:"invalid_leaves" bson:"invalid_leaves"`
}

// NewRun creates a run record with a fresh ID and timestamp.
func NewRun(problem graph.Problem, graphHash string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Problem:   problem,
		GraphHash: graphHash,
	}
}

// SetColorings records the discovered proper colorings.
func (r *Run) SetColorings(assignments []coloring.Assignment) {
	r.Colorings = make([][]int, len(assignments))
	for i, a := range assignments {
		r.Colorings[i] = append([]int(nil), a...)
	}
}

// Store is the interface for run archive backends.
type Store interface {
	// Save persists a run, overwriting any run with the same ID.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs sorted newest first, at most limit entries.
	// A limit of zero or less means no limit.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
