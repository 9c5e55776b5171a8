package coloring

import (
	"math/rand"
	"testing"

	"github.com/chromatree/chromatree/pkg/graph"
)

func triangleEdges() []graph.Edge {
	return []graph.Edge{{U: 0, V: 1}, {U: 1, V: 2}, {U: 0, V: 2}}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		assignment   Assignment
		edges        []graph.Edge
		wantValid    bool
		wantViolated int
	}{
		{"TriangleProper", Assignment{0, 1, 2}, triangleEdges(), true, 0},
		{"TriangleOneConflict", Assignment{0, 0, 2}, triangleEdges(), false, 1},
		{"TriangleAllSame", Assignment{1, 1, 1}, triangleEdges(), false, 3},
		{"NoEdges", Assignment{0, 0}, nil, true, 0},
		{"SingleEdgeEqual", Assignment{1, 1}, []graph.Edge{{U: 0, V: 1}}, false, 1},
		{"SingleEdgeDistinct", Assignment{0, 1}, []graph.Edge{{U: 0, V: 1}}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.assignment, tt.edges)
			if r.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", r.Valid, tt.wantValid)
			}
			if len(r.ViolatedEdges) != tt.wantViolated {
				t.Errorf("violated = %d, want %d", len(r.ViolatedEdges), tt.wantViolated)
			}
			if r.Valid != (len(r.ViolatedEdges) == 0) {
				t.Error("Valid must hold iff ViolatedEdges is empty")
			}
		})
	}
}

// Classification must not depend on the order edges are listed in.
func TestClassifyEdgePermutationInvariant(t *testing.T) {
	edges := []graph.Edge{{U: 0, V: 1}, {U: 1, V: 2}, {U: 2, V: 3}, {U: 0, V: 3}}
	a := Assignment{0, 0, 1, 1}
	want := Classify(a, edges)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		shuffled := append([]graph.Edge(nil), edges...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := Classify(a, shuffled)
		if got.Valid != want.Valid || len(got.ViolatedEdges) != len(want.ViolatedEdges) {
			t.Fatalf("trial %d: result differs under permutation", trial)
		}
		for i := range want.ViolatedEdges {
			if got.ViolatedEdges[i] != want.ViolatedEdges[i] {
				t.Fatalf("trial %d: violated[%d] = %v, want %v", trial, i, got.ViolatedEdges[i], want.ViolatedEdges[i])
			}
		}
	}
}

// Relabeling nodes consistently in both graph and assignment must preserve
// the verdict.
func TestClassifyRelabelInvariant(t *testing.T) {
	edges := triangleEdges()
	a := Assignment{0, 0, 2}

	perm := []int{2, 0, 1} // node i becomes perm[i]
	relabeled := make([]graph.Edge, len(edges))
	for i, e := range edges {
		relabeled[i] = graph.Edge{U: perm[e.U], V: perm[e.V]}.Normalize()
	}
	ra := make(Assignment, len(a))
	for i, c := range a {
		ra[perm[i]] = c
	}

	got := Classify(ra, relabeled)
	want := Classify(a, edges)
	if got.Valid != want.Valid || len(got.ViolatedEdges) != len(want.ViolatedEdges) {
		t.Errorf("relabeled verdict (%v, %d) differs from original (%v, %d)",
			got.Valid, len(got.ViolatedEdges), want.Valid, len(want.ViolatedEdges))
	}
}

func TestAssignmentComplete(t *testing.T) {
	if !(Assignment{0, 1, 2}).Complete() {
		t.Error("fully decided assignment reported incomplete")
	}
	if (Assignment{0, Unassigned, 2}).Complete() {
		t.Error("assignment with sentinel reported complete")
	}
}

func TestAssignmentInDomain(t *testing.T) {
	if !(Assignment{0, 2, 1}).InDomain(3) {
		t.Error("in-domain assignment rejected")
	}
	if (Assignment{0, 3}).InDomain(3) {
		t.Error("out-of-domain color accepted")
	}
	if !(Assignment{0, Unassigned}).InDomain(3) {
		t.Error("sentinel should not count against the domain")
	}
}

func TestAssignmentExtend(t *testing.T) {
	base := Assignment{0, 1}
	ext := base.Extend(2)
	if len(base) != 2 {
		t.Error("Extend mutated the receiver")
	}
	if len(ext) != 3 || ext[2] != 2 {
		t.Errorf("Extend = %v, want [0 1 2]", ext)
	}
}

func TestAssignmentKey(t *testing.T) {
	if got := (Assignment{0, 2, 1}).Key(); got != "0,2,1" {
		t.Errorf("Key = %q, want 0,2,1", got)
	}
	// Keys must distinguish [1,2] from [12].
	if (Assignment{1, 2}).Key() == (Assignment{12}).Key() {
		t.Error("keys collide")
	}
}

func TestExplain(t *testing.T) {
	a := Assignment{1, 1, 0}
	r := Classify(a, triangleEdges())
	conflicts := Explain(a, r)
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %d, want 1", len(conflicts))
	}
	if conflicts[0].Edge != (graph.Edge{U: 0, V: 1}) || conflicts[0].Color != 1 {
		t.Errorf("conflict = %+v, want edge {0,1} color 1", conflicts[0])
	}
}

func TestName(t *testing.T) {
	if Name(0) != "RED" || Name(1) != "BLUE" {
		t.Errorf("Name(0)=%q Name(1)=%q, want RED/BLUE", Name(0), Name(1))
	}
	if Name(10) != "COLOR_10" {
		t.Errorf("Name(10) = %q, want COLOR_10", Name(10))
	}
}
