package observability

import (
	"context"
	"testing"
	"time"
)

type recordingPipelineHooks struct {
	buildStarts int
	layoutDone  int
}

func (r *recordingPipelineHooks) OnBuildStart(_ context.Context, nodes, colors int) {
	r.buildStarts++
}
func (r *recordingPipelineHooks) OnBuildComplete(context.Context, int, int, time.Duration, error) {}
func (r *recordingPipelineHooks) OnEnumerateStart(context.Context, int, int)                      {}
func (r *recordingPipelineHooks) OnEnumerateComplete(context.Context, int, int, time.Duration, error) {
}
func (r *recordingPipelineHooks) OnLayoutStart(context.Context, int) {}
func (r *recordingPipelineHooks) OnLayoutComplete(_ context.Context, _ time.Duration, _ error) {
	r.layoutDone++
}

func TestSetPipelineHooks(t *testing.T) {
	rec := &recordingPipelineHooks{}
	SetPipelineHooks(rec)
	defer SetPipelineHooks(nil)

	Pipeline().OnBuildStart(context.Background(), 3, 3)
	Pipeline().OnLayoutComplete(context.Background(), time.Second, nil)

	if rec.buildStarts != 1 || rec.layoutDone != 1 {
		t.Errorf("hooks not invoked: %+v", rec)
	}
}

func TestNilRestoresNoops(t *testing.T) {
	SetPipelineHooks(nil)
	SetEnumerationHooks(nil)
	SetCacheHooks(nil)

	// Must not panic.
	Pipeline().OnBuildStart(context.Background(), 1, 1)
	Enumeration().OnIteration(context.Background(), 1, 0, 0)
	Cache().OnHit(context.Background(), "key")
}

type countingEnumHooks struct{ iterations int }

func (c *countingEnumHooks) OnIteration(context.Context, int, int, int) { c.iterations++ }

func TestEnumerationHooks(t *testing.T) {
	rec := &countingEnumHooks{}
	SetEnumerationHooks(rec)
	defer SetEnumerationHooks(nil)

	for i := 1; i <= 3; i++ {
		Enumeration().OnIteration(context.Background(), i, 1, i)
	}
	if rec.iterations != 3 {
		t.Errorf("iterations = %d, want 3", rec.iterations)
	}
}
