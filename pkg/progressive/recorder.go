package progressive

import (
	"context"
	"sync"

	"github.com/Sumatoshi-tech/threadlens/pkg/chartspec"
)

// Call is one sink invocation captured by a Recorder.
type Call struct {
	Op     string
	Target Target
	Spec   chartspec.Spec
	Msg    string
}

// Sink operation names recorded by Recorder.
const (
	OpDraw         = "draw"
	OpUpdate       = "update"
	OpShowPending  = "show-pending"
	OpClearPending = "clear-pending"
	OpShowError    = "show-error"
	OpNotice       = "notice"
)

// Recorder is a Sink that records every call. It backs `threadlens spec`
// and tests. FailDraw makes Draw and Update fail for the given targets.
type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	FailDraw map[Target]error
}

// Draw implements Sink.
func (r *Recorder) Draw(_ context.Context, target Target, spec chartspec.Spec) error {
	return r.record(Call{Op: OpDraw, Target: target, Spec: spec})
}

// Update implements Sink.
func (r *Recorder) Update(_ context.Context, target Target, spec chartspec.Spec) error {
	return r.record(Call{Op: OpUpdate, Target: target, Spec: spec})
}

// ShowPending implements Sink.
func (r *Recorder) ShowPending(target Target, msg string) {
	_ = r.record(Call{Op: OpShowPending, Target: target, Msg: msg})
}

// ClearPending implements Sink.
func (r *Recorder) ClearPending(target Target) {
	_ = r.record(Call{Op: OpClearPending, Target: target})
}

// ShowError implements Sink.
func (r *Recorder) ShowError(target Target, msg string) {
	_ = r.record(Call{Op: OpShowError, Target: target, Msg: msg})
}

// Notice implements Sink.
func (r *Recorder) Notice(msg string) {
	_ = r.record(Call{Op: OpNotice, Msg: msg})
}

func (r *Recorder) record(call Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if call.Op == OpDraw || call.Op == OpUpdate {
		if err, ok := r.FailDraw[call.Target]; ok {
			return err
		}
	}

	r.calls = append(r.calls, call)

	return nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Call, len(r.calls))
	copy(out, r.calls)

	return out
}

// Count returns how many calls of op hit target. An empty target matches
// every target.
func (r *Recorder) Count(op string, target Target) int {
	n := 0

	for _, call := range r.Calls() {
		if call.Op == op && (target == "" || call.Target == target) {
			n++
		}
	}

	return n
}

// Latest returns the last spec drawn or updated into target.
func (r *Recorder) Latest(target Target) (chartspec.Spec, bool) {
	calls := r.Calls()

	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Target == target && (calls[i].Op == OpDraw || calls[i].Op == OpUpdate) {
			return calls[i].Spec, true
		}
	}

	return chartspec.Spec{}, false
}
