package suggest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suggestd/internal/inject"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (g *stubGenerator) Generate(ctx context.Context, transcriptPath string) (string, error) {
	g.calls++
	return g.text, g.err
}

type stubOverlay struct {
	shown []string
	hides int
}

func (o *stubOverlay) Show(text string) { o.shown = append(o.shown, text) }
func (o *stubOverlay) Hide()            { o.hides++ }

type cycleLog struct {
	outcomes []string
	texts    []string
}

func (c *cycleLog) RecordCycle(transcriptPath, text, outcome string) error {
	c.outcomes = append(c.outcomes, outcome)
	c.texts = append(c.texts, text)
	return nil
}

func newTestManager(gen Generator) (*Manager, *stubOverlay, *cycleLog, *inject.Recorder) {
	ov := &stubOverlay{}
	cycles := &cycleLog{}
	rec := inject.NewRecorder()
	injector := inject.NewInjector(rec, 0, testLogger())
	m := NewManager(gen, injector, ov, cycles, "/tmp/events.jsonl", testLogger())
	return m, ov, cycles, rec
}

func TestGenerationProducesPending(t *testing.T) {
	gen := &stubGenerator{text: "world"}
	m, ov, _, _ := newTestManager(gen)

	m.RequestGeneration(context.Background())

	assert.Equal(t, StatePending, m.State())
	assert.Equal(t, "world", m.Pending())
	assert.Equal(t, []string{"world"}, ov.shown)
}

func TestEmptyGenerationLeavesIdle(t *testing.T) {
	gen := &stubGenerator{text: ""}
	m, ov, _, _ := newTestManager(gen)

	m.RequestGeneration(context.Background())

	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, m.Pending())
	assert.Empty(t, ov.shown)
}

func TestGeneratorErrorLeavesIdle(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model offline")}
	m, ov, _, _ := newTestManager(gen)

	m.RequestGeneration(context.Background())

	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, ov.shown)
}

func TestNewGenerationDiscardsPending(t *testing.T) {
	gen := &stubGenerator{text: "first"}
	m, _, cycles, _ := newTestManager(gen)

	m.RequestGeneration(context.Background())
	require.Equal(t, "first", m.Pending())

	gen.text = "second"
	m.RequestGeneration(context.Background())

	assert.Equal(t, "second", m.Pending())
	assert.Equal(t, []string{"discarded"}, cycles.outcomes)
	assert.Equal(t, []string{"first"}, cycles.texts)
}

func TestAcceptInjectsAndConsumes(t *testing.T) {
	gen := &stubGenerator{text: "ok"}
	m, ov, cycles, rec := newTestManager(gen)

	m.RequestGeneration(context.Background())
	m.AcceptPending()

	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, m.Pending())
	assert.Len(t, rec.Strokes(), 4)
	assert.Equal(t, []string{"injected"}, cycles.outcomes)
	assert.Equal(t, 1, ov.hides)
}

func TestAcceptWithoutPendingIsNoOp(t *testing.T) {
	gen := &stubGenerator{text: "later"}
	m, ov, cycles, rec := newTestManager(gen)

	m.AcceptPending()

	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, rec.Strokes())
	assert.Empty(t, cycles.outcomes)
	assert.Zero(t, ov.hides)
	assert.Zero(t, gen.calls)
}

func TestAcceptDoesNotInjectTwice(t *testing.T) {
	gen := &stubGenerator{text: "once"}
	m, _, cycles, rec := newTestManager(gen)

	m.RequestGeneration(context.Background())
	m.AcceptPending()
	before := len(rec.Strokes())

	m.AcceptPending()

	assert.Len(t, rec.Strokes(), before)
	assert.Equal(t, []string{"injected"}, cycles.outcomes)
}

func TestPartialInjectionRecorded(t *testing.T) {
	gen := &stubGenerator{text: "ab"}
	m, _, cycles, rec := newTestManager(gen)
	rec.FailAt(1)

	m.RequestGeneration(context.Background())
	m.AcceptPending()

	assert.Equal(t, []string{"injected_partial"}, cycles.outcomes)
	assert.Equal(t, StateIdle, m.State())
}

func TestInjectionFailureRecorded(t *testing.T) {
	gen := &stubGenerator{text: "x"}
	ov := &stubOverlay{}
	cycles := &cycleLog{}
	injector := inject.NewInjector(nil, 0, testLogger())
	m := NewManager(gen, injector, ov, cycles, "/tmp/events.jsonl", testLogger())

	m.RequestGeneration(context.Background())
	m.AcceptPending()

	assert.Equal(t, []string{"inject_failed"}, cycles.outcomes)
	assert.Equal(t, StateIdle, m.State())
}

func TestCancelDiscardsPending(t *testing.T) {
	gen := &stubGenerator{text: "gone"}
	m, ov, cycles, rec := newTestManager(gen)

	m.RequestGeneration(context.Background())
	m.Cancel()

	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, rec.Strokes())
	assert.Equal(t, []string{"cancelled"}, cycles.outcomes)
	assert.Equal(t, 1, ov.hides)

	// Cancel when idle is silent.
	m.Cancel()
	assert.Equal(t, []string{"cancelled"}, cycles.outcomes)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "generating", StateGenerating.String())
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "consumed", StateConsumed.String())
}
