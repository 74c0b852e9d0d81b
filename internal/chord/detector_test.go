package chord

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suggestd/internal/rawinput"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSoloPressFiresHandler(t *testing.T) {
	d := NewDetector(testLogger())

	var got []Press
	d.OnSoloPress(rawinput.KeyControl, rawinput.SideLeft, func(p Press) {
		got = append(got, p)
	})

	pos := rawinput.Point{X: 10, Y: 20}
	d.HandleModifier(rawinput.KeyControl, rawinput.SideLeft, false, 1000, pos)
	d.HandleModifier(rawinput.KeyControl, rawinput.SideLeft, true, 4000, pos)

	require.Len(t, got, 1)
	assert.Equal(t, rawinput.KeyControl, got[0].Key)
	assert.Equal(t, rawinput.SideLeft, got[0].Side)
	assert.Equal(t, uint64(3000), got[0].Duration())
	assert.Equal(t, pos, got[0].PressPos)
}

func TestCombinationSuppressesHandler(t *testing.T) {
	d := NewDetector(testLogger())

	fired := 0
	d.OnSoloPress(rawinput.KeyControl, rawinput.SideLeft, func(Press) { fired++ })

	d.HandleModifier(rawinput.KeyControl, rawinput.SideLeft, false, 1000, rawinput.Point{})
	d.NoteKeyDown(rawinput.KeyA)
	d.HandleModifier(rawinput.KeyControl, rawinput.SideLeft, true, 2000, rawinput.Point{})

	assert.Zero(t, fired)

	// The state resets on release: the next cycle is solo again.
	d.HandleModifier(rawinput.KeyControl, rawinput.SideLeft, false, 3000, rawinput.Point{})
	d.HandleModifier(rawinput.KeyControl, rawinput.SideLeft, true, 4000, rawinput.Point{})
	assert.Equal(t, 1, fired)
}

func TestKeyDownBeforePressDoesNotLatch(t *testing.T) {
	d := NewDetector(testLogger())

	fired := 0
	d.OnSoloPress(rawinput.KeyShift, rawinput.SideLeft, func(Press) { fired++ })

	// A key released before the modifier goes down is not a combination.
	d.NoteKeyDown(rawinput.KeyA)
	d.HandleModifier(rawinput.KeyShift, rawinput.SideLeft, false, 1000, rawinput.Point{})
	d.HandleModifier(rawinput.KeyShift, rawinput.SideLeft, true, 2000, rawinput.Point{})

	assert.Equal(t, 1, fired)
}

func TestSidesDispatchIndependently(t *testing.T) {
	d := NewDetector(testLogger())

	var left, right int
	d.OnSoloPress(rawinput.KeyControl, rawinput.SideLeft, func(Press) { left++ })
	d.OnSoloPress(rawinput.KeyControl, rawinput.SideRight, func(Press) { right++ })

	d.HandleModifier(rawinput.KeyControl, rawinput.SideRight, false, 1000, rawinput.Point{})
	d.HandleModifier(rawinput.KeyControl, rawinput.SideRight, true, 2000, rawinput.Point{})

	assert.Zero(t, left)
	assert.Equal(t, 1, right)
}

func TestBothSidesAliasSharedState(t *testing.T) {
	d := NewDetector(testLogger())

	var fired []rawinput.Side
	d.OnSoloPress(rawinput.KeyControl, rawinput.SideLeft, func(p Press) { fired = append(fired, p.Side) })
	d.OnSoloPress(rawinput.KeyControl, rawinput.SideRight, func(p Press) { fired = append(fired, p.Side) })

	// Left down, right down (overwrites the shared press), left up, right
	// up. The left release still sees isPressed and fires; the right
	// release finds the state already cleared.
	d.HandleModifier(rawinput.KeyControl, rawinput.SideLeft, false, 1000, rawinput.Point{})
	d.HandleModifier(rawinput.KeyControl, rawinput.SideRight, false, 2000, rawinput.Point{})
	d.HandleModifier(rawinput.KeyControl, rawinput.SideLeft, true, 3000, rawinput.Point{})
	d.HandleModifier(rawinput.KeyControl, rawinput.SideRight, true, 4000, rawinput.Point{})

	assert.Equal(t, []rawinput.Side{rawinput.SideLeft}, fired)
}

func TestAutoRepeatRestartsPress(t *testing.T) {
	d := NewDetector(testLogger())

	var got []Press
	d.OnSoloPress(rawinput.KeyAlt, rawinput.SideLeft, func(p Press) { got = append(got, p) })

	d.HandleModifier(rawinput.KeyAlt, rawinput.SideLeft, false, 1000, rawinput.Point{})
	d.NoteKeyDown(rawinput.KeyA)
	// Auto-repeat down clears the combination latch and restamps the press.
	d.HandleModifier(rawinput.KeyAlt, rawinput.SideLeft, false, 5000, rawinput.Point{})
	d.HandleModifier(rawinput.KeyAlt, rawinput.SideLeft, true, 6000, rawinput.Point{})

	require.Len(t, got, 1)
	assert.Equal(t, uint64(1000), got[0].Duration())
}

func TestUnmonitoredKeyNotConsumed(t *testing.T) {
	d := NewDetector(testLogger())

	handled := d.HandleModifier(rawinput.KeyA, rawinput.SideLeft, false, 1000, rawinput.Point{})
	assert.False(t, handled)
}

func TestMonitorAddsKeyOnce(t *testing.T) {
	d := NewDetector(testLogger())

	d.Monitor(rawinput.KeyCapsLock)
	d.Monitor(rawinput.KeyCapsLock)

	keys := d.Monitored()
	count := 0
	for _, k := range keys {
		if k == rawinput.KeyCapsLock {
			count++
		}
	}
	assert.Equal(t, 1, count)

	handled := d.HandleModifier(rawinput.KeyCapsLock, rawinput.SideLeft, false, 1000, rawinput.Point{})
	assert.True(t, handled)
	assert.True(t, d.IsPressed(rawinput.KeyCapsLock))
}

func TestInterveningLatchOnlyWhileHeld(t *testing.T) {
	d := NewDetector(testLogger())

	d.HandleModifier(rawinput.KeyShift, rawinput.SideLeft, false, 1000, rawinput.Point{})
	assert.False(t, d.HadInterveningKeys(rawinput.KeyShift))

	d.NoteKeyDown(rawinput.KeyA)
	assert.True(t, d.HadInterveningKeys(rawinput.KeyShift))

	// Control was not held; it stays clean.
	assert.False(t, d.HadInterveningKeys(rawinput.KeyControl))
}

func TestReleaseWithoutPressIsIgnored(t *testing.T) {
	d := NewDetector(testLogger())

	fired := 0
	d.OnSoloPress(rawinput.KeyControl, rawinput.SideLeft, func(Press) { fired++ })

	d.HandleModifier(rawinput.KeyControl, rawinput.SideLeft, true, 1000, rawinput.Point{})
	assert.Zero(t, fired)
}
