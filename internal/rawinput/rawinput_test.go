package rawinput

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyNames(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyA, "A"},
		{KeyZ, "Z"},
		{Key0, "0"},
		{Key9, "9"},
		{KeyF1, "F1"},
		{KeyF12, "F12"},
		{KeySpace, "SPACE"},
		{KeyEscape, "ESC"},
		{KeyShift, "SHIFT"},
		{KeyControl, "CTRL"},
		{KeyAlt, "ALT"},
		{KeyCapsLock, "CAPS_LOCK"},
		{KeyUp, "UP_ARROW"},
		{KeySemicolon, "SEMICOLON"},
		{Key(0xE8), "VK_0xe8"},
		{Key(0xAB), "VK_0xab"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.key.Name())
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	for k := KeyA; k <= KeyZ; k++ {
		got, ok := ParseKey(k.Name())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}

	for _, name := range []string{"ESC", "SHIFT", "CTRL", "ALT", "SPACE", "BACKSPACE", "CAPS_LOCK"} {
		code, ok := ParseKey(name)
		require.True(t, ok, name)
		assert.Equal(t, name, code.Name())
	}
}

func TestParseKeyFunctionKeys(t *testing.T) {
	for k := KeyF1; k <= KeyF12; k++ {
		got, ok := ParseKey(k.Name())
		require.True(t, ok, k.Name())
		assert.Equal(t, k, got)
	}

	for _, name := range []string{"F0", "F13", "Fx"} {
		_, ok := ParseKey(name)
		assert.False(t, ok, name)
	}
}

func TestParseKeyLowercaseLetters(t *testing.T) {
	code, ok := ParseKey("q")
	require.True(t, ok)
	assert.Equal(t, "Q", code.Name())
}

func TestParseKeyUnknown(t *testing.T) {
	_, ok := ParseKey("HYPERDRIVE")
	assert.False(t, ok)
}

func TestKeyClassification(t *testing.T) {
	assert.True(t, KeyA.IsLetter())
	assert.False(t, Key0.IsLetter())
	assert.True(t, (Key0 + 5).IsDigit())
	assert.False(t, KeyA.IsDigit())
	assert.True(t, KeyShift.IsModifier())
	assert.True(t, KeyControl.IsModifier())
	assert.True(t, KeyAlt.IsModifier())
	assert.False(t, KeyCapsLock.IsModifier())
	assert.False(t, KeyA.IsModifier())
}

func TestSideString(t *testing.T) {
	assert.Equal(t, "left", SideLeft.String())
	assert.Equal(t, "right", SideRight.String())
}

func TestMouseButtonString(t *testing.T) {
	assert.Equal(t, "left", ButtonLeft.String())
	assert.Equal(t, "right", ButtonRight.String())
	assert.Equal(t, "middle", ButtonMiddle.String())
}

func TestSimulatedDeliversEvents(t *testing.T) {
	s := NewSimulated()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Start(ctx)
	require.NoError(t, err)

	s.MoveCursor(5, 7)
	s.Press(KeyA, SideLeft)
	s.Click(ButtonRight)
	s.Stop()

	var events []Event
	for ev := range ch {
		events = append(events, ev)
	}
	require.Len(t, events, 4)

	assert.Equal(t, EventKeyboard, events[0].Type)
	assert.Equal(t, KeyA, events[0].Keyboard.Code)
	assert.False(t, events[0].Keyboard.IsUp)
	assert.True(t, events[1].Keyboard.IsUp)
	assert.Equal(t, Point{X: 5, Y: 7}, events[0].Cursor)

	assert.Equal(t, EventMouse, events[2].Type)
	assert.Equal(t, ButtonRight, events[2].Mouse.Button)

	// Timestamps are strictly increasing.
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Timestamp, events[i-1].Timestamp)
	}
}

func TestSimulatedStartTwiceFails(t *testing.T) {
	s := NewSimulated()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := s.Start(ctx)
	require.NoError(t, err)
	defer s.Stop()

	_, err = s.Start(ctx)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestSimulatedEmitBeforeStartIsDropped(t *testing.T) {
	s := NewSimulated()
	s.EmitKey(KeyA, SideLeft, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := s.Start(ctx)
	require.NoError(t, err)
	s.Stop()

	count := 0
	for range ch {
		count++
	}
	assert.Zero(t, count)
}

func TestKeyEventConstructor(t *testing.T) {
	ev := KeyEvent(42, Point{X: 1, Y: 2}, KeyShift, SideRight, true)
	assert.Equal(t, uint64(42), ev.Timestamp)
	assert.Equal(t, EventKeyboard, ev.Type)
	assert.Equal(t, SideRight, ev.Keyboard.Side)
	assert.True(t, ev.Keyboard.IsUp)
}

func TestEventString(t *testing.T) {
	kev := KeyEvent(1, Point{}, KeyA, SideLeft, false)
	assert.Contains(t, kev.String(), "A")

	mev := MouseEvent(2, Point{X: 3, Y: 4}, ButtonLeft, true)
	assert.Contains(t, mev.String(), "left")
}