package overlay

import (
	"image/color"
	"log/slog"
	"sync"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

// windowOverlay renders the suggestion in a small undecorated Gio window.
// The render loop runs on its own goroutine; Show and Hide only swap the
// displayed text and invalidate the frame, so the engine never blocks on
// drawing.
type windowOverlay struct {
	win *app.Window
	log *slog.Logger

	mu   sync.Mutex
	text string
}

func newWindow(log *slog.Logger) Overlay {
	o := &windowOverlay{
		win: new(app.Window),
		log: log,
	}
	o.win.Option(
		app.Title("suggestd"),
		app.Size(unit.Dp(480), unit.Dp(80)),
		app.Decorated(false),
	)

	go func() {
		if err := o.loop(); err != nil {
			log.Warn("overlay window closed", "error", err)
		}
	}()
	return o
}

// Show swaps in the suggestion text.
func (o *windowOverlay) Show(text string) {
	o.mu.Lock()
	o.text = text
	o.mu.Unlock()
	o.win.Invalidate()
}

// Hide clears the window.
func (o *windowOverlay) Hide() {
	o.Show("")
}

// Close asks the window to shut down.
func (o *windowOverlay) Close() error {
	o.win.Perform(system.ActionClose)
	return nil
}

func (o *windowOverlay) loop() error {
	th := material.NewTheme()
	var ops op.Ops
	for {
		switch e := o.win.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			o.mu.Lock()
			current := o.text
			o.mu.Unlock()

			paint.Fill(gtx.Ops, color.NRGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xF0})
			layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				label := material.Body1(th, current)
				label.Color = color.NRGBA{R: 0xE8, G: 0xE8, B: 0xF0, A: 0xFF}
				label.Alignment = text.Middle
				return label.Layout(gtx)
			})

			e.Frame(gtx.Ops)
		}
	}
}
