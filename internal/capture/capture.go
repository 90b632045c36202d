// Package capture produces the screen evidence attached to failing manual
// tests. A Capturer grabs whatever surface the operator is judging: a
// physical display by default, or the browser page under test.
package capture

import (
	"context"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Capturer takes a snapshot of the surface under test.
type Capturer interface {
	Capture(ctx context.Context) (image.Image, error)
}

// Display captures an attached physical display.
type Display struct {
	// Index selects the display; 0 is the primary one.
	Index int
}

// NewDisplay returns a capturer for the given display index.
func NewDisplay(index int) *Display {
	return &Display{Index: index}
}

// Capture grabs the full bounds of the configured display.
func (d *Display) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays to capture")
	}
	if d.Index < 0 || d.Index >= n {
		return nil, fmt.Errorf("display %d out of range (have %d)", d.Index, n)
	}

	img, err := screenshot.CaptureRect(screenshot.GetDisplayBounds(d.Index))
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", d.Index, err)
	}
	return img, nil
}

// Func adapts a plain function to the Capturer interface.
type Func func(ctx context.Context) (image.Image, error)

// Capture calls f.
func (f Func) Capture(ctx context.Context) (image.Image, error) {
	return f(ctx)
}
