package harness

import (
	"context"
	"fmt"
	"image"
	"strings"

	"mantis/internal/capture"
	"mantis/internal/ux"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// phase is the interaction state of the frame. The operator starts
// deciding, may detour through failure details, and ends done. Only the
// UI goroutine touches it.
type phase int

const (
	phaseDeciding phase = iota
	phaseDetails
	phaseDone
)

const (
	statusDeciding = "Follow the test description, then press [p]ass or [f]ail"
	statusDetails  = "Enter the failure reason, re-take the capture (ctrl+r), confirm with ctrl+f"
	statusNoEscape = "A verdict is required: pass or fail"
	statusNoReason = "Fail needs a non-empty reason first"
	statusCapture  = "Capturing the screen..."
)

// captureMsg carries the outcome of an asynchronous screen capture.
type captureMsg struct {
	shot image.Image
	err  error
}

// frameOptions configures a frame.
type frameOptions struct {
	testName     string
	headerText   string
	instructions string
	capturer     capture.Capturer
	styles       ux.Styles
}

// frame is the bubbletea model for one manual test.
type frame struct {
	opts   frameOptions
	styles ux.Styles

	viewport viewport.Model
	reason   textarea.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	phase     phase
	capturing bool
	shot      image.Image
	status    string

	width  int
	height int
	ready  bool

	// deliver hands the terminal result to the waiting test driver.
	// One-shot; guarded by delivered.
	deliver   func(*Result)
	delivered bool
}

// newFrame constructs the frame model. Construction failures are the
// caller's to fold into an error-bearing result.
func newFrame(opts frameOptions, deliver func(*Result)) (frame, error) {
	var renderer *glamour.TermRenderer
	var err error
	if opts.styles.Theme.IsDark {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(76),
		)
	} else {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(76),
		)
	}
	if err != nil {
		return frame{}, fmt.Errorf("failed to build instruction renderer: %w", err)
	}

	ta := textarea.New()
	ta.Placeholder = "Describe what went wrong..."
	ta.CharLimit = 2048
	ta.SetWidth(40)
	ta.SetHeight(6)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.styles.Spinner

	vp := viewport.New(80, 20)

	f := frame{
		opts:     opts,
		styles:   opts.styles,
		viewport: vp,
		reason:   ta,
		spin:     sp,
		renderer: renderer,
		phase:    phaseDeciding,
		status:   statusDeciding,
		deliver:  deliver,
	}
	f.setInstructions()
	return f, nil
}

// Init implements tea.Model.
func (f frame) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (f frame) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
		f.height = msg.Height
		f.ready = true
		f.layout()
		return f, nil

	case tea.KeyMsg:
		return f.handleKey(msg)

	case captureMsg:
		f.capturing = false
		if msg.err != nil {
			// The original harness treats a failed capture as fatal:
			// without evidence the fail verdict cannot be completed.
			return f.finish(errorResult(fmt.Errorf("screen capture failed: %w", msg.err)))
		}
		f.shot = msg.shot
		f.status = statusDetails
		return f, nil

	case spinner.TickMsg:
		if !f.capturing {
			return f, nil
		}
		var cmd tea.Cmd
		f.spin, cmd = f.spin.Update(msg)
		return f, cmd
	}

	return f, nil
}

// handleKey routes keyboard input by phase.
func (f frame) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if f.phase == phaseDone {
		return f, nil
	}

	// Closing the frame is disabled: the decision must go through
	// pass or fail.
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		f.status = statusNoEscape
		return f, nil
	}

	switch f.phase {
	case phaseDeciding:
		return f.handleDecidingKey(msg)
	case phaseDetails:
		return f.handleDetailsKey(msg)
	}
	return f, nil
}

func (f frame) handleDecidingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "p", "P":
		return f.finish(passResult())

	case "f", "F":
		f.phase = phaseDetails
		f.capturing = true
		f.status = statusCapture
		focusCmd := f.reason.Focus()
		f.layout()
		return f, tea.Batch(focusCmd, f.spin.Tick, f.captureCmd())

	case "q", "Q":
		f.status = statusNoEscape
		return f, nil
	}

	var cmd tea.Cmd
	f.viewport, cmd = f.viewport.Update(msg)
	return f, cmd
}

func (f frame) handleDetailsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlP:
		// Pass stays available after a first Fail; the operator may
		// realize the behavior was correct after all.
		return f.finish(passResult())

	case tea.KeyCtrlR:
		if f.capturing {
			return f, nil
		}
		f.capturing = true
		f.status = statusCapture
		return f, tea.Batch(f.spin.Tick, f.captureCmd())

	case tea.KeyCtrlF:
		reason := strings.TrimSpace(f.reason.Value())
		if reason == "" {
			f.status = statusNoReason
			return f, nil
		}
		if f.capturing {
			f.status = statusCapture
			return f, nil
		}
		return f.finish(failResult(reason, f.shot))
	}

	// Everything else edits the reason.
	var cmd tea.Cmd
	f.reason, cmd = f.reason.Update(msg)
	return f, cmd
}

// finish delivers the terminal result exactly once and quits the UI.
func (f frame) finish(res *Result) (tea.Model, tea.Cmd) {
	if f.delivered {
		return f, nil
	}
	f.delivered = true
	f.phase = phaseDone
	f.deliver(res)
	return f, tea.Quit
}

// captureCmd takes a screen capture off the UI loop.
func (f frame) captureCmd() tea.Cmd {
	capturer := f.opts.capturer
	return func() tea.Msg {
		if capturer == nil {
			return captureMsg{err: fmt.Errorf("no capturer configured")}
		}
		shot, err := capturer.Capture(context.Background())
		return captureMsg{shot: shot, err: err}
	}
}

// setInstructions renders the markdown instructions into the viewport.
func (f *frame) setInstructions() {
	rendered, err := f.renderer.Render(f.opts.instructions)
	if err != nil {
		// Fall back to the raw markdown rather than hiding the
		// instructions from the operator.
		rendered = f.opts.instructions
	}
	f.viewport.SetContent(rendered)
}

// layout resizes the panes for the current phase and window.
func (f *frame) layout() {
	if !f.ready {
		return
	}

	width := f.width
	if width < 20 {
		width = 20
	}

	// Header, optional banner, status bar and hints take fixed rows;
	// the rest goes to the instruction viewport and, in the details
	// phase, the failure panes.
	chrome := 4
	if f.opts.headerText != "" {
		chrome += 3
	}
	body := f.height - chrome
	if body < 5 {
		body = 5
	}

	if f.phase == phaseDetails {
		instructionRows := body / 2
		if instructionRows < 3 {
			instructionRows = 3
		}
		f.viewport.Width = width
		f.viewport.Height = instructionRows

		detailRows := body - instructionRows - 2
		if detailRows < 3 {
			detailRows = 3
		}
		half := width/2 - 4
		if half < 20 {
			half = 20
		}
		f.reason.SetWidth(half)
		f.reason.SetHeight(detailRows)
	} else {
		f.viewport.Width = width
		f.viewport.Height = body
	}
}

// View implements tea.Model.
func (f frame) View() string {
	if f.phase == phaseDone {
		return ""
	}

	var b strings.Builder

	b.WriteString(f.styles.Header.Render("Manual test: "+f.opts.testName) + "\n")

	if f.opts.headerText != "" {
		b.WriteString(f.styles.Banner.Render(f.opts.headerText) + "\n")
	}

	b.WriteString(f.viewport.View() + "\n")

	if f.phase == phaseDetails {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			f.renderReasonPane(),
			f.renderCapturePane(),
		) + "\n")
	}

	b.WriteString(f.styles.StatusBar.Render(f.status) + "\n")
	b.WriteString(f.renderHints())

	return b.String()
}

func (f frame) renderReasonPane() string {
	title := f.styles.Title.Render("Failure reason")
	return f.styles.Pane.Render(title + "\n" + f.reason.View())
}

func (f frame) renderCapturePane() string {
	title := f.styles.Title.Render("Screen capture")

	var body string
	switch {
	case f.capturing:
		body = f.spin.View() + " capturing..."
	case f.shot != nil:
		bounds := f.shot.Bounds()
		body = fmt.Sprintf("captured %dx%d\nsaved with the verdict on fail",
			bounds.Dx(), bounds.Dy())
	default:
		body = f.styles.Muted.Render("no capture yet")
	}

	return f.styles.Pane.Render(title + "\n" + body)
}

func (f frame) renderHints() string {
	if f.phase == phaseDetails {
		return f.styles.StatusBar.Render(
			f.styles.FailKey.Render("ctrl+f") + " confirm fail  " +
				f.styles.PassKey.Render("ctrl+p") + " pass  " +
				f.styles.Muted.Render("ctrl+r re-take capture"))
	}
	return f.styles.StatusBar.Render(
		f.styles.PassKey.Render("p") + " pass  " +
			f.styles.FailKey.Render("f") + " fail  " +
			f.styles.Muted.Render("↑/↓ scroll"))
}
