package harness

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"mantis/internal/capture"
	"mantis/internal/ux"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

var (
	// ErrNoResult reports a caller that mishandled the blocking call
	// and passed no result at all.
	ErrNoResult = errors.New("no result returned")

	// ErrDecisionTimeout reports that the operator never reached a
	// verdict within the configured window.
	ErrDecisionTimeout = errors.New("operator failed to reach a verdict in time")
)

// DefaultTimeout bounds the wait for an operator verdict when the
// caller does not configure one.
const DefaultTimeout = 10 * time.Minute

// Options configures one manual test interaction.
type Options struct {
	// TestName identifies the test; it becomes the capture file stem.
	TestName string

	// HeaderText is an optional warning banner above the instructions.
	HeaderText string

	// Instructions is the markdown description the operator follows.
	Instructions string

	// Capturer supplies the failure evidence. Required for the Fail
	// flow to complete.
	Capturer capture.Capturer

	// Timeout bounds the blocking wait; DefaultTimeout when zero.
	Timeout time.Duration

	// Styles overrides the auto-detected theme when non-nil.
	Styles *ux.Styles

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Input and Output redirect the UI's terminal. Used by tests; nil
	// means the real terminal.
	Input  io.Reader
	Output io.Writer
}

// Await blocks until the operator's verdict (or the timeout) produces a
// terminal result. The returned result is never nil; every no-verdict
// path is carried in Result.Err.
type Await func() *Result

// Start shows the manual test frame and returns immediately with an
// Await the test driver blocks on. Construction failures are not
// returned here; they surface as an error-bearing result, so the caller
// has a single result-handling path.
func Start(opts Options) Await {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	styles := ux.DefaultStyles()
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	// One-shot handoff: the UI goroutine fulfills, the test goroutine
	// awaits. The buffer keeps the UI from blocking if the caller
	// already gave up.
	resultCh := make(chan *Result, 1)
	var once sync.Once
	deliver := func(res *Result) {
		once.Do(func() { resultCh <- res })
	}

	f, err := newFrame(frameOptions{
		testName:     opts.TestName,
		headerText:   opts.HeaderText,
		instructions: opts.Instructions,
		capturer:     opts.Capturer,
		styles:       styles,
	}, deliver)
	if err != nil {
		logger.Error("failed to construct manual test frame",
			zap.String("test", opts.TestName), zap.Error(err))
		deliver(errorResult(err))
		return waiter(resultCh, nil, timeout, logger, opts.TestName)
	}

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	program := tea.NewProgram(f, progOpts...)

	go func() {
		if _, err := program.Run(); err != nil {
			deliver(errorResult(fmt.Errorf("manual test frame failed: %w", err)))
			return
		}
		// A clean exit without a verdict means the frame was torn down
		// externally (signal, closed terminal).
		deliver(errorResult(errors.New("manual test frame closed without a verdict")))
	}()

	return waiter(resultCh, program, timeout, logger, opts.TestName)
}

func waiter(resultCh <-chan *Result, program *tea.Program, timeout time.Duration,
	logger *zap.Logger, testName string) Await {
	return func() *Result {
		logger.Info("waiting for operator verdict",
			zap.String("test", testName),
			zap.Duration("timeout", timeout))

		select {
		case res := <-resultCh:
			return res
		case <-time.After(timeout):
			if program != nil {
				program.Quit()
			}
			logger.Error("operator verdict timed out",
				zap.String("test", testName),
				zap.Duration("timeout", timeout))
			return errorResult(ErrDecisionTimeout)
		}
	}
}
