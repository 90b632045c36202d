// Package harness presents a manual test to a human operator and blocks
// the calling test driver until a verdict is reached. The operator sees
// the test instructions in a full-screen terminal frame, decides Pass or
// Fail, and on failure supplies a reason plus a screen capture before
// the verdict becomes final.
package harness

import "image"

// Result is the terminal outcome of one manual test interaction.
//
// Exactly one of three shapes describes a result: a pass, a fail with a
// non-empty reason (and usually a capture), or a harness error in Err.
// Err covers every path on which no verdict was obtained: UI
// construction or run failure, capture failure, and the decision
// timeout.
type Result struct {
	// Passed is the operator's verdict. Meaningful only when Err is nil.
	Passed bool

	// FailureDescription is the operator-entered reason. Empty on pass.
	FailureDescription string

	// ScreenCapture is the evidence taken at the moment of the first
	// Fail (possibly re-taken before confirming). Nil on pass.
	ScreenCapture image.Image

	// Err is set when the harness failed to obtain a verdict.
	Err error
}

func passResult() *Result {
	return &Result{Passed: true}
}

func failResult(reason string, shot image.Image) *Result {
	return &Result{FailureDescription: reason, ScreenCapture: shot}
}

func errorResult(err error) *Result {
	return &Result{Err: err}
}
