package harness

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// HandleResult consumes a terminal result for the named test. On
// failure it persists the screen capture as <outputDir>/<testName>.png
// before returning the failure, so the evidence survives even when the
// caller aborts on the error. The returned path is empty unless a
// capture was written.
func HandleResult(res *Result, testName, outputDir string, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if res == nil {
		return "", ErrNoResult
	}

	if res.Err != nil {
		return "", fmt.Errorf("manual test %s aborted: %w", testName, res.Err)
	}

	if res.Passed {
		logger.Info("manual test passed", zap.String("test", testName))
		return "", nil
	}

	logger.Error("manual test failed",
		zap.String("test", testName),
		zap.String("reason", res.FailureDescription))

	var capturePath string
	if res.ScreenCapture != nil {
		path, err := writeCapture(res, testName, outputDir)
		if err != nil {
			return "", fmt.Errorf("manual test %s failed (%s); saving capture also failed: %w",
				testName, res.FailureDescription, err)
		}
		capturePath = path
		logger.Info("saved screen capture",
			zap.String("test", testName),
			zap.String("path", path))
	}

	return capturePath, fmt.Errorf("manual test %s failed: %s", testName, res.FailureDescription)
}

func writeCapture(res *Result, testName, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(outputDir, testName+".png")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create capture file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, res.ScreenCapture); err != nil {
		return "", fmt.Errorf("encode capture: %w", err)
	}
	return path, nil
}
