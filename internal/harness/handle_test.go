package harness

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read dir: %v", err)
	}
	return entries
}

func TestHandleResultNil(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := HandleResult(nil, "T", dir, zap.NewNop())

	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if path != "" {
		t.Fatalf("expected no capture path, got %q", path)
	}
	if len(dirEntries(t, dir)) != 0 {
		t.Fatalf("nil result must not cause file I/O")
	}
}

func TestHandleResultPass(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := HandleResult(passResult(), "T", dir, zap.NewNop())
	if err != nil {
		t.Fatalf("pass must not error: %v", err)
	}
	if path != "" {
		t.Fatalf("pass must not write a capture")
	}
	if len(dirEntries(t, dir)) != 0 {
		t.Fatalf("pass must not cause file I/O")
	}
}

func TestHandleResultHarnessError(t *testing.T) {
	boom := errors.New("frame exploded")

	_, err := HandleResult(errorResult(boom), "T", t.TempDir(), zap.NewNop())

	if !errors.Is(err, boom) {
		t.Fatalf("expected harness error to propagate, got %v", err)
	}
}

func TestHandleResultTimeoutIsDistinct(t *testing.T) {
	_, err := HandleResult(errorResult(ErrDecisionTimeout), "T", t.TempDir(), zap.NewNop())

	if !errors.Is(err, ErrDecisionTimeout) {
		t.Fatalf("expected timeout sentinel to survive wrapping, got %v", err)
	}
}

func TestHandleResultFailureWritesCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	shot := image.NewRGBA(image.Rect(0, 0, 12, 7))

	path, err := HandleResult(failResult("looks wrong", shot), "T", dir, zap.NewNop())

	if err == nil || !strings.Contains(err.Error(), "looks wrong") {
		t.Fatalf("expected failure error carrying the reason, got %v", err)
	}

	if path != filepath.Join(dir, "T.png") {
		t.Fatalf("unexpected capture path %q", path)
	}
	entries := dirEntries(t, dir)
	if len(entries) != 1 || entries[0].Name() != "T.png" {
		t.Fatalf("expected exactly one file T.png, got %v", entries)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open capture: %v", err)
	}
	defer file.Close()
	decoded, err := png.Decode(file)
	if err != nil {
		t.Fatalf("capture is not a valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 12 || decoded.Bounds().Dy() != 7 {
		t.Fatalf("capture has wrong dimensions: %v", decoded.Bounds())
	}
}

func TestHandleResultFailureWithoutCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := HandleResult(failResult("no evidence", nil), "T", dir, zap.NewNop())

	if err == nil || !strings.Contains(err.Error(), "no evidence") {
		t.Fatalf("expected failure error, got %v", err)
	}
	if path != "" {
		t.Fatalf("expected no capture path")
	}
	if len(dirEntries(t, dir)) != 0 {
		t.Fatalf("capture-less failure must not write files")
	}
}
