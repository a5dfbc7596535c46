package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"feedagg/internal/observability/metrics"
)

// execTimeout bounds how long the child decoder is allowed to run
// before the parent kills it and treats the attempt as a failure.
const execTimeout = 15 * time.Second

// Sandbox invokes the thumbnailworker child process to resize and pad
// one image, isolating the untrusted decode from the parent pipeline.
type Sandbox struct {
	// WorkerPath is the path to the thumbnailworker binary, as passed to
	// NewSandbox. cmd/aggregator passes a path next to its own executable
	// (see SelfPath); tests pass their own.
	WorkerPath string
}

// NewSandbox builds a Sandbox that runs the thumbnailworker binary at
// workerPath.
func NewSandbox(workerPath string) *Sandbox {
	return &Sandbox{WorkerPath: workerPath}
}

// ResizeAndPad runs the full L3 contract: it hands imageBytes to the
// child over stdin, waits for it to exit, and reports success iff the
// child exited 0. The child is solely responsible for writing the
// cachePath+".pad" or cachePath+".failed" artifact.
func (s *Sandbox) ResizeAndPad(ctx context.Context, imageBytes []byte, width, height, outSize int, cachePath string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.WorkerPath,
		strconv.Itoa(width), strconv.Itoa(height), strconv.Itoa(outSize), cachePath)
	cmd.Stdin = bytes.NewReader(imageBytes)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		metrics.RecordSandboxCrash()
		return false, nil
	}
	return false, fmt.Errorf("run thumbnailworker: %w (stderr: %s)", err, stderr.String())
}

// SelfPath returns the path to the currently running executable, used
// to locate thumbnailworker when it's built as a sibling binary in the
// same deployment artifact.
func SelfPath() (string, error) {
	return os.Executable()
}
