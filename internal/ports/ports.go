package ports

import (
	"context"
	"time"
)

// InvokeResult is the captured outcome of one finished process. A non-zero
// ExitCode is not an error at this layer.
type InvokeResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ToolInvoker runs an external program synchronously. It returns an error only
// when the process could not produce an exit code: types.ErrToolNotFound,
// types.ErrTimeout, or the context's error on cancellation.
type ToolInvoker interface {
	Invoke(ctx context.Context, argv []string, timeout time.Duration) (InvokeResult, error)
}

// Prober is the subset of MediaTool the inventory scanner needs.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

type MediaTool interface {
	Prober
	Concat(ctx context.Context, manifestPath, outPath string) error
	Merge(ctx context.Context, videoPath, audioPath, outPath string) error
}
