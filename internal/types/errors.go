package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrToolNotFound   = errors.New("external tool not found")
	ErrTimeout        = errors.New("external tool timed out")
	ErrInventoryEmpty = errors.New("inventory is empty")
	ErrCancelled      = errors.New("run cancelled")
)

type ProbeReason string

const (
	ProbeNonZeroExit     ProbeReason = "non-zero-exit"
	ProbeEmptyOutput     ProbeReason = "empty-output"
	ProbeTimeout         ProbeReason = "timeout"
	ProbeToolNotFound    ProbeReason = "tool-not-found"
	ProbeMalformedOutput ProbeReason = "malformed-output"
)

// ProbeError reports why a duration could not be read from a media file.
type ProbeError struct {
	Path   string
	Reason ProbeReason
	Detail string
	Err    error
}

func (e *ProbeError) Error() string {
	msg := fmt.Sprintf("ffprobe duration %s: %s", e.Path, e.Reason)
	if d := strings.TrimSpace(e.Detail); d != "" {
		msg += "\n" + d
	}
	return msg
}

func (e *ProbeError) Unwrap() error { return e.Err }

type Stage string

const (
	StageConcat Stage = "concat"
	StageMerge  Stage = "merge"
)

// StageError is a transcode failure carrying the tool's captured diagnostics.
type StageError struct {
	Stage    Stage
	Output   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *StageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ffmpeg %s %s", e.Stage, e.Output)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else {
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String()
}

func (e *StageError) Unwrap() error { return e.Err }
