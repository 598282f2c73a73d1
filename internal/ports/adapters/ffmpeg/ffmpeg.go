package ffmpeg

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/vidfill/internal/ports"
	"github.com/forPelevin/vidfill/internal/types"
)

const (
	DefaultProbeTimeout     = 30 * time.Second
	DefaultTranscodeTimeout = 300 * time.Second
	DefaultAudioCodec       = "aac"
)

type Options struct {
	FFmpegPath       string
	FFprobePath      string
	ProbeTimeout     time.Duration
	TranscodeTimeout time.Duration
	AudioCodec       string
}

type Adapter struct {
	ffmpeg  string
	ffprobe string
	run     ports.ToolInvoker

	probeTimeout     time.Duration
	transcodeTimeout time.Duration
	audioCodec       string
}

func New(run ports.ToolInvoker, opts Options) *Adapter {
	a := &Adapter{
		ffmpeg:           opts.FFmpegPath,
		ffprobe:          opts.FFprobePath,
		run:              run,
		probeTimeout:     opts.ProbeTimeout,
		transcodeTimeout: opts.TranscodeTimeout,
		audioCodec:       opts.AudioCodec,
	}
	if a.ffmpeg == "" {
		a.ffmpeg = "ffmpeg"
	}
	if a.ffprobe == "" {
		a.ffprobe = "ffprobe"
	}
	if a.probeTimeout <= 0 {
		a.probeTimeout = DefaultProbeTimeout
	}
	if a.transcodeTimeout <= 0 {
		a.transcodeTimeout = DefaultTranscodeTimeout
	}
	if a.audioCodec == "" {
		a.audioCodec = DefaultAudioCodec
	}
	return a
}

// ProbeDuration reads the container duration in seconds. Failures are
// reported as *types.ProbeError; cancellation returns the context error.
func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	argv := []string{a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	res, err := a.run.Invoke(ctx, argv, a.probeTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		reason := types.ProbeNonZeroExit
		switch {
		case errors.Is(err, types.ErrToolNotFound):
			reason = types.ProbeToolNotFound
		case errors.Is(err, types.ErrTimeout):
			reason = types.ProbeTimeout
		}
		return 0, &types.ProbeError{Path: path, Reason: reason, Detail: res.Stderr, Err: err}
	}
	if res.ExitCode != 0 {
		return 0, &types.ProbeError{Path: path, Reason: types.ProbeNonZeroExit, Detail: res.Stderr}
	}

	s := strings.TrimSpace(res.Stdout)
	if s == "" {
		return 0, &types.ProbeError{Path: path, Reason: types.ProbeEmptyOutput, Detail: res.Stderr}
	}
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(sec) || math.IsInf(sec, 0) {
		return 0, &types.ProbeError{Path: path, Reason: types.ProbeMalformedOutput, Detail: s, Err: err}
	}
	return sec, nil
}

// Concat stream-copies the clips listed in manifestPath into outPath using
// the concat demuxer.
func (a *Adapter) Concat(ctx context.Context, manifestPath, outPath string) error {
	argv := []string{a.ffmpeg,
		"-hide_banner",
		"-nostdin",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		outPath,
	}
	return a.transcode(ctx, types.StageConcat, argv, outPath)
}

// Merge copies the first video stream of videoPath and re-encodes the first
// audio stream of audioPath, stopping at the shorter of the two.
func (a *Adapter) Merge(ctx context.Context, videoPath, audioPath, outPath string) error {
	argv := []string{a.ffmpeg,
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", a.audioCodec,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outPath,
	}
	return a.transcode(ctx, types.StageMerge, argv, outPath)
}

func (a *Adapter) transcode(ctx context.Context, stage types.Stage, argv []string, outPath string) error {
	res, err := a.run.Invoke(ctx, argv, a.transcodeTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &types.StageError{Stage: stage, Output: outPath, ExitCode: res.ExitCode, Stderr: res.Stderr, Err: err}
	}
	if res.ExitCode != 0 {
		return &types.StageError{Stage: stage, Output: outPath, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return nil
}
