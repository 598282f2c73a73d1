package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/vidfill/internal/ports"
	"github.com/forPelevin/vidfill/internal/types"
)

// scriptedInvoker answers ffprobe with durations by file name and makes
// ffmpeg create its output file.
type scriptedInvoker struct {
	durations map[string]string
	calls     []string
}

func (s *scriptedInvoker) Invoke(_ context.Context, argv []string, _ time.Duration) (ports.InvokeResult, error) {
	s.calls = append(s.calls, argv[0])
	last := argv[len(argv)-1]
	switch argv[0] {
	case "ffprobe":
		d, ok := s.durations[filepath.Base(last)]
		if !ok {
			return ports.InvokeResult{ExitCode: 1, Stderr: "Invalid data found when processing input"}, nil
		}
		return ports.InvokeResult{Stdout: d + "\n"}, nil
	case "ffmpeg":
		if err := os.WriteFile(last, []byte("media"), 0o644); err != nil {
			return ports.InvokeResult{ExitCode: 1, Stderr: err.Error()}, nil
		}
		return ports.InvokeResult{}, nil
	}
	return ports.InvokeResult{}, types.ErrToolNotFound
}

func validConfig(root string) Config {
	return Config{
		AudioDir:         filepath.Join(root, "audio"),
		MaterialDir:      filepath.Join(root, "materials"),
		OutDir:           filepath.Join(root, "out"),
		WorkDir:          filepath.Join(root, "work"),
		ProbeTimeout:     30 * time.Second,
		TranscodeTimeout: 300 * time.Second,
		AudioCodec:       "aac",
		OutputExt:        "mp4",
		lookPath:         func(s string) (string, error) { return "/usr/bin/" + s, nil },
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]func(c *Config){
		"empty audio dir":     func(c *Config) { c.AudioDir = "" },
		"empty materials dir": func(c *Config) { c.MaterialDir = "" },
		"empty out dir":       func(c *Config) { c.OutDir = "" },
		"zero probe timeout":  func(c *Config) { c.ProbeTimeout = 0 },
		"negative transcode":  func(c *Config) { c.TranscodeTimeout = -time.Second },
		"empty codec":         func(c *Config) { c.AudioCodec = " " },
		"empty extension":     func(c *Config) { c.OutputExt = "." },
	}
	if err := validConfig("r").Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := validConfig("r")
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestCheckTools(t *testing.T) {
	cfg := validConfig("r")
	cfg.FFmpegPath = "/opt/ffmpeg"
	var looked []string
	cfg.lookPath = func(s string) (string, error) {
		looked = append(looked, s)
		if s == "/opt/ffmpeg" {
			return "", errors.New("missing")
		}
		return s, nil
	}
	err := CheckTools(cfg)
	if !errors.Is(err, types.ErrToolNotFound) {
		t.Fatalf("err = %v, want ErrToolNotFound", err)
	}
	if strings.Join(looked, ",") != "ffprobe,/opt/ffmpeg" {
		t.Fatalf("looked up %v", looked)
	}
}

func TestRun_EndToEndWithScriptedTools(t *testing.T) {
	root := t.TempDir()
	cfg := validConfig(root)
	for _, dir := range []string{cfg.AudioDir, cfg.MaterialDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	for _, p := range []string{
		filepath.Join(cfg.MaterialDir, "a.mp4"),
		filepath.Join(cfg.MaterialDir, "b.mp4"),
		filepath.Join(cfg.AudioDir, "bad.mp3"),
		filepath.Join(cfg.AudioDir, "voice.m4a"),
	} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	inv := &scriptedInvoker{durations: map[string]string{
		"a.mp4":     "5.0",
		"b.mp4":     "4.0",
		"voice.m4a": "8.5",
	}}
	cfg.invoker = inv
	cfg.Seed = 99

	finishCalls := 0
	var finishOK bool
	var finishMsg string
	cfg.OnFinish = func(ok bool, msg string) {
		finishCalls++
		finishOK, finishMsg = ok, msg
	}

	sum, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Attempted != 2 || sum.Succeeded != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.Jobs[0].Outcome != types.OutcomeSkippedNoAudioDuration {
		t.Fatalf("bad.mp3 outcome = %s", sum.Jobs[0].Outcome)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutDir, "voice.mp4")); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if finishCalls != 1 || !finishOK || finishMsg != "1 of 2 audio files converted" {
		t.Fatalf("finish calls=%d ok=%v msg=%q", finishCalls, finishOK, finishMsg)
	}

	entries, err := os.ReadDir(cfg.WorkDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("work dir not cleaned: %d entries", len(entries))
	}
}

func TestRun_FatalReportsFinishOnce(t *testing.T) {
	cfg := validConfig(t.TempDir())
	cfg.lookPath = func(string) (string, error) { return "", errors.New("missing") }

	calls := 0
	cfg.OnFinish = func(ok bool, msg string) {
		calls++
		if ok {
			t.Fatalf("fatal run reported ok")
		}
		if !strings.Contains(msg, "0 of 0") {
			t.Fatalf("unexpected finish message %q", msg)
		}
	}
	if _, err := Run(context.Background(), cfg); !errors.Is(err, types.ErrToolNotFound) {
		t.Fatalf("err = %v, want ErrToolNotFound", err)
	}
	if calls != 1 {
		t.Fatalf("finish calls = %d, want 1", calls)
	}
}
