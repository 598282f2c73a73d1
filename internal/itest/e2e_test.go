//go:build integration

package itest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/vidfill/internal/pipeline"
	"github.com/forPelevin/vidfill/internal/types"
)

func TestE2E(t *testing.T) {
	tmp := t.TempDir()
	audioDir := filepath.Join(tmp, "audio")
	matDir := filepath.Join(tmp, "materials")
	for _, d := range []string{audioDir, matDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}

	// Clips share codec parameters so the concat demuxer can stream-copy them.
	for i, c := range []string{"red", "green", "blue"} {
		out := filepath.Join(matDir, fmt.Sprintf("clip %d.mp4", i))
		genFixture(t,
			"-f", "lavfi", "-i", fmt.Sprintf("color=c=%s:s=320x240:r=25:d=%d", c, 2+i),
			"-c:v", "libx264", "-pix_fmt", "yuv420p",
			out,
		)
	}
	// An apostrophe in the name exercises manifest quoting.
	genFixture(t,
		"-f", "lavfi", "-i", "color=c=white:s=320x240:r=25:d=3",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		filepath.Join(matDir, "it's.mp4"),
	)
	if err := os.WriteFile(filepath.Join(matDir, "broken.mp4"), []byte("not video"), 0o644); err != nil {
		t.Fatalf("write broken fixture: %v", err)
	}

	genFixture(t, "-f", "lavfi", "-i", "sine=frequency=440:duration=7", filepath.Join(audioDir, "tone.mp3"))
	genFixture(t, "-f", "lavfi", "-i", "sine=frequency=220:duration=4", filepath.Join(audioDir, "low.wav"))

	outDir := filepath.Join(tmp, "out")
	workDir := filepath.Join(tmp, "work")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var finished int
	cfg := pipeline.Config{
		AudioDir:         audioDir,
		MaterialDir:      matDir,
		OutDir:           outDir,
		WorkDir:          workDir,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		ProbeTimeout:     30 * time.Second,
		TranscodeTimeout: 2 * time.Minute,
		AudioCodec:       "aac",
		OutputExt:        "mp4",
		Seed:             7,
		Logf:             t.Logf,
		OnFinish:         func(bool, string) { finished++ },
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	sum, err := pipeline.Run(ctx, cfg)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if finished != 1 {
		t.Fatalf("OnFinish called %d times", finished)
	}
	if sum.Succeeded != 2 || sum.Attempted != 2 {
		for _, j := range sum.Jobs {
			t.Logf("%s: %s %v", j.AudioPath, j.Outcome, j.Err)
		}
		t.Fatalf("summary = %q", sum.Message())
	}

	for name, want := range map[string]float64{"tone.mp4": 7, "low.mp4": 4} {
		got, err := probeDurationSeconds(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		// -shortest trims to the audio, give or take a frame and codec padding.
		if math.Abs(got-want) > 0.5 {
			t.Fatalf("%s duration = %.2f, want ~%.0f", name, got, want)
		}
		streams, err := probeCodecTypes(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if strings.Join(streams, ",") != "video,audio" {
			t.Fatalf("%s streams = %v, want [video audio]", name, streams)
		}
	}

	left, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("work dir not cleaned: %d entries left", len(left))
	}
}

func TestE2E_EmptyMaterials(t *testing.T) {
	tmp := t.TempDir()
	audioDir := filepath.Join(tmp, "audio")
	matDir := filepath.Join(tmp, "materials")
	for _, d := range []string{audioDir, matDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	genFixture(t, "-f", "lavfi", "-i", "sine=frequency=440:duration=1", filepath.Join(audioDir, "a.mp3"))

	_, err := pipeline.Run(context.Background(), pipeline.Config{
		AudioDir:         audioDir,
		MaterialDir:      matDir,
		OutDir:           filepath.Join(tmp, "out"),
		WorkDir:          filepath.Join(tmp, "work"),
		ProbeTimeout:     30 * time.Second,
		TranscodeTimeout: time.Minute,
		AudioCodec:       "aac",
		OutputExt:        "mp4",
	})
	if !errors.Is(err, types.ErrInventoryEmpty) {
		t.Fatalf("err = %v, want ErrInventoryEmpty", err)
	}
}

func genFixture(t *testing.T, args ...string) {
	t.Helper()
	cmd := exec.Command("ffmpeg", append([]string{"-hide_banner", "-loglevel", "error", "-y"}, args...)...)
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}
}
