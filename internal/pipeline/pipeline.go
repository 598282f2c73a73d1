package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/forPelevin/vidfill/internal/domain/selection"
	"github.com/forPelevin/vidfill/internal/ports"
	"github.com/forPelevin/vidfill/internal/ports/adapters/execrun"
	"github.com/forPelevin/vidfill/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/vidfill/internal/types"
	"github.com/forPelevin/vidfill/internal/usecase"
)

type Config struct {
	AudioDir    string
	MaterialDir string
	OutDir      string

	// WorkDir holds per-job intermediate files. If empty, defaults to os.TempDir().
	WorkDir string

	FFmpegPath  string
	FFprobePath string

	ProbeTimeout     time.Duration
	TranscodeTimeout time.Duration
	AudioCodec       string
	OutputExt        string

	// Seed makes clip selection reproducible when non-zero.
	Seed uint64

	Logger     hclog.Logger
	Logf       func(format string, args ...any)
	OnProgress func(current, total int)
	// OnFinish is called exactly once per Run.
	OnFinish func(ok bool, summary string)

	// lookPath is swapped in tests.
	lookPath func(string) (string, error)
	invoker  ports.ToolInvoker
}

func (c Config) Validate() error {
	if c.AudioDir == "" {
		return errors.New("audio dir is empty")
	}
	if c.MaterialDir == "" {
		return errors.New("materials dir is empty")
	}
	if c.OutDir == "" {
		return errors.New("output dir is empty")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be > 0")
	}
	if c.TranscodeTimeout <= 0 {
		return fmt.Errorf("transcode timeout must be > 0")
	}
	if strings.TrimSpace(c.AudioCodec) == "" {
		return fmt.Errorf("audio codec is empty")
	}
	if strings.Trim(c.OutputExt, ". ") == "" {
		return fmt.Errorf("output extension is empty")
	}
	return nil
}

func Run(ctx context.Context, cfg Config) (sum types.RunSummary, err error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	defer func() {
		if cfg.OnFinish == nil {
			return
		}
		switch {
		case err != nil:
			cfg.OnFinish(false, fmt.Sprintf("%s: %v", sum.Message(), err))
		case sum.Cancelled:
			cfg.OnFinish(false, sum.Message())
		default:
			cfg.OnFinish(true, sum.Message())
		}
	}()

	if err := CheckTools(cfg); err != nil {
		return sum, err
	}

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	logf("preparing workspace")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return sum, err
	}

	// adapters
	inv := cfg.invoker
	if inv == nil {
		inv = execrun.New(cfg.Logger)
	}
	media := ffmpeg.New(inv, ffmpeg.Options{
		FFmpegPath:       cfg.FFmpegPath,
		FFprobePath:      cfg.FFprobePath,
		ProbeTimeout:     cfg.ProbeTimeout,
		TranscodeTimeout: cfg.TranscodeTimeout,
		AudioCodec:       cfg.AudioCodec,
	})

	sel := selection.New(nil)
	if cfg.Seed != 0 {
		sel = selection.NewSeeded(cfg.Seed)
	}

	uc := usecase.New(usecase.Deps{
		Media:    media,
		Selector: sel,
	})

	sum, err = uc.Run(ctx, usecase.Input{
		AudioDir:    cfg.AudioDir,
		MaterialDir: cfg.MaterialDir,
		OutDir:      cfg.OutDir,
		WorkDir:     workDir,
		OutputExt:   cfg.OutputExt,
		Logf:        logf,
		OnProgress:  cfg.OnProgress,
	})
	if err != nil {
		return sum, err
	}
	logf("finished: %s", sum.Message())
	return sum, nil
}

// CheckTools verifies ffmpeg and ffprobe can be found before any job starts.
func CheckTools(cfg Config) error {
	lookPath := cfg.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, tool := range []string{toolOr(cfg.FFprobePath, "ffprobe"), toolOr(cfg.FFmpegPath, "ffmpeg")} {
		if _, err := lookPath(tool); err != nil {
			return fmt.Errorf("%s: %w", tool, types.ErrToolNotFound)
		}
	}
	return nil
}

func toolOr(p, def string) string {
	if p == "" {
		return def
	}
	return p
}

// ensure adapters implement ports
var _ ports.ToolInvoker = (*execrun.Runner)(nil)
var _ ports.MediaTool = (*ffmpeg.Adapter)(nil)
