package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/forPelevin/vidfill/internal/config"
	"github.com/forPelevin/vidfill/internal/output"
	"github.com/forPelevin/vidfill/internal/pipeline"
	"github.com/forPelevin/vidfill/internal/types"
)

func run(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	levelName, _ := cmd.Flags().GetString("log-level")
	level := hclog.LevelFromString(levelName)
	if level == hclog.NoLevel {
		return fmt.Errorf("invalid log level %q", levelName)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "vidfill",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})

	seed, _ := cmd.Flags().GetUint64("seed")
	f := output.NewFormatter(cmd.OutOrStdout())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pcfg := pipeline.Config{
		AudioDir:    cfg.AudioDir,
		MaterialDir: cfg.MaterialsDir,
		OutDir:      cfg.OutputDir,
		WorkDir:     cfg.WorkDir,

		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,

		ProbeTimeout:     cfg.ProbeTimeout,
		TranscodeTimeout: cfg.TranscodeTimeout,
		AudioCodec:       cfg.AudioCodec,
		OutputExt:        cfg.OutputExt,
		Seed:             seed,

		Logger:     logger,
		Logf:       f.Logf,
		OnProgress: f.Progress,
		OnFinish:   f.Finish,
	}
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	sum, err := pipeline.Run(ctx, pcfg)
	f.Jobs(sum)
	if err != nil {
		return err
	}
	if sum.Cancelled {
		return types.ErrCancelled
	}
	if n := sum.Failed(); n > 0 {
		return fmt.Errorf("%d of %d jobs failed", n, sum.Attempted)
	}
	return nil
}

// loadConfig layers flags over the config file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	stringFlag := func(name string, dst *string) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	stringFlag("audio", &cfg.AudioDir)
	stringFlag("materials", &cfg.MaterialsDir)
	stringFlag("out", &cfg.OutputDir)
	stringFlag("work-dir", &cfg.WorkDir)
	stringFlag("audio-codec", &cfg.AudioCodec)

	if flags.Lookup("probe-timeout") != nil && flags.Changed("probe-timeout") {
		cfg.ProbeTimeout, _ = flags.GetDuration("probe-timeout")
	}
	if flags.Lookup("transcode-timeout") != nil && flags.Changed("transcode-timeout") {
		cfg.TranscodeTimeout, _ = flags.GetDuration("transcode-timeout")
	}
	return cfg, nil
}
