package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forPelevin/vidfill/internal/version"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vidfill",
		Short:        "Build videos from random clips, one per audio file, matched to audio length",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true
	root.Version = version.Version
	root.SetVersionTemplate(version.Full() + "\n")

	// Visible flags
	root.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/vidfill/config.toml)")
	root.Flags().String("audio", "", "Audio input directory")
	root.Flags().String("materials", "", "Video materials directory")
	root.Flags().String("out", "", "Output directory")
	root.Flags().String("work-dir", "", "Directory for intermediate files")
	root.Flags().Uint64("seed", 0, "Seed for clip selection (0 = random)")
	root.Flags().String("log-level", "warn", "Diagnostic log level (trace, debug, info, warn, error)")

	// Hidden tuning flags (internal)
	root.Flags().Duration("probe-timeout", 0, "ffprobe timeout")
	root.Flags().Duration("transcode-timeout", 0, "ffmpeg timeout per stage")
	root.Flags().String("audio-codec", "", "Audio codec for the merge stage")
	_ = root.Flags().MarkHidden("probe-timeout")
	_ = root.Flags().MarkHidden("transcode-timeout")
	_ = root.Flags().MarkHidden("audio-codec")

	root.AddCommand(newDoctorCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
