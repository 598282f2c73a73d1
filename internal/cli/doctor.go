package cli

import (
	"errors"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/forPelevin/vidfill/internal/output"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and input directories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f := output.NewFormatter(cmd.OutOrStdout())
			ok := true

			for _, tool := range []string{cfg.FFprobePath, cfg.FFmpegPath} {
				if p, err := exec.LookPath(tool); err != nil {
					f.SetupCheck(tool, false, "not found. Install from https://ffmpeg.org/download.html")
					ok = false
				} else {
					f.SetupCheck(tool, true, p)
				}
			}

			for _, d := range []struct{ name, path string }{
				{"Audio directory", cfg.AudioDir},
				{"Materials directory", cfg.MaterialsDir},
			} {
				if info, err := os.Stat(d.path); err != nil || !info.IsDir() {
					f.SetupCheck(d.name, false, d.path+" does not exist")
					ok = false
				} else {
					f.SetupCheck(d.name, true, d.path)
				}
			}
			f.SetupCheck("Output directory", true, cfg.OutputDir+" (created on run)")

			if !ok {
				return errors.New("some prerequisites are missing")
			}
			return nil
		},
	}
}
