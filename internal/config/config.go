package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAudioDir         = "audio_files"
	DefaultMaterialsDir     = "video_materials"
	DefaultOutputDir        = "output"
	DefaultProbeTimeout     = 30 * time.Second
	DefaultTranscodeTimeout = 300 * time.Second
	DefaultAudioCodec       = "aac"
	DefaultOutputExt        = "mp4"
)

type Config struct {
	AudioDir         string
	MaterialsDir     string
	OutputDir        string
	WorkDir          string // empty means the OS temp dir
	FFmpegPath       string
	FFprobePath      string
	ProbeTimeout     time.Duration
	TranscodeTimeout time.Duration
	AudioCodec       string
	OutputExt        string
}

type fileConfig struct {
	AudioDir         string `toml:"audio_dir"`
	MaterialsDir     string `toml:"materials_dir"`
	OutputDir        string `toml:"output_dir"`
	WorkDir          string `toml:"work_dir"`
	FFmpegPath       string `toml:"ffmpeg_path"`
	FFprobePath      string `toml:"ffprobe_path"`
	ProbeTimeout     string `toml:"probe_timeout"`
	TranscodeTimeout string `toml:"transcode_timeout"`
	AudioCodec       string `toml:"audio_codec"`
	OutputExt        string `toml:"output_ext"`
}

func Defaults() *Config {
	return &Config{
		AudioDir:         DefaultAudioDir,
		MaterialsDir:     DefaultMaterialsDir,
		OutputDir:        DefaultOutputDir,
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		ProbeTimeout:     DefaultProbeTimeout,
		TranscodeTimeout: DefaultTranscodeTimeout,
		AudioCodec:       DefaultAudioCodec,
		OutputExt:        DefaultOutputExt,
	}
}

// Load applies defaults, then the TOML file, then VIDFILL_* environment
// variables. An explicit path must exist and parse; the default location is
// optional.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = configFilePath()
	}
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return fmt.Errorf("config %s: %w", path, err)
	}

	setString(&cfg.AudioDir, expandTilde(fc.AudioDir))
	setString(&cfg.MaterialsDir, expandTilde(fc.MaterialsDir))
	setString(&cfg.OutputDir, expandTilde(fc.OutputDir))
	setString(&cfg.WorkDir, expandTilde(fc.WorkDir))
	setString(&cfg.FFmpegPath, fc.FFmpegPath)
	setString(&cfg.FFprobePath, fc.FFprobePath)
	setString(&cfg.AudioCodec, fc.AudioCodec)
	setString(&cfg.OutputExt, strings.TrimPrefix(fc.OutputExt, "."))

	if err := setDuration(&cfg.ProbeTimeout, fc.ProbeTimeout); err != nil {
		return fmt.Errorf("config %s: probe_timeout: %w", path, err)
	}
	if err := setDuration(&cfg.TranscodeTimeout, fc.TranscodeTimeout); err != nil {
		return fmt.Errorf("config %s: transcode_timeout: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VIDFILL_AUDIO_DIR"); v != "" {
		cfg.AudioDir = expandTilde(v)
	}
	if v := os.Getenv("VIDFILL_MATERIALS_DIR"); v != "" {
		cfg.MaterialsDir = expandTilde(v)
	}
	if v := os.Getenv("VIDFILL_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = expandTilde(v)
	}
	if v := os.Getenv("VIDFILL_WORK_DIR"); v != "" {
		cfg.WorkDir = expandTilde(v)
	}
	if v := os.Getenv("VIDFILL_FFMPEG"); v != "" {
		cfg.FFmpegPath = v
	}
	if v := os.Getenv("VIDFILL_FFPROBE"); v != "" {
		cfg.FFprobePath = v
	}
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "vidfill")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "vidfill")
	} else {
		return ""
	}
	return filepath.Join(configDir, "config.toml")
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be > 0, got %s", v)
	}
	*dst = d
	return nil
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
