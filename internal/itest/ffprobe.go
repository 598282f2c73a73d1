//go:build integration

package itest

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

func ffprobeValue(path string, args ...string) (string, error) {
	argv := append([]string{"-v", "error"}, args...)
	argv = append(argv, "-of", "default=noprint_wrappers=1:nokey=1", path)
	b, err := exec.Command("ffprobe", argv...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffprobe %s: %w\n%s", path, err, string(b))
	}
	return strings.TrimSpace(string(b)), nil
}

func probeDurationSeconds(path string) (float64, error) {
	s, err := ffprobeValue(path, "-show_entries", "format=duration")
	if err != nil {
		return 0, err
	}
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

// probeCodecTypes lists codec_type per stream, e.g. [video audio].
func probeCodecTypes(path string) ([]string, error) {
	s, err := ffprobeValue(path, "-show_entries", "stream=codec_type")
	if err != nil {
		return nil, err
	}
	return strings.Fields(s), nil
}
