package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forPelevin/vidfill/internal/domain/inventory"
	"github.com/forPelevin/vidfill/internal/ports"
	"github.com/forPelevin/vidfill/internal/types"
)

type ClipSelector interface {
	Select(pool []types.MediaAsset, target float64) types.SelectionPlan
}

type Deps struct {
	Media    ports.MediaTool
	Selector ClipSelector
	NewID    func() string
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return Usecase{d: d}
}

type Input struct {
	AudioDir    string
	MaterialDir string
	OutDir      string
	WorkDir     string
	OutputExt   string

	Logf       func(format string, args ...any)
	OnProgress func(current, total int)
}

// Run converts every audio file in AudioDir, one job at a time. The returned
// error is non-nil only for conditions that stop the whole run; cancellation
// via ctx is reported through RunSummary.Cancelled.
func (u Usecase) Run(ctx context.Context, in Input) (types.RunSummary, error) {
	var sum types.RunSummary
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	onProgress := in.OnProgress
	if onProgress == nil {
		onProgress = func(int, int) {}
	}

	if err := requireDir(in.AudioDir); err != nil {
		return sum, fmt.Errorf("audio dir: %w", err)
	}
	if err := requireDir(in.MaterialDir); err != nil {
		return sum, fmt.Errorf("materials dir: %w", err)
	}
	if err := os.MkdirAll(in.OutDir, 0o755); err != nil {
		return sum, fmt.Errorf("output dir: %w", err)
	}

	logf("scanning materials: %s", in.MaterialDir)
	pool, err := inventory.ScanMaterials(ctx, u.d.Media, in.MaterialDir, logf)
	if err != nil {
		if ctx.Err() != nil {
			sum.Cancelled = true
			return sum, nil
		}
		return sum, err
	}
	logf("%d usable materials, %.2fs total", len(pool), inventory.TotalDuration(pool))

	audio, err := inventory.ListAudio(in.AudioDir)
	if err != nil {
		return sum, err
	}
	logf("%d audio files to process", len(audio))

	for i, path := range audio {
		if ctx.Err() != nil {
			sum.Cancelled = true
			break
		}

		res := u.runJob(ctx, pool, path, in, logf)
		sum.Attempted++
		sum.Jobs = append(sum.Jobs, res)
		if res.Outcome == types.OutcomeSucceeded {
			sum.Succeeded++
		}
		onProgress(i+1, len(audio))

		if res.Outcome == types.OutcomeCancelled {
			sum.Cancelled = true
			break
		}
		if errors.Is(res.Err, types.ErrToolNotFound) {
			return sum, res.Err
		}
	}
	return sum, nil
}

func (u Usecase) runJob(ctx context.Context, pool []types.MediaAsset, audioPath string, in Input, logf func(string, ...any)) types.JobResult {
	start := time.Now()
	name := filepath.Base(audioPath)
	res := types.JobResult{
		AudioPath:  audioPath,
		OutputPath: OutputPath(in.OutDir, audioPath, in.OutputExt),
	}
	finish := func(o types.Outcome, err error) types.JobResult {
		res.Outcome = o
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}
	logf("--- %s", name)

	target, err := u.d.Media.ProbeDuration(ctx, audioPath)
	if ctx.Err() != nil {
		return finish(types.OutcomeCancelled, ctx.Err())
	}
	if err == nil && target <= 0 {
		err = fmt.Errorf("%s: non-positive duration %.2fs", name, target)
	}
	if err != nil {
		logf("skip %s: %v", name, err)
		return finish(types.OutcomeSkippedNoAudioDuration, err)
	}
	res.TargetDuration = target
	logf("audio %s: %.2fs", name, target)

	plan := u.d.Selector.Select(pool, target)
	res.Plan = plan
	if plan.ShortInventory {
		logf("warning: materials (%.2fs) are shorter than %s (%.2fs), clips will repeat",
			inventory.TotalDuration(pool), name, target)
	}
	if plan.Empty() {
		logf("skip %s: no clips selected", name)
		return finish(types.OutcomeSkippedNoSelection, nil)
	}
	for _, c := range plan.Clips {
		logf("  selected %s (%.2fs)", filepath.Base(c.Path), c.Duration)
	}
	logf("selected %d clips, %.2fs expected", len(plan.Clips), plan.Total)

	err = u.Assemble(ctx, plan, audioPath, res.OutputPath, in.WorkDir, logf)
	switch {
	case err == nil:
		logf("done %s -> %s", name, res.OutputPath)
		return finish(types.OutcomeSucceeded, nil)
	case ctx.Err() != nil:
		logf("cancelled %s", name)
		return finish(types.OutcomeCancelled, ctx.Err())
	}

	logf("failed %s: %v", name, err)
	var se *types.StageError
	if errors.As(err, &se) && se.Stage == types.StageMerge {
		return finish(types.OutcomeFailedMerge, err)
	}
	return finish(types.OutcomeFailedConcat, err)
}

// OutputPath names the job output after the audio file's base name.
func OutputPath(outDir, audioPath, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "mp4"
	}
	base := filepath.Base(audioPath)
	return filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+"."+ext)
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", path)
	}
	return nil
}
