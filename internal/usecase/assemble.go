package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/forPelevin/vidfill/internal/types"
)

const manifestName = "filelist.txt"

// Assemble concatenates the plan's clips, then muxes audioPath onto the result
// at outPath. The job workspace under workDir, holding the manifest and the
// intermediate video, is removed on every return path.
func (u Usecase) Assemble(ctx context.Context, plan types.SelectionPlan, audioPath, outPath, workDir string, logf func(string, ...any)) error {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	if plan.Empty() {
		return fmt.Errorf("assemble %s: empty selection", filepath.Base(audioPath))
	}

	if workDir == "" {
		workDir = os.TempDir()
	}
	ws := filepath.Join(workDir, "vidfill-"+u.d.NewID())
	if err := os.MkdirAll(ws, 0o755); err != nil {
		return &types.StageError{Stage: types.StageConcat, Output: ws, Err: err}
	}
	defer func() {
		if err := os.RemoveAll(ws); err != nil {
			logf("cleanup %s: %v", ws, err)
		}
	}()

	manifest := filepath.Join(ws, manifestName)
	intermediate := filepath.Join(ws, "concat"+filepath.Ext(outPath))

	paths := lo.Map(plan.Clips, func(c types.MediaAsset, _ int) string { return c.Path })
	if err := writeManifest(manifest, paths); err != nil {
		return &types.StageError{Stage: types.StageConcat, Output: intermediate, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	logf("concat %d clips", len(paths))
	err := u.d.Media.Concat(ctx, manifest, intermediate)
	_ = os.Remove(manifest)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	logf("merge audio %s", filepath.Base(audioPath))
	return u.d.Media.Merge(ctx, intermediate, audioPath, outPath)
}

func writeManifest(path string, clips []string) error {
	var b strings.Builder
	for _, c := range clips {
		line, err := concatLine(c)
		if err != nil {
			return err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// concatLine renders one concat demuxer entry with an absolute forward-slash path.
func concatLine(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	abs = filepath.ToSlash(abs)
	return "file '" + strings.ReplaceAll(abs, "'", `'\''`) + "'", nil
}
