package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/quantmind-br/folio/internal/domain"
	"github.com/quantmind-br/folio/internal/utils"
)

// Writer materializes output trees on disk. A tree is written to a
// staging directory next to the output directory and swapped in with
// renames, so the output directory is never seen half written.
type Writer struct {
	logger   *utils.Logger
	progress io.Writer
	workers  int
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	Logger *utils.Logger
	// Progress receives the writing progress bar; nil disables it
	Progress io.Writer
	// Workers bounds concurrent file writes
	Workers int
}

// Ensure Writer implements domain.TreeWriter
var _ domain.TreeWriter = (*Writer)(nil)

// NewWriter creates a new output writer
func NewWriter(opts WriterOptions) *Writer {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = domain.DefaultWorkers
	}
	return &Writer{
		logger:   logger.WithComponent("writer"),
		progress: opts.Progress,
		workers:  workers,
	}
}

// Write replaces outputDir with the contents of tree. On any error,
// including cancellation, outputDir is left as it was and every
// temporary directory is removed.
func (w *Writer) Write(ctx context.Context, tree *domain.OutputTree, outputDir string) (err error) {
	outputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return domain.NewWriteError(outputDir, err)
	}
	parent := filepath.Dir(outputDir)

	created, err := missingAncestor(parent)
	if err != nil {
		return domain.NewWriteError(parent, err)
	}
	if err := os.MkdirAll(parent, 0755); err != nil {
		return domain.NewWriteError(parent, err)
	}
	if created != "" {
		defer func() {
			if err != nil {
				_ = os.RemoveAll(created)
			}
		}()
	}

	staging, err := os.MkdirTemp(parent, "."+filepath.Base(outputDir)+".tmp-")
	if err != nil {
		return domain.NewWriteError(parent, err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(staging)
		}
	}()
	if err := os.Chmod(staging, 0755); err != nil {
		return domain.NewWriteError(staging, err)
	}

	if err := w.stage(ctx, tree, staging); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := w.swap(staging, outputDir); err != nil {
		return err
	}

	w.logger.Debug().
		Str("dir", outputDir).
		Int("files", tree.Len()).
		Int64("bytes", tree.Size()).
		Msg("Output written")
	return nil
}

// stage writes every file of tree below dir
func (w *Writer) stage(ctx context.Context, tree *domain.OutputTree, dir string) error {
	paths := tree.Paths()
	bar := utils.NewProgressBarTo(w.progress, len(paths), utils.DescWriting)
	defer func() { _ = bar.Finish() }()

	errs := utils.ParallelForEach(ctx, paths, w.workers, func(ctx context.Context, rel string) error {
		dest := filepath.Join(dir, filepath.FromSlash(rel))
		if !utils.IsWithin(dir, dest) {
			return domain.NewWriteError(rel, domain.ErrPathEscapes)
		}
		if err := utils.EnsureDir(dest); err != nil {
			return domain.NewWriteError(rel, err)
		}

		data, _ := tree.Get(rel)
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return domain.NewWriteError(rel, err)
		}
		_ = bar.Add(1)
		return nil
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed := utils.CollectErrors(errs); len(failed) > 0 {
		w.logger.Debug().Int("failed", len(failed)).Msg("Files could not be staged")
		return failed[0]
	}
	return nil
}

// swap moves staging into place. An existing output directory is
// renamed aside first and restored if the second rename fails.
func (w *Writer) swap(staging, outputDir string) error {
	info, err := os.Lstat(outputDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.Rename(staging, outputDir); err != nil {
			return domain.NewWriteError(outputDir, err)
		}
		return nil
	case err != nil:
		return domain.NewWriteError(outputDir, err)
	case !info.IsDir():
		return domain.NewWriteError(outputDir, fmt.Errorf("output path exists and is not a directory"))
	}

	backup, err := os.MkdirTemp(filepath.Dir(outputDir), "."+filepath.Base(outputDir)+".old-")
	if err != nil {
		return domain.NewWriteError(outputDir, err)
	}
	// only the unique name is needed
	if err := os.Remove(backup); err != nil {
		return domain.NewWriteError(outputDir, err)
	}

	if err := os.Rename(outputDir, backup); err != nil {
		return domain.NewWriteError(outputDir, err)
	}
	if err := os.Rename(staging, outputDir); err != nil {
		if restoreErr := os.Rename(backup, outputDir); restoreErr != nil {
			w.logger.Error().Err(restoreErr).Str("backup", backup).Msg("Failed to restore previous output")
		}
		return domain.NewWriteError(outputDir, err)
	}

	if err := os.RemoveAll(backup); err != nil {
		w.logger.Warn().Err(err).Str("dir", backup).Msg("Failed to remove previous output")
	}
	return nil
}

// missingAncestor returns the topmost directory of dir that does not
// exist yet, or "" when dir exists
func missingAncestor(dir string) (string, error) {
	var missing string
	for {
		_, err := os.Stat(dir)
		if err == nil {
			return missing, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		missing = dir
		next := filepath.Dir(dir)
		if next == dir {
			return missing, nil
		}
		dir = next
	}
}
