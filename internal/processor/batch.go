package processor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"wirthmage/pkg/imgutil"
)

// Run converts every input with the options of tmpl, one file at a time.
// Directories are walked for supported images. Cancelling ctx stops the
// batch between files; a file already handed to the tool runs to the end.
// Sources that do not exist are reported in Summary.Missing.
func Run(ctx context.Context, conv *Converter, inputs []string, tmpl Request, updates chan<- ProgressUpdate) (Summary, error) {
	summary := Summary{}
	send := func(u ProgressUpdate) {
		if updates != nil {
			updates <- u
		}
	}

	jobs, missing, err := collectJobs(inputs, tmpl.OutputDir)
	summary.Missing = missing
	if err != nil {
		return summary, err
	}

	summary.Total = len(jobs)
	send(ProgressUpdate{TotalDelta: len(jobs)})

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return summary, nil
			}
			return summary, err
		}

		send(ProgressUpdate{Current: job.Display})

		req := tmpl
		req.Path = job.Path
		expected := len(req.Multipliers())

		outputs, err := conv.Convert(context.WithoutCancel(ctx), req)
		switch {
		case errors.Is(err, ErrNotFound):
			summary.Missing = append(summary.Missing, job.Path)
		case err != nil:
			conv.logger.Warn("conversion failed", zap.String("source", job.Path), zap.Error(err))
			summary.Failed += expected
			send(ProgressUpdate{FailedDelta: expected})
		default:
			summary.Outputs = append(summary.Outputs, outputs...)
			if failed := expected - len(outputs); failed > 0 {
				summary.Failed += failed
				send(ProgressUpdate{FailedDelta: failed})
			}
			send(ProgressUpdate{OutputDelta: len(outputs)})
		}

		summary.Processed++
		send(ProgressUpdate{ProcessedDelta: 1})
	}

	return summary, nil
}

// collectJobs expands inputs into files. Explicit file arguments are taken
// as given; directory contents are filtered by sniffing. An output
// directory inside a walked root is skipped.
func collectJobs(inputs []string, outputDir string) ([]Job, []string, error) {
	var jobs []Job
	var missing []string

	outputAbs := ""
	if outputDir != "" {
		if abs, err := filepath.Abs(outputDir); err == nil {
			outputAbs = filepath.Clean(abs)
		}
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing = append(missing, input)
				continue
			}
			return jobs, missing, err
		}

		if !info.IsDir() {
			jobs = append(jobs, Job{Path: input, Display: filepath.Base(input)})
			continue
		}

		absRoot, err := filepath.Abs(input)
		if err != nil {
			return jobs, missing, err
		}

		err = fs.WalkDir(os.DirFS(absRoot), ".", func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			fullPath := filepath.Join(absRoot, path)
			if d.IsDir() {
				if outputAbs != "" && path != "." && isWithin(fullPath, outputAbs) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			kind, err := imgutil.SniffFile(fullPath)
			if err != nil || kind == imgutil.KindUnknown {
				return nil
			}

			jobs = append(jobs, Job{Path: fullPath, Display: path})
			return nil
		})
		if err != nil {
			return jobs, missing, err
		}
	}

	return jobs, missing, nil
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
