// Package renamer runs the resolver over a batch of files, plans the
// renames and applies them with backup and tagging.
package renamer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mydehq/otr/internal/types"
)

// Resolver turns one file into its canonical name
type Resolver interface {
	Resolve(ctx context.Context, file string, batchSize int) (*types.Resolution, error)
}

// Renamer plans and applies one batch
type Renamer struct {
	resolver Resolver
	backup   types.BackupManager
	tagger   types.Tagger
	events   types.EventHandler
}

// Option configures a Renamer
type Option func(*Renamer)

// WithBackup backs up originals before Apply renames them
func WithBackup(b types.BackupManager) Option {
	return func(r *Renamer) {
		r.backup = b
	}
}

// WithTagger writes metadata into each renamed file
func WithTagger(t types.Tagger) Option {
	return func(r *Renamer) {
		r.tagger = t
	}
}

// WithEvents sets the progress event handler
func WithEvents(h types.EventHandler) Option {
	return func(r *Renamer) {
		r.events = h
	}
}

// New creates a Renamer around res
func New(res Resolver, opts ...Option) *Renamer {
	r := &Renamer{resolver: res}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan resolves every file on its own. A file that fails is marked failed
// and the batch goes on, unless the user aborted a prompt, which stops it.
// A target already claimed by an earlier file, or present on disk as
// anything but the source itself, fails with ErrCollision. This includes
// sources of the same batch, so Apply never renames onto a file that has
// not moved yet.
func (r *Renamer) Plan(ctx context.Context, files []string) ([]types.RenameOperation, error) {
	ops := make([]types.RenameOperation, 0, len(files))
	claimed := make(map[string]int, len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return ops, err
		}

		op := types.RenameOperation{SourcePath: file, Status: types.StatusPending}
		res, err := r.resolver.Resolve(ctx, file, len(files))
		if err != nil {
			if ctx.Err() != nil {
				return ops, ctx.Err()
			}
			if errors.Is(err, types.ErrAborted) {
				return ops, err
			}
			ops = append(ops, r.fail(op, err))
			continue
		}

		meta := res.Metadata
		op.Metadata = &meta
		if strings.TrimSuffix(res.Filename, filepath.Ext(res.Filename)) == "" {
			ops = append(ops, r.fail(op, fmt.Errorf("nothing left to name %s after extraction", filepath.Base(file))))
			continue
		}

		op.TargetPath = filepath.Join(filepath.Dir(file), res.Filename)
		if op.TargetPath == file {
			// an earlier file planned to move onto this one
			if i, ok := claimed[file]; ok && ops[i].Status == types.StatusPending {
				ops[i] = r.fail(ops[i], types.ErrCollision{Target: file, Other: file})
			}
			op.Status = types.StatusSkipped
			claimed[file] = len(ops)
			ops = append(ops, op)
			continue
		}

		if i, ok := claimed[op.TargetPath]; ok {
			ops = append(ops, r.fail(op, types.ErrCollision{Target: op.TargetPath, Other: ops[i].SourcePath}))
			continue
		}
		if occupied(op.TargetPath, file) {
			ops = append(ops, r.fail(op, types.ErrCollision{Target: op.TargetPath, Other: op.TargetPath}))
			continue
		}

		claimed[op.TargetPath] = len(ops)
		ops = append(ops, op)
	}
	return ops, nil
}

// occupied reports whether target exists as a file other than source. A
// case-only rename on a case-insensitive filesystem finds source itself.
func occupied(target, source string) bool {
	tfi, err := os.Stat(target)
	if err != nil {
		return false
	}
	sfi, err := os.Stat(source)
	if err != nil {
		return true
	}
	return !os.SameFile(tfi, sfi)
}

func (r *Renamer) fail(op types.RenameOperation, err error) types.RenameOperation {
	op.Status = types.StatusFailed
	op.Error = err.Error()
	op.Kind = types.Kind(err)
	r.events.Emit(types.EventError, "%s: %s: %v", filepath.Base(op.SourcePath), op.Kind, err)
	return op
}

// Apply performs the pending operations in ops, updating their status in
// place. Backups are taken per directory before anything in it is renamed.
// A directory whose backup fails is left untouched.
func (r *Renamer) Apply(ctx context.Context, ops []types.RenameOperation) error {
	byDir := make(map[string][]int)
	for i := range ops {
		if ops[i].Status != types.StatusPending {
			continue
		}
		dir := filepath.Dir(ops[i].SourcePath)
		byDir[dir] = append(byDir[dir], i)
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var errs []error
	for _, dir := range dirs {
		idx := byDir[dir]
		if r.backup != nil {
			mappings := make(map[string]string, len(idx))
			for _, i := range idx {
				mappings[filepath.Base(ops[i].SourcePath)] = filepath.Base(ops[i].TargetPath)
			}
			if err := r.backup.Backup(ctx, dir, mappings); err != nil {
				err = fmt.Errorf("backup %s: %w", dir, err)
				for _, i := range idx {
					ops[i].Status = types.StatusFailed
					ops[i].Error = err.Error()
					ops[i].Kind = types.Kind(err)
				}
				r.events.Emit(types.EventError, "%v", err)
				errs = append(errs, err)
				continue
			}
		}

		for _, i := range idx {
			if err := ctx.Err(); err != nil {
				return errors.Join(append(errs, err)...)
			}
			r.apply(ctx, &ops[i])
		}
	}
	return errors.Join(errs...)
}

func (r *Renamer) apply(ctx context.Context, op *types.RenameOperation) {
	if err := os.Rename(op.SourcePath, op.TargetPath); err != nil {
		op.Status = types.StatusFailed
		op.Error = err.Error()
		op.Kind = types.Kind(err)
		r.events.Emit(types.EventError, "%s: %v", filepath.Base(op.SourcePath), err)
		return
	}
	op.Status = types.StatusSuccess
	r.events.Emit(types.EventSuccess, "%s -> %s", filepath.Base(op.SourcePath), filepath.Base(op.TargetPath))

	if r.tagger == nil {
		return
	}
	if err := r.tagger.TagFile(ctx, op.TargetPath, op.Metadata); err != nil {
		r.events.Emit(types.EventWarning, "tag %s: %v", filepath.Base(op.TargetPath), err)
	}
}

// Summary counts operations by status
func Summary(ops []types.RenameOperation) map[types.OperationStatus]int {
	out := make(map[types.OperationStatus]int, 4)
	for _, op := range ops {
		out[op.Status]++
	}
	return out
}
