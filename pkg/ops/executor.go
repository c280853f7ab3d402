// Package ops executes planned filesystem operations through synthfs,
// with a dry-run mode that only reports what would be done.
package ops

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"

	"github.com/revdiff/revdiff/pkg/errors"
	"github.com/revdiff/revdiff/pkg/logging"
	"github.com/revdiff/revdiff/pkg/types"
)

// Executor runs planned operations against a filesystem
type Executor struct {
	logger zerolog.Logger
	dryRun bool
	fs     types.FS
}

// NewExecutor creates an executor over the given filesystem
func NewExecutor(fsys types.FS, dryRun bool) *Executor {
	return &Executor{
		logger: logging.GetLogger("ops.executor"),
		dryRun: dryRun,
		fs:     fsys,
	}
}

// Execute runs the ready operations in order. In dry-run mode it only
// logs them.
func (e *Executor) Execute(ops []types.Operation) error {
	if e.dryRun {
		e.logger.Info().Msg("Dry run mode - operations would be executed:")
		for _, op := range ops {
			if op.Status == types.StatusReady {
				e.logOperation(op)
			}
		}
		return nil
	}

	synthOps := make([]synthfs.Operation, 0, len(ops))
	for _, op := range ops {
		if op.Status != types.StatusReady {
			e.logger.Debug().
				Str("type", string(op.Type)).
				Str("target", op.Target).
				Str("status", string(op.Status)).
				Msg("Skipping operation with non-ready status")
			continue
		}
		synthOp, err := e.convert(op)
		if err != nil {
			return err
		}
		synthOps = append(synthOps, synthOp)
	}

	if len(synthOps) == 0 {
		e.logger.Debug().Msg("No operations to execute")
		return nil
	}

	pipeline := synthfs.NewMemPipeline()
	for _, op := range synthOps {
		if err := pipeline.Add(op); err != nil {
			return errors.Wrap(err, errors.ErrOpExecute, "failed to add operation to pipeline")
		}
	}

	executor := synthfs.NewExecutor()
	e.logger.Info().Int("operationCount", len(synthOps)).Msg("Executing operations")

	result := executor.Run(context.Background(), pipeline, &fsAdapter{fs: e.fs})
	if result.GetError() != nil {
		e.logger.Error().Err(result.GetError()).Msg("Pipeline execution failed")
		return errors.Wrap(result.GetError(), errors.ErrOpExecute, "failed to execute operations")
	}

	e.logger.Debug().Msg("All operations executed")
	return nil
}

// convert maps a planned operation to a synthfs operation built through
// the operations package and wrapped with the package adapter. synthfs
// paths are rootless, matching the fsAdapter.
func (e *Executor) convert(op types.Operation) (synthfs.Operation, error) {
	switch op.Type {
	case types.OperationCreateDir:
		if op.Target == "" {
			return nil, errors.New(errors.ErrOpInvalid, "create directory operation requires target")
		}
		target := rootless(op.Target)
		opID := core.OperationID(fmt.Sprintf("create-dir-%s", op.Target))
		createOp := operations.NewCreateDirectoryOperation(opID, target)
		createOp.SetItem(&directoryItem{path: target, mode: mode(op, 0755)})
		return synthfs.NewOperationsPackageAdapter(createOp), nil

	case types.OperationCopyFile:
		if op.Source == "" || op.Target == "" {
			return nil, errors.New(errors.ErrOpInvalid, "copy operation requires source and target")
		}
		source, target := rootless(op.Source), rootless(op.Target)
		opID := core.OperationID(fmt.Sprintf("copy-%s-to-%s", op.Source, op.Target))
		copyOp := operations.NewCopyOperation(opID, target)
		copyOp.SetPaths(source, target)
		return synthfs.NewOperationsPackageAdapter(copyOp), nil

	case types.OperationWriteFile:
		if op.Target == "" {
			return nil, errors.New(errors.ErrOpInvalid, "write operation requires target")
		}
		target := rootless(op.Target)
		opID := core.OperationID(fmt.Sprintf("write-file-%s", op.Target))
		createOp := operations.NewCreateFileOperation(opID, target)
		createOp.SetItem(&fileItem{path: target, content: []byte(op.Content), mode: mode(op, 0644)})
		return synthfs.NewOperationsPackageAdapter(createOp), nil

	case types.OperationDeleteFile, types.OperationDeleteTree:
		if op.Target == "" {
			return nil, errors.New(errors.ErrOpInvalid, "delete operation requires target")
		}
		opID := core.OperationID(fmt.Sprintf("delete-%s", op.Target))
		deleteOp := operations.NewDeleteOperation(opID, rootless(op.Target))
		return synthfs.NewOperationsPackageAdapter(deleteOp), nil

	default:
		return nil, errors.Newf(errors.ErrOpInvalid, "unsupported operation type: %s", op.Type)
	}
}

func (e *Executor) logOperation(op types.Operation) {
	e.logger.Info().
		Str("type", string(op.Type)).
		Str("source", op.Source).
		Str("target", op.Target).
		Msg(op.Description)
}

func rootless(path string) string {
	return strings.TrimPrefix(path, "/")
}

func mode(op types.Operation, fallback fs.FileMode) fs.FileMode {
	if op.Mode != nil {
		return fs.FileMode(*op.Mode)
	}
	return fallback
}

// Item types carried by synthfs operations. The operations package
// reads the planned path, mode and content back off them during
// validation and execution.

type fileItem struct {
	path    string
	content []byte
	mode    fs.FileMode
}

func (f *fileItem) Path() string       { return f.path }
func (f *fileItem) Type() string       { return "file" }
func (f *fileItem) Content() []byte    { return f.content }
func (f *fileItem) Mode() fs.FileMode  { return f.mode }
func (f *fileItem) IsDir() bool        { return false }
func (f *fileItem) ModTime() time.Time { return time.Now() }
func (f *fileItem) Size() int64        { return int64(len(f.content)) }

type directoryItem struct {
	path string
	mode fs.FileMode
}

func (d *directoryItem) Path() string       { return d.path }
func (d *directoryItem) Type() string       { return "directory" }
func (d *directoryItem) Mode() fs.FileMode  { return d.mode }
func (d *directoryItem) IsDir() bool        { return true }
func (d *directoryItem) ModTime() time.Time { return time.Now() }
func (d *directoryItem) Size() int64        { return 0 }
