package mirror

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"canvasdl/pkg/canvas"
	errs "canvasdl/pkg/errors"
	"canvasdl/pkg/logger"
	"canvasdl/pkg/storage"
)

// Acquirer decides whether a remote file needs transferring and, if so,
// transfers it into a target directory.
type Acquirer struct {
	transfer    Transferer
	maxFileSize int64
	logger      logger.Logger
}

// NewAcquirer creates an Acquirer. A maxFileSize of zero means unlimited.
func NewAcquirer(transfer Transferer, maxFileSize int64, log logger.Logger) *Acquirer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Acquirer{
		transfer:    transfer,
		maxFileSize: maxFileSize,
		logger:      log,
	}
}

// LocalName returns the sanitized file name used on disk
func LocalName(file *canvas.File) (string, error) {
	name := file.DisplayName
	if name == "" {
		name = file.Filename
	}
	return storage.SanitizeOr(name, fmt.Sprintf("file %d", file.ID), true)
}

// Acquire places file into dir unless it was already transferred in this
// course, already exists on disk, or is not eligible. Per-file failures
// are returned as classified errors (ResourceMissing, InsufficientSpace or
// Unknown) and FileResult.Outcome is OutcomeFailed. Context cancellation is
// returned as is.
func (a *Acquirer) Acquire(ctx context.Context, courseID int64, file *canvas.File, dir string, ledger *storage.Ledger) (FileResult, error) {
	result := FileResult{FileID: file.ID, Name: file.DisplayName}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	identity := file.Identity()
	if identity != "" && ledger.ShouldSkip(identity) {
		result.Outcome = OutcomeDuplicate
		return a.done(courseID, result)
	}

	name, err := LocalName(file)
	if err != nil {
		return a.fail(courseID, result, errs.KindUnknown, err)
	}
	result.Path = filepath.Join(dir, name)

	if storage.Exists(result.Path) {
		result.Outcome = OutcomeExists
		return a.done(courseID, result)
	}

	if !IsEligible(file) {
		result.Outcome = OutcomeIneligible
		return a.done(courseID, result)
	}

	if identity == "" {
		return a.fail(courseID, result, errs.KindResourceMissing, errors.New("file has no download url"))
	}
	if a.maxFileSize > 0 && file.Size > a.maxFileSize {
		return a.fail(courseID, result, errs.KindInsufficientSpace,
			fmt.Errorf("file is %d bytes, limit is %d", file.Size, a.maxFileSize))
	}

	if err := storage.EnsureDir(dir); err != nil {
		return a.fail(courseID, result, transferKind(err), err)
	}

	if storage.Exists(result.Path) {
		result.Outcome = OutcomeExists
		return a.done(courseID, result)
	}

	n, err := a.transfer.Download(ctx, file, result.Path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		return a.fail(courseID, result, transferKind(err), err)
	}

	ledger.Record(identity)
	result.Outcome = OutcomeDownloaded
	result.Bytes = n
	return a.done(courseID, result)
}

func (a *Acquirer) done(courseID int64, result FileResult) (FileResult, error) {
	logger.LogFileOutcome(a.logger, courseID, result.Name, result.Path, string(result.Outcome), nil)
	return result, nil
}

func (a *Acquirer) fail(courseID int64, result FileResult, kind errs.Kind, err error) (FileResult, error) {
	result.Outcome = OutcomeFailed
	result.Err = errs.New(kind, fmt.Sprintf("acquire %q", result.Name), err)
	logger.LogFileOutcome(a.logger, courseID, result.Name, result.Path, string(result.Outcome), result.Err)
	return result, result.Err
}

// transferKind narrows any failure to the three kinds a file can fail with
func transferKind(err error) errs.Kind {
	switch kind := errs.Classify(err); kind {
	case errs.KindResourceMissing, errs.KindInsufficientSpace:
		return kind
	default:
		return errs.KindUnknown
	}
}
