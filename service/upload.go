package service

import (
	"context"

	"github.com/synchthia/kaizen/collector"
	"github.com/synchthia/kaizen/models"
	"go.uber.org/zap"
)

// Uploader wires collection, submission and recording together.
type Uploader struct {
	Submitter Submitter
	Record    *RecordService
	Options   collector.Options

	log *zap.Logger
}

func NewUploader(submitter Submitter, record *RecordService, opts collector.Options, log *zap.Logger) *Uploader {
	return &Uploader{Submitter: submitter, Record: record, Options: opts, log: log}
}

// Upload collects target, submits it in one call and records the response.
// Nothing is recorded unless every step succeeds.
func (u *Uploader) Upload(ctx context.Context, target string) (models.AddedObject, []models.AddedObject, error) {
	col, err := collector.Collect(target, u.Options)
	if err != nil {
		return models.AddedObject{}, nil, err
	}
	u.log.Info("collected content",
		zap.String("root", target),
		zap.Bool("dir", col.IsDir),
		zap.Int("entries", col.Len()),
		zap.Int64("bytes", col.Size()),
	)

	objs, err := u.Submitter.Add(ctx, col)
	if err != nil {
		return models.AddedObject{}, nil, err
	}

	final, err := FinalObject(objs)
	if err != nil {
		return models.AddedObject{}, nil, err
	}

	if err := u.Record.Save(objs); err != nil {
		return models.AddedObject{}, nil, err
	}
	return final, objs, nil
}
