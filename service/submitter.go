package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/synchthia/kaizen/collector"
	"github.com/synchthia/kaizen/config"
	"github.com/synchthia/kaizen/models"
	"go.uber.org/zap"
)

var ErrNoObjects = errors.New("store returned no content identifiers")

// Submitter adds a whole collection to a content-addressed store in one call.
type Submitter interface {
	Add(ctx context.Context, c *collector.Collection) ([]models.AddedObject, error)
}

// NewSubmitter picks the backend named by storage.type.
func NewSubmitter(ctx context.Context, cfg *config.Config, log *zap.Logger) (Submitter, error) {
	switch cfg.Storage.Type {
	case config.StorageIPFS:
		if cfg.IPFS == nil {
			return nil, config.ErrIPFSMissing
		}
		return NewIPFSClient(cfg.IPFS.URL(), log), nil
	case config.StorageR2:
		cacheSvc, err := InitCache(cfg.R2.CacheDir, log)
		if err != nil {
			return nil, err
		}
		return InitR2(ctx, cfg.R2, cacheSvc, log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

// FinalObject returns the object that identifies the upload as a whole: the
// last one reported, which is the root directory for directory uploads.
func FinalObject(objs []models.AddedObject) (models.AddedObject, error) {
	if len(objs) == 0 {
		return models.AddedObject{}, ErrNoObjects
	}
	return objs[len(objs)-1], nil
}
