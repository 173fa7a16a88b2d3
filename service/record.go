package service

import (
	"github.com/synchthia/kaizen/models"
	"github.com/synchthia/kaizen/storage"
	"go.uber.org/zap"
)

// ResultFileName receives the full store response after a successful upload.
const ResultFileName = "ipfs.json"

type RecordService struct {
	store *storage.Storage
}

func InitRecord(dirPath string, log *zap.Logger) (*RecordService, error) {
	store, err := storage.New(dirPath, log)
	if err != nil {
		return nil, err
	}
	return &RecordService{store: store}, nil
}

func (r *RecordService) Save(objs []models.AddedObject) error {
	return r.store.Save(ResultFileName, objs)
}
