package executors

import (
	"github.com/ymakino/TsubameDB/catalog"
	"github.com/ymakino/TsubameDB/storage/access"
	"github.com/ymakino/TsubameDB/storage/index"
)

// ExecutorContext bundles the engine services executors pull from.
type ExecutorContext struct {
	catalog_       *catalog.Catalog
	storageManager *access.StorageManager
	indexManager   *index.IndexManager
}

func NewExecutorContext(catalog_ *catalog.Catalog, storageManager *access.StorageManager, indexManager *index.IndexManager) *ExecutorContext {
	return &ExecutorContext{catalog_, storageManager, indexManager}
}

func (e *ExecutorContext) GetCatalog() *catalog.Catalog { return e.catalog_ }

func (e *ExecutorContext) GetStorageManager() *access.StorageManager { return e.storageManager }

func (e *ExecutorContext) GetIndexManager() *index.IndexManager { return e.indexManager }
