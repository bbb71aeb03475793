package tsubame

import (
	"github.com/ymakino/TsubameDB/catalog"
	"github.com/ymakino/TsubameDB/storage/access"
	"github.com/ymakino/TsubameDB/storage/buffer"
	"github.com/ymakino/TsubameDB/storage/disk"
	"github.com/ymakino/TsubameDB/storage/index"
)

// TsubameInstance bundles the storage stack: disk manager, buffer
// cache, catalog, storage manager and index manager, wired so that
// heap mutations reach the in-memory indexes.
type TsubameInstance struct {
	diskManager    disk.DiskManager
	bufferCache    *buffer.BufferCache
	catalog_       *catalog.Catalog
	storageManager *access.StorageManager
	indexManager   *index.IndexManager
}

// NewTsubameInstance opens the catalog persisted under baseDir (an
// empty catalog when none exists) and rebuilds every registered index
// from its table.
func NewTsubameInstance(baseDir string, poolSize uint32) (*TsubameInstance, error) {
	catalog_, err := catalog.Load(baseDir)
	if err != nil {
		return nil, err
	}
	instance := assemble(disk.NewDiskManagerImpl(), catalog_, poolSize)
	if err := instance.indexManager.BuildAll(); err != nil {
		instance.diskManager.ShutDown()
		return nil, err
	}
	return instance, nil
}

// NewVirtualTsubameInstance keeps all pages in memory. Used by tests.
func NewVirtualTsubameInstance(poolSize uint32) *TsubameInstance {
	return assemble(disk.NewVirtualDiskManagerImpl(), catalog.NewCatalog(), poolSize)
}

func assemble(diskManager disk.DiskManager, catalog_ *catalog.Catalog, poolSize uint32) *TsubameInstance {
	bufferCache := buffer.NewBufferCache(diskManager, poolSize)
	storageManager := access.NewStorageManager(catalog_, diskManager, bufferCache)
	indexManager := index.NewIndexManager(catalog_, storageManager)
	storageManager.SetIndexNotifier(indexManager)
	return &TsubameInstance{diskManager, bufferCache, catalog_, storageManager, indexManager}
}

func (i *TsubameInstance) GetDiskManager() disk.DiskManager { return i.diskManager }

func (i *TsubameInstance) GetBufferCache() *buffer.BufferCache { return i.bufferCache }

func (i *TsubameInstance) GetCatalog() *catalog.Catalog { return i.catalog_ }

func (i *TsubameInstance) GetStorageManager() *access.StorageManager { return i.storageManager }

func (i *TsubameInstance) GetIndexManager() *index.IndexManager { return i.indexManager }

func (i *TsubameInstance) Finalize() {
	i.diskManager.ShutDown()
}
