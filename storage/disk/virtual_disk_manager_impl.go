package disk

import (
	"sync"

	"github.com/dsnet/golib/memfile"
	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/types"
)

// VirtualDiskManagerImpl keeps heap files on memory. Behavior matches
// DiskManagerImpl so tests can run without touching the filesystem.
type VirtualDiskManagerImpl struct {
	files     map[string]*memfile.File
	fileMutex *sync.Mutex
}

func NewVirtualDiskManagerImpl() DiskManager {
	return &VirtualDiskManagerImpl{make(map[string]*memfile.File), new(sync.Mutex)}
}

func (d *VirtualDiskManagerImpl) getFile(file string) *memfile.File {
	if fp, ok := d.files[file]; ok {
		return fp
	}
	fp := memfile.New(make([]byte, 0))
	d.files[file] = fp
	return fp
}

func (d *VirtualDiskManagerImpl) ReadPage(file string, pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	fp := d.getFile(file)
	offset := int64(pageID) * int64(common.PageSize)
	size := int64(len(fp.Bytes()))

	if offset >= size {
		for i := range pageData {
			pageData[i] = 0
		}
		return nil
	}

	bytesRead, _ := fp.ReadAt(pageData, offset)
	for i := bytesRead; i < len(pageData); i++ {
		pageData[i] = 0
	}
	return nil
}

func (d *VirtualDiskManagerImpl) WritePage(file string, pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	fp := d.getFile(file)
	offset := int64(pageID) * int64(common.PageSize)
	fp.WriteAt(pageData, offset)
	return nil
}

func (d *VirtualDiskManagerImpl) FileSize(file string) (int64, error) {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	if fp, ok := d.files[file]; ok {
		return int64(len(fp.Bytes())), nil
	}
	return 0, nil
}

func (d *VirtualDiskManagerImpl) CreateFile(file string) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	d.files[file] = memfile.New(make([]byte, 0))
	return nil
}

func (d *VirtualDiskManagerImpl) RemoveFile(file string) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	delete(d.files, file)
	return nil
}

func (d *VirtualDiskManagerImpl) ShutDown() {
	// do nothing
}
