package disk

import (
	"io"
	"os"
	"sync"

	"github.com/ymakino/TsubameDB/common"
	"github.com/ymakino/TsubameDB/errors"
	"github.com/ymakino/TsubameDB/types"
)

// DiskManagerImpl is the os.File backed implementation of DiskManager.
// File handles are opened lazily and kept until ShutDown.
type DiskManagerImpl struct {
	files     map[string]*os.File
	fileMutex *sync.Mutex
}

// NewDiskManagerImpl returns a DiskManager instance backed by real files.
func NewDiskManagerImpl() DiskManager {
	return &DiskManagerImpl{make(map[string]*os.File), new(sync.Mutex)}
}

func (d *DiskManagerImpl) getFile(file string) (*os.File, error) {
	if fp, ok := d.files[file]; ok {
		return fp, nil
	}
	fp, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrIO, "can't open db file %s: %v", file, err)
	}
	d.files[file] = fp
	return fp, nil
}

// ReadPage reads a page from the heap file
func (d *DiskManagerImpl) ReadPage(file string, pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	fp, err := d.getFile(file)
	if err != nil {
		return err
	}

	fileInfo, err := fp.Stat()
	if err != nil {
		return errors.Wrapf(errors.ErrIO, "stat %s: %v", file, err)
	}

	offset := int64(pageID) * int64(common.PageSize)
	if offset >= fileInfo.Size() {
		for i := range pageData {
			pageData[i] = 0
		}
		return nil
	}

	bytesRead, err := fp.ReadAt(pageData, offset)
	if err != nil && err != io.EOF {
		return errors.Wrapf(errors.ErrIO, "read %s page %d: %v", file, pageID, err)
	}
	for i := bytesRead; i < len(pageData); i++ {
		pageData[i] = 0
	}
	return nil
}

// WritePage writes a page to the heap file and syncs it
func (d *DiskManagerImpl) WritePage(file string, pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	fp, err := d.getFile(file)
	if err != nil {
		return err
	}

	offset := int64(pageID) * int64(common.PageSize)
	bytesWritten, err := fp.WriteAt(pageData, offset)
	if err != nil {
		return errors.Wrapf(errors.ErrIO, "write %s page %d: %v", file, pageID, err)
	}
	if bytesWritten != len(pageData) {
		return errors.Wrapf(errors.ErrIO, "short write to %s page %d", file, pageID)
	}
	fp.Sync()
	return nil
}

// FileSize returns the size of the heap file in bytes
func (d *DiskManagerImpl) FileSize(file string) (int64, error) {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	if fp, ok := d.files[file]; ok {
		fileInfo, err := fp.Stat()
		if err != nil {
			return 0, errors.Wrapf(errors.ErrIO, "stat %s: %v", file, err)
		}
		return fileInfo.Size(), nil
	}
	fileInfo, err := os.Stat(file)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(errors.ErrIO, "stat %s: %v", file, err)
	}
	return fileInfo.Size(), nil
}

// CreateFile creates or truncates the heap file
func (d *DiskManagerImpl) CreateFile(file string) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	if fp, ok := d.files[file]; ok {
		fp.Close()
		delete(d.files, file)
	}
	fp, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return errors.Wrapf(errors.ErrIO, "can't create db file %s: %v", file, err)
	}
	d.files[file] = fp
	return nil
}

// RemoveFile closes and deletes the heap file
func (d *DiskManagerImpl) RemoveFile(file string) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	if fp, ok := d.files[file]; ok {
		fp.Close()
		delete(d.files, file)
	}
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(errors.ErrIO, "remove %s: %v", file, err)
	}
	return nil
}

// ShutDown closes every open heap file
func (d *DiskManagerImpl) ShutDown() {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	for _, fp := range d.files {
		fp.Close()
	}
	d.files = make(map[string]*os.File)
}
