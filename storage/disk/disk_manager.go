package disk

import "github.com/ymakino/TsubameDB/types"

// DiskManager takes care of the allocation and deallocation of space
// within heap files. One manager serves every table file of a database,
// addressed by file path.
type DiskManager interface {
	// ReadPage fills pageData with the page at pageID of file. Reads at
	// or past end of file yield a zeroed buffer, partial reads at the
	// tail of the file zero the remainder.
	ReadPage(file string, pageID types.PageID, pageData []byte) error
	// WritePage persists pageData at the page-aligned offset of pageID.
	WritePage(file string, pageID types.PageID, pageData []byte) error
	// FileSize returns the current length of file in bytes. A missing
	// file has size 0.
	FileSize(file string) (int64, error)
	// CreateFile creates an empty heap file, truncating any existing one.
	CreateFile(file string) error
	// RemoveFile deletes the heap file from disk.
	RemoveFile(file string) error
	// ShutDown releases every open file handle.
	ShutDown()
}
