// Package pager owns the database file descriptor and the in-memory
// page cache. It knows nothing about B+ trees: a page is just 4096
// opaque bytes, addressed by page number.
package pager

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	// PageSize is the fixed width of every page in the file, in bytes.
	PageSize = 4096
	// MaxPages is the hard cap on how many pages a single database file
	// may hold in this engine (see spec Non-goals: arbitrary capacity is
	// out of scope).
	MaxPages = 100
)

// FatalError marks a condition spec.md says is fatal: the caller should
// report it and terminate, not retry or recover. The engine itself
// never calls os.Exit; only the REPL front end does, after seeing this.
type FatalError struct {
	cause error
}

func (e *FatalError) Error() string { return e.cause.Error() }
func (e *FatalError) Unwrap() error { return e.cause }

func fatalf(format string, args ...interface{}) error {
	return &FatalError{cause: errors.Errorf(format, args...)}
}

func fatalWrap(err error, msg string) error {
	return &FatalError{cause: errors.Wrap(err, msg)}
}

// IsFatal reports whether err (or something it wraps) is a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// Page is one resident 4096-byte node buffer.
type Page struct {
	Data [PageSize]byte
}

// Pager owns the file descriptor, the page cache, and the page-number
// allocator. All resident pages are treated as dirty: the pager does no
// dirty-bit tracking, it simply flushes every loaded page on Close.
type Pager struct {
	file       *os.File
	fileLength int64
	numPages   uint32
	pages      [MaxPages]*Page
}

// Open opens or creates filename for read+write and computes NumPages
// from the file's length. It fails fatally if the file length is not a
// whole multiple of PageSize.
func Open(filename string) (*Pager, error) {
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fatalWrap(err, "unable to open file")
	}

	length, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fatalWrap(err, "seek to end")
	}

	if length%PageSize != 0 {
		f.Close()
		return nil, fatalf("db file is not a whole number of pages: length %d", length)
	}

	return &Pager{
		file:       f,
		fileLength: length,
		numPages:   uint32(length / PageSize),
	}, nil
}

// NumPages returns the number of pages the pager currently knows about.
func (p *Pager) NumPages() uint32 { return p.numPages }

// GetPage returns the resident buffer for pageNum, lazily loading it
// from disk on first access. If pageNum lies past the end of the
// persisted file, the returned page is zero-filled (a partial read at
// EOF leaves the remainder zeroed, matching a fresh allocation).
func (p *Pager) GetPage(pageNum uint32) (*Page, error) {
	if pageNum >= MaxPages {
		return nil, fatalf("tried to fetch page number out of bounds: %d >= %d", pageNum, MaxPages)
	}

	if p.pages[pageNum] == nil {
		page := &Page{}

		if pageNum < p.numPages {
			off := int64(pageNum) * PageSize
			if _, err := p.file.Seek(off, io.SeekStart); err != nil {
				return nil, fatalWrap(err, "seek page")
			}
			if _, err := io.ReadFull(p.file, page.Data[:]); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				return nil, fatalWrap(err, "read page")
			}
		}

		p.pages[pageNum] = page
		if pageNum >= p.numPages {
			p.numPages = pageNum + 1
		}
	}

	return p.pages[pageNum], nil
}

// GetUnusedPageNum returns the page number the next GetPage call would
// materialize at the tail of the file. It is the allocator: callers
// that want a fresh page call this, then GetPage(that number).
func (p *Pager) GetUnusedPageNum() uint32 {
	return p.numPages
}

// FlushPage writes pageNum's full resident buffer to disk at its
// canonical offset. Flushing a page that was never loaded is a fatal
// bug — there is nothing to write.
func (p *Pager) FlushPage(pageNum uint32) error {
	page := p.pages[pageNum]
	if page == nil {
		return fatalf("tried to flush null page %d", pageNum)
	}

	off := int64(pageNum) * PageSize
	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return fatalWrap(err, "seek page")
	}
	if _, err := p.file.Write(page.Data[:]); err != nil {
		return fatalWrap(err, "write page")
	}
	return nil
}

// Close flushes every resident page and closes the file descriptor.
// All previously successful inserts are durable after Close returns,
// subject to the OS's own page cache (the engine does not fsync).
func (p *Pager) Close() error {
	for i := uint32(0); i < p.numPages; i++ {
		if p.pages[i] == nil {
			continue
		}
		if err := p.FlushPage(i); err != nil {
			return err
		}
		p.pages[i] = nil
	}

	if err := p.file.Close(); err != nil {
		return fatalWrap(err, "error closing db file")
	}
	return nil
}
