package onewire

import "fmt"

// PageSize is the size of one device memory page in bytes. All families
// decoded by this package expose 32-byte pages through the bus layer.
const PageSize = 32

// PageBuffer is an ordered, read-only store of fixed-size memory pages read
// from a device. The zero value is an empty buffer; all accessors on it
// fail with ErrOutOfRange.
type PageBuffer struct {
	pages [][]byte
}

// NewPageBuffer creates a PageBuffer from pre-split pages. Page contents
// are copied so the buffer is immutable once populated.
func NewPageBuffer(pages [][]byte) PageBuffer {
	cp := make([][]byte, len(pages))
	for i, p := range pages {
		cp[i] = make([]byte, len(p))
		copy(cp[i], p)
	}
	return PageBuffer{pages: cp}
}

// PageBufferFromRaw splits a raw byte stream into PageSize pages.
// A short final chunk is kept as a short page rather than padded, so
// undersized device responses surface as ErrOutOfRange on access.
func PageBufferFromRaw(raw []byte) PageBuffer {
	var pages [][]byte
	for len(raw) > 0 {
		n := min(len(raw), PageSize)
		page := make([]byte, n)
		copy(page, raw[:n])
		pages = append(pages, page)
		raw = raw[n:]
	}
	return PageBuffer{pages: pages}
}

// PageCount returns the number of populated pages.
func (b PageBuffer) PageCount() int {
	return len(b.pages)
}

// Page returns the raw bytes of the page at index.
// Returns ErrOutOfRange if the page has not been populated.
func (b PageBuffer) Page(index int) ([]byte, error) {
	if index < 0 || index >= len(b.pages) {
		return nil, fmt.Errorf("%w: page %d of %d", ErrOutOfRange, index, len(b.pages))
	}
	return b.pages[index], nil
}

// Byte returns the single byte at (page, offset).
// Returns ErrOutOfRange if the offset exceeds the page.
func (b PageBuffer) Byte(page, offset int) (byte, error) {
	p, err := b.Page(page)
	if err != nil {
		return 0, err
	}
	if offset < 0 || offset >= len(p) {
		return 0, fmt.Errorf("%w: page %d offset %d (page size %d)",
			ErrOutOfRange, page, offset, len(p))
	}
	return p[offset], nil
}

// ASCII decodes length bytes starting at (page, offset) as US-ASCII text.
// Used to read type-code strings embedded in a page.
// Returns ErrOutOfRange if offset+length exceeds the page.
func (b PageBuffer) ASCII(page, offset, length int) (string, error) {
	p, err := b.Page(page)
	if err != nil {
		return "", err
	}
	if offset < 0 || length < 0 || offset+length > len(p) {
		return "", fmt.Errorf("%w: page %d offset %d length %d (page size %d)",
			ErrOutOfRange, page, offset, length, len(p))
	}
	return string(p[offset : offset+length]), nil
}
