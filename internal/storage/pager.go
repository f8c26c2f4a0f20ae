package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// HeaderSize is the reserved region at the start of every table file:
// a 4-byte root pointer followed by the encoded schema, zero-padded.
const HeaderSize = 16 * 1024

// Pager owns a table file and moves whole pages to and from disk. The
// append cursor is re-derived from the file length on open, so a
// restart after a clean close resumes at the same position. Every
// successful write is flushed before it returns.
type Pager struct {
	file   *os.File
	cursor uint32
}

// OpenPager opens the table file at path, creating it if absent. A new
// or short file gets a zeroed header and the cursor starts at
// HeaderSize; otherwise the cursor is the current file length.
func OpenPager(path string) (*Pager, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat table file: %w", err)
	}
	p := &Pager{file: file, cursor: uint32(info.Size())}
	if info.Size() < HeaderSize {
		if err := p.initHeader(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return p, nil
}

func (p *Pager) initHeader() error {
	if _, err := p.file.WriteAt(make([]byte, HeaderSize), 0); err != nil {
		return fmt.Errorf("init header: %w", err)
	}
	if err := p.file.Sync(); err != nil {
		return fmt.Errorf("init header: %w", err)
	}
	p.cursor = HeaderSize
	return nil
}

// Close releases the underlying file.
func (p *Pager) Close() error {
	return p.file.Close()
}

// Root reads the root page offset from the file header. A file the
// pager never touched reads as 0.
func (p *Pager) Root() (uint32, error) {
	var buf [ptrSize]byte
	if _, err := p.file.ReadAt(buf[:], 0); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("read root: %w", err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// SetRoot writes the root page offset to the file header.
func (p *Pager) SetRoot(offset uint32) error {
	var buf [ptrSize]byte
	binary.BigEndian.PutUint32(buf[:], offset)
	if _, err := p.file.WriteAt(buf[:], 0); err != nil {
		return fmt.Errorf("write root: %w", err)
	}
	return p.file.Sync()
}

// ReadPage reads and decodes the page at the given absolute offset.
func (p *Pager) ReadPage(offset uint32) (*Page, error) {
	buf := make([]byte, PageSize)
	if _, err := p.file.ReadAt(buf, int64(offset)); err != nil {
		return nil, fmt.Errorf("read page at %d: %w", offset, err)
	}
	return DecodePage(buf)
}

// WritePage appends the page at the cursor, advances the cursor by one
// page and returns the offset just written.
func (p *Pager) WritePage(page *Page) (uint32, error) {
	offset := p.cursor
	if err := p.WritePageAt(page, offset); err != nil {
		return 0, err
	}
	p.cursor += PageSize
	return offset, nil
}

// WritePageAt rewrites the page at the given offset. The cursor does
// not move.
func (p *Pager) WritePageAt(page *Page, offset uint32) error {
	buf, err := page.Encode()
	if err != nil {
		return err
	}
	if _, err := p.file.WriteAt(buf, int64(offset)); err != nil {
		return fmt.Errorf("write page at %d: %w", offset, err)
	}
	return p.file.Sync()
}

// Cursor is the next append offset.
func (p *Pager) Cursor() uint32 {
	return p.cursor
}

// NextCursor is the append offset one page past the cursor.
func (p *Pager) NextCursor() uint32 {
	return p.cursor + PageSize
}

// SetSchema persists the table schema into the header region.
func (p *Pager) SetSchema(schema Schema) error {
	size := schema.Size()
	if size > HeaderSize-ptrSize {
		return fmt.Errorf("%w: schema of %d bytes exceeds header region", ErrInvalidInput, size)
	}
	buf := make([]byte, size)
	if _, err := schema.Write(buf); err != nil {
		return err
	}
	if _, err := p.file.WriteAt(buf, ptrSize); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	return p.file.Sync()
}

// Schema reads the table schema from the header region.
func (p *Pager) Schema() (Schema, error) {
	buf := make([]byte, HeaderSize-ptrSize)
	if _, err := p.file.ReadAt(buf, ptrSize); err != nil {
		return Schema{}, fmt.Errorf("read schema: %w", err)
	}
	schema, _, err := ReadSchema(buf)
	return schema, err
}
