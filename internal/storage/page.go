package storage

import (
	"encoding/binary"
	"io"
	"sort"
)

// PageSize is the fixed size of every on-disk page.
const PageSize = 4 * 1024

const (
	pageTypeSize = 1
	ptrSize      = 4
	pageLenSize  = 2
	pageInfoSize = pageTypeSize + ptrSize + pageLenSize
)

// MaxEntrySize is the largest encoded (key, payload) record a single
// page can hold.
const MaxEntrySize = PageSize - pageInfoSize

// PageType identifies a page as interior or leaf. The byte values are
// the on-disk tags.
type PageType byte

const (
	PageTypeInterior PageType = 1
	PageTypeLeaf     PageType = 2
)

// ChildEntry points an interior page at one child page. The key is a
// separator: every key stored under the child is at least the
// separator, except under the first child, which also receives keys
// smaller than every separator.
type ChildEntry struct {
	Key    Value
	Offset uint32
}

// RowEntry stores one keyed row in a leaf page.
type RowEntry struct {
	Key Value
	Row Row
}

// Page is one fixed-size node of the tree. Parent is the absolute file
// offset of the parent page, 0 for the root. Interior pages use
// Children, leaf pages use Rows; entries are kept strictly sorted by
// key and no page holds duplicate keys.
type Page struct {
	Type     PageType
	Parent   uint32
	Children []ChildEntry
	Rows     []RowEntry
}

func leafSize(rows []RowEntry) int {
	size := pageInfoSize
	for _, e := range rows {
		size += e.Key.Size() + e.Row.Size()
	}
	return size
}

func interiorSize(children []ChildEntry) int {
	size := pageInfoSize
	for _, e := range children {
		size += e.Key.Size() + ptrSize
	}
	return size
}

// Size returns the encoded size of the page in bytes.
func (p *Page) Size() int {
	if p.Type == PageTypeInterior {
		return interiorSize(p.Children)
	}
	return leafSize(p.Rows)
}

// InsertRow places (key, row) at its sorted position in a leaf. An
// existing entry with an equal key is overwritten in place.
func (p *Page) InsertRow(key Value, row Row) {
	idx := sort.Search(len(p.Rows), func(i int) bool {
		return p.Rows[i].Key.Compare(key) >= 0
	})
	if idx < len(p.Rows) && p.Rows[idx].Key.Compare(key) == 0 {
		p.Rows[idx] = RowEntry{Key: key, Row: row}
		return
	}
	p.Rows = append(p.Rows, RowEntry{})
	copy(p.Rows[idx+1:], p.Rows[idx:])
	p.Rows[idx] = RowEntry{Key: key, Row: row}
}

// InsertChild places (key, offset) at its sorted position in an
// interior page. An existing entry with an equal key is overwritten.
func (p *Page) InsertChild(key Value, offset uint32) {
	idx := sort.Search(len(p.Children), func(i int) bool {
		return p.Children[i].Key.Compare(key) >= 0
	})
	if idx < len(p.Children) && p.Children[idx].Key.Compare(key) == 0 {
		p.Children[idx] = ChildEntry{Key: key, Offset: offset}
		return
	}
	p.Children = append(p.Children, ChildEntry{})
	copy(p.Children[idx+1:], p.Children[idx:])
	p.Children[idx] = ChildEntry{Key: key, Offset: offset}
}

// ChildIndex returns the index of the child whose separator is the
// greatest key not exceeding key, clamped to the first child when
// every separator is greater.
func (p *Page) ChildIndex(key Value) int {
	idx := sort.Search(len(p.Children), func(i int) bool {
		return p.Children[i].Key.Compare(key) > 0
	})
	if idx == 0 {
		return 0
	}
	return idx - 1
}

// FindRow returns the index of key in a leaf, or -1 if absent.
func (p *Page) FindRow(key Value) int {
	idx := sort.Search(len(p.Rows), func(i int) bool {
		return p.Rows[i].Key.Compare(key) >= 0
	})
	if idx < len(p.Rows) && p.Rows[idx].Key.Compare(key) == 0 {
		return idx
	}
	return -1
}

// RemoveRow deletes the entry at idx from a leaf.
func (p *Page) RemoveRow(idx int) {
	p.Rows = append(p.Rows[:idx], p.Rows[idx+1:]...)
}

// splitRows partitions a sorted entry list at the midpoint. Front
// entries of the right half move back to the left until the right half
// fits the entry budget; the right half always keeps at least one
// entry so a separator exists.
func splitRows(rows []RowEntry) (left, right []RowEntry) {
	mid := len(rows) / 2
	left = append([]RowEntry(nil), rows[:mid]...)
	right = append([]RowEntry(nil), rows[mid:]...)
	for len(right) > 1 && leafSize(right) > MaxEntrySize {
		left = append(left, right[0])
		right = right[1:]
	}
	return left, right
}

// splitChildren is splitRows for interior entries.
func splitChildren(children []ChildEntry) (left, right []ChildEntry) {
	mid := len(children) / 2
	left = append([]ChildEntry(nil), children[:mid]...)
	right = append([]ChildEntry(nil), children[mid:]...)
	for len(right) > 1 && interiorSize(right) > MaxEntrySize {
		left = append(left, right[0])
		right = right[1:]
	}
	return left, right
}

// Encode serialises the page into a fresh PageSize buffer. Pages whose
// entries exceed the page budget cannot be encoded.
func (p *Page) Encode() ([]byte, error) {
	if p.Size() > PageSize {
		return nil, ErrEncoding
	}
	buf := make([]byte, PageSize)
	buf[0] = byte(p.Type)
	binary.BigEndian.PutUint32(buf[pageTypeSize:], p.Parent)
	offset := pageTypeSize + ptrSize
	switch p.Type {
	case PageTypeInterior:
		binary.BigEndian.PutUint16(buf[offset:], uint16(len(p.Children)))
		offset += pageLenSize
		for _, e := range p.Children {
			n, err := e.Key.Write(buf[offset:])
			if err != nil {
				return nil, err
			}
			offset += n
			binary.BigEndian.PutUint32(buf[offset:], e.Offset)
			offset += ptrSize
		}
	case PageTypeLeaf:
		binary.BigEndian.PutUint16(buf[offset:], uint16(len(p.Rows)))
		offset += pageLenSize
		for _, e := range p.Rows {
			n, err := e.Key.Write(buf[offset:])
			if err != nil {
				return nil, err
			}
			offset += n
			n, err = e.Row.Write(buf[offset:])
			if err != nil {
				return nil, err
			}
			offset += n
		}
	default:
		return nil, ErrEncoding
	}
	return buf, nil
}

// DecodePage parses one page from buf.
func DecodePage(buf []byte) (*Page, error) {
	if len(buf) < pageInfoSize {
		return nil, io.ErrUnexpectedEOF
	}
	page := &Page{
		Type:   PageType(buf[0]),
		Parent: binary.BigEndian.Uint32(buf[pageTypeSize:]),
	}
	count := int(binary.BigEndian.Uint16(buf[pageTypeSize+ptrSize:]))
	offset := pageInfoSize
	switch page.Type {
	case PageTypeInterior:
		page.Children = make([]ChildEntry, 0, count)
		for i := 0; i < count; i++ {
			key, n, err := ReadValue(buf[offset:])
			if err != nil {
				return nil, err
			}
			offset += n
			if len(buf) < offset+ptrSize {
				return nil, io.ErrUnexpectedEOF
			}
			child := binary.BigEndian.Uint32(buf[offset:])
			offset += ptrSize
			page.Children = append(page.Children, ChildEntry{Key: key, Offset: child})
		}
	case PageTypeLeaf:
		page.Rows = make([]RowEntry, 0, count)
		for i := 0; i < count; i++ {
			key, n, err := ReadValue(buf[offset:])
			if err != nil {
				return nil, err
			}
			offset += n
			row, n, err := ReadRow(buf[offset:])
			if err != nil {
				return nil, err
			}
			offset += n
			page.Rows = append(page.Rows, RowEntry{Key: key, Row: row})
		}
	default:
		return nil, ErrEncoding
	}
	return page, nil
}
