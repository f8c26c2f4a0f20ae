package storage

// BTree maps typed keys to rows through a single table file. It owns
// the file's pager exclusively; one tree, one writer.
type BTree struct {
	pager *Pager
}

// Open opens the table at path. A file without a root gets an empty
// leaf written and registered as the root.
func Open(path string) (*BTree, error) {
	pager, err := OpenPager(path)
	if err != nil {
		return nil, err
	}
	root, err := pager.Root()
	if err != nil {
		_ = pager.Close()
		return nil, err
	}
	if root == 0 {
		root, err = pager.WritePage(&Page{Type: PageTypeLeaf})
		if err != nil {
			_ = pager.Close()
			return nil, err
		}
		if err := pager.SetRoot(root); err != nil {
			_ = pager.Close()
			return nil, err
		}
	}
	return &BTree{pager: pager}, nil
}

// Close releases the table file.
func (t *BTree) Close() error {
	return t.pager.Close()
}

// SetSchema persists the table's row schema.
func (t *BTree) SetSchema(schema Schema) error {
	return t.pager.SetSchema(schema)
}

// Schema reads the table's row schema.
func (t *BTree) Schema() (Schema, error) {
	return t.pager.Schema()
}

// Insert stores (key, row), overwriting the row of an equal key.
// Entries larger than MaxEntrySize are rejected before any state
// changes. A leaf that outgrows the page budget splits at the
// midpoint and promotes the right half's first key into the parent;
// promotions cascade and grow a new root when the current root splits.
func (t *BTree) Insert(key Value, row Row) error {
	if size := key.Size() + row.Size(); size > MaxEntrySize {
		return &MaxSizeError{Received: size, Limit: MaxEntrySize}
	}
	offset, err := t.pager.Root()
	if err != nil {
		return err
	}
	page, err := t.pager.ReadPage(offset)
	if err != nil {
		return err
	}

	// pending carries a (separator, child offset) promotion aimed at
	// the interior page currently loaded.
	var pending *ChildEntry

	for {
		switch page.Type {
		case PageTypeLeaf:
			page.InsertRow(key, row)
			if page.Size() <= PageSize {
				return t.pager.WritePageAt(page, offset)
			}
			left, right := splitRows(page.Rows)
			if page.Parent == 0 {
				return t.growRoot(offset,
					&Page{Type: PageTypeLeaf, Rows: left}, left[0].Key,
					&Page{Type: PageTypeLeaf, Rows: right}, right[0].Key)
			}
			parentOffset := page.Parent
			if err := t.pager.WritePageAt(&Page{Type: PageTypeLeaf, Parent: parentOffset, Rows: left}, offset); err != nil {
				return err
			}
			rightOffset, err := t.pager.WritePage(&Page{Type: PageTypeLeaf, Parent: parentOffset, Rows: right})
			if err != nil {
				return err
			}
			pending = &ChildEntry{Key: right[0].Key, Offset: rightOffset}
			offset = parentOffset
			if page, err = t.pager.ReadPage(parentOffset); err != nil {
				return err
			}
		case PageTypeInterior:
			if pending == nil {
				child := page.Children[page.ChildIndex(key)].Offset
				offset = child
				if page, err = t.pager.ReadPage(child); err != nil {
					return err
				}
				continue
			}
			page.InsertChild(pending.Key, pending.Offset)
			pending = nil
			if page.Size() <= PageSize {
				return t.pager.WritePageAt(page, offset)
			}
			left, right := splitChildren(page.Children)
			if page.Parent == 0 {
				return t.growRoot(offset,
					&Page{Type: PageTypeInterior, Children: left}, left[0].Key,
					&Page{Type: PageTypeInterior, Children: right}, right[0].Key)
			}
			parentOffset := page.Parent
			if err := t.pager.WritePageAt(&Page{Type: PageTypeInterior, Parent: parentOffset, Children: left}, offset); err != nil {
				return err
			}
			rightOffset, err := t.pager.WritePage(&Page{Type: PageTypeInterior, Parent: parentOffset, Children: right})
			if err != nil {
				return err
			}
			if err := t.reparent(right, rightOffset); err != nil {
				return err
			}
			pending = &ChildEntry{Key: right[0].Key, Offset: rightOffset}
			offset = parentOffset
			if page, err = t.pager.ReadPage(parentOffset); err != nil {
				return err
			}
		default:
			return ErrEncoding
		}
	}
}

// growRoot finishes a split of the current root. The write order keeps
// the old root valid until the final header update: the left half is
// rewritten in place, the new root and right half are appended at
// precomputed offsets, and the root pointer moves last.
func (t *BTree) growRoot(leftOffset uint32, left *Page, leftKey Value, right *Page, rightKey Value) error {
	rootOffset := t.pager.Cursor()
	rightOffset := t.pager.NextCursor()
	left.Parent = rootOffset
	right.Parent = rootOffset
	if right.Type == PageTypeInterior {
		if err := t.reparent(right.Children, rightOffset); err != nil {
			return err
		}
	}
	if err := t.pager.WritePageAt(left, leftOffset); err != nil {
		return err
	}
	root := &Page{
		Type: PageTypeInterior,
		Children: []ChildEntry{
			{Key: leftKey, Offset: leftOffset},
			{Key: rightKey, Offset: rightOffset},
		},
	}
	if _, err := t.pager.WritePage(root); err != nil {
		return err
	}
	if _, err := t.pager.WritePage(right); err != nil {
		return err
	}
	return t.pager.SetRoot(rootOffset)
}

// reparent rewrites the parent pointer of every listed child after an
// interior split moved them under a new page.
func (t *BTree) reparent(children []ChildEntry, parent uint32) error {
	for _, c := range children {
		page, err := t.pager.ReadPage(c.Offset)
		if err != nil {
			return err
		}
		page.Parent = parent
		if err := t.pager.WritePageAt(page, c.Offset); err != nil {
			return err
		}
	}
	return nil
}

// Search returns the row stored under key, or false if absent.
func (t *BTree) Search(key Value) (Row, bool, error) {
	page, _, err := t.descend(key)
	if err != nil {
		return Row{}, false, err
	}
	idx := page.FindRow(key)
	if idx < 0 {
		return Row{}, false, nil
	}
	return page.Rows[idx].Row, true, nil
}

// Delete removes key's entry and returns the removed row, or false if
// absent. Pages are never merged or reclaimed; an empty leaf is still
// a valid terminal page.
func (t *BTree) Delete(key Value) (Row, bool, error) {
	page, offset, err := t.descend(key)
	if err != nil {
		return Row{}, false, err
	}
	idx := page.FindRow(key)
	if idx < 0 {
		return Row{}, false, nil
	}
	removed := page.Rows[idx].Row
	page.RemoveRow(idx)
	if err := t.pager.WritePageAt(page, offset); err != nil {
		return Row{}, false, err
	}
	return removed, true, nil
}

// descend walks from the root to the leaf that bounds key and returns
// the leaf along with its offset.
func (t *BTree) descend(key Value) (*Page, uint32, error) {
	offset, err := t.pager.Root()
	if err != nil {
		return nil, 0, err
	}
	page, err := t.pager.ReadPage(offset)
	if err != nil {
		return nil, 0, err
	}
	for page.Type == PageTypeInterior {
		offset = page.Children[page.ChildIndex(key)].Offset
		if page, err = t.pager.ReadPage(offset); err != nil {
			return nil, 0, err
		}
	}
	return page, offset, nil
}

// Scan yields every row from every leaf in physical page order, which
// is not key order.
func (t *BTree) Scan() ([]Row, error) {
	var rows []Row
	for offset := uint32(HeaderSize); offset < t.pager.Cursor(); offset += PageSize {
		page, err := t.pager.ReadPage(offset)
		if err != nil {
			return nil, err
		}
		if page.Type != PageTypeLeaf {
			continue
		}
		for _, e := range page.Rows {
			rows = append(rows, e.Row)
		}
	}
	return rows, nil
}
