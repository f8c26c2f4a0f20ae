package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenPager_NewFile(t *testing.T) {
	assert := require.New(t)

	path := filepath.Join(t.TempDir(), "table.db")
	pager, err := OpenPager(path)
	assert.NoError(err)
	defer pager.Close()

	assert.Equal(uint32(HeaderSize), pager.Cursor())
	assert.Equal(uint32(HeaderSize+PageSize), pager.NextCursor())

	info, err := os.Stat(path)
	assert.NoError(err)
	assert.Equal(int64(HeaderSize), info.Size())

	root, err := pager.Root()
	assert.NoError(err)
	assert.Zero(root)
}

func TestPager_CursorSurvivesReopen(t *testing.T) {
	assert := require.New(t)

	path := filepath.Join(t.TempDir(), "table.db")
	pager, err := OpenPager(path)
	assert.NoError(err)

	_, err = pager.WritePage(&Page{Type: PageTypeLeaf})
	assert.NoError(err)
	first := pager.Cursor()
	assert.NoError(pager.Close())

	pager, err = OpenPager(path)
	assert.NoError(err)
	defer pager.Close()
	assert.Equal(first, pager.Cursor())
}

func TestPager_RootRoundTrip(t *testing.T) {
	assert := require.New(t)

	pager, err := OpenPager(filepath.Join(t.TempDir(), "table.db"))
	assert.NoError(err)
	defer pager.Close()

	assert.NoError(pager.SetRoot(HeaderSize + 3*PageSize))
	root, err := pager.Root()
	assert.NoError(err)
	assert.Equal(uint32(HeaderSize+3*PageSize), root)
}

func TestPager_WriteReadPage(t *testing.T) {
	assert := require.New(t)

	pager, err := OpenPager(filepath.Join(t.TempDir(), "table.db"))
	assert.NoError(err)
	defer pager.Close()

	page := &Page{Type: PageTypeLeaf}
	page.InsertRow(TextValue("k", 4), NewRow(TextValue("v", 4)))

	offset, err := pager.WritePage(page)
	assert.NoError(err)
	assert.Equal(uint32(HeaderSize), offset)
	assert.Equal(uint32(HeaderSize+PageSize), pager.Cursor())

	restored, err := pager.ReadPage(offset)
	assert.NoError(err)
	assert.Equal(page, restored)
}

func TestPager_WritePageAtKeepsCursor(t *testing.T) {
	assert := require.New(t)

	pager, err := OpenPager(filepath.Join(t.TempDir(), "table.db"))
	assert.NoError(err)
	defer pager.Close()

	offset, err := pager.WritePage(&Page{Type: PageTypeLeaf})
	assert.NoError(err)
	cursor := pager.Cursor()

	page := &Page{Type: PageTypeLeaf, Parent: 99}
	assert.NoError(pager.WritePageAt(page, offset))
	assert.Equal(cursor, pager.Cursor())

	restored, err := pager.ReadPage(offset)
	assert.NoError(err)
	assert.Equal(uint32(99), restored.Parent)
}

func TestPager_SchemaRoundTrip(t *testing.T) {
	assert := require.New(t)

	path := filepath.Join(t.TempDir(), "table.db")
	pager, err := OpenPager(path)
	assert.NoError(err)

	schema := NewSchema(IntColumn("id"), TextColumn("name", 16))
	assert.NoError(pager.SetSchema(schema))

	saved, err := pager.Schema()
	assert.NoError(err)
	assert.Equal(schema, saved)
	assert.NoError(pager.Close())

	pager, err = OpenPager(path)
	assert.NoError(err)
	defer pager.Close()

	saved, err = pager.Schema()
	assert.NoError(err)
	assert.Equal(schema, saved)
}

func TestPager_SchemaTooLarge(t *testing.T) {
	assert := require.New(t)

	pager, err := OpenPager(filepath.Join(t.TempDir(), "table.db"))
	assert.NoError(err)
	defer pager.Close()

	name := strings.Repeat("c", 255)
	schema := Schema{}
	for i := 0; i < MaxColumns; i++ {
		schema.Columns = append(schema.Columns, TextColumn(name, 255))
	}
	assert.Greater(schema.Size(), HeaderSize-4)

	assert.ErrorIs(pager.SetSchema(schema), ErrInvalidInput)
}
