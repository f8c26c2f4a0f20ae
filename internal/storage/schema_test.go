package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumn_WriteRead(t *testing.T) {
	assert := require.New(t)

	columns := []Column{
		IntColumn("id"),
		BigIntColumn("timestamp"),
		TextColumn("name", 16),
	}

	for _, c := range columns {
		buf := make([]byte, c.Size())
		written, err := c.Write(buf)
		assert.NoError(err)
		assert.Equal(c.Size(), written)

		restored, read, err := ReadColumn(buf)
		assert.NoError(err)
		assert.Equal(c.Size(), read)
		assert.Equal(c, restored)
	}
}

func TestColumn_Layout(t *testing.T) {
	assert := require.New(t)

	c := TextColumn("name", 16)
	buf := make([]byte, c.Size())
	_, err := c.Write(buf)
	assert.NoError(err)
	assert.Equal([]byte{
		3,         // text tag
		0x0, 0x10, // capacity
		4, // name length
		'n', 'a', 'm', 'e',
	}, buf)
}

func TestColumn_String(t *testing.T) {
	assert := require.New(t)
	assert.Equal("id INT", IntColumn("id").String())
	assert.Equal("ts BIGINT", BigIntColumn("ts").String())
	assert.Equal("name VARCHAR(16)", TextColumn("name", 16).String())
}

func TestColumn_UnknownTag(t *testing.T) {
	assert := require.New(t)
	_, _, err := ReadColumn([]byte{0x9, 0x2, 'h', 'i'})
	assert.ErrorIs(err, ErrEncoding)
}

func TestColumn_NameTooLong(t *testing.T) {
	assert := require.New(t)
	c := IntColumn(strings.Repeat("x", 256))
	_, err := c.Write(make([]byte, c.Size()))
	assert.ErrorIs(err, ErrInvalidInput)
}

func TestSchema_WriteRead(t *testing.T) {
	assert := require.New(t)

	schema := NewSchema(
		IntColumn("id"),
		BigIntColumn("timestamp"),
		TextColumn("name", 16),
	)

	buf := make([]byte, schema.Size())
	written, err := schema.Write(buf)
	assert.NoError(err)
	assert.Equal(schema.Size(), written)

	restored, read, err := ReadSchema(buf)
	assert.NoError(err)
	assert.Equal(schema.Size(), read)
	assert.Equal(schema, restored)
}

func TestSchema_Empty(t *testing.T) {
	assert := require.New(t)

	restored, read, err := ReadSchema(make([]byte, 64))
	assert.NoError(err)
	assert.Equal(1, read)
	assert.Empty(restored.Columns)
}
