package engine

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/daniilburavlev/sql/internal/storage"
)

// Engine resolves table names to their on-disk trees under a single
// data directory, one file per table. Trees stay open for the
// lifetime of the engine. Single owner, single writer.
type Engine struct {
	config *Config
	Log    *log.Logger
	tables map[string]*storage.BTree
}

// Start initializes a database engine over the configured data
// directory, creating the directory if needed.
func Start(config *Config) (*Engine, error) {
	if config == nil {
		config = &Config{}
	}
	config.applyDefaults()

	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	logger := log.New()
	logger.SetLevel(config.logLevel())
	logger.Infof("starting database engine [DataDir: %s]", config.DataDir)

	return &Engine{
		config: config,
		Log:    logger,
		tables: make(map[string]*storage.BTree),
	}, nil
}

// Close closes every open table.
func (e *Engine) Close() error {
	var firstErr error
	for name, table := range e.tables {
		if err := table.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(e.tables, name)
	}
	return firstErr
}

func (e *Engine) table(name string) (*storage.BTree, error) {
	if table, ok := e.tables[name]; ok {
		return table, nil
	}
	table, err := storage.Open(filepath.Join(e.config.DataDir, name))
	if err != nil {
		return nil, err
	}
	e.tables[name] = table
	return table, nil
}

// CreateTable creates the table file and persists its schema.
func (e *Engine) CreateTable(name string, schema storage.Schema) error {
	table, err := e.table(name)
	if err != nil {
		return err
	}
	e.Log.Infof("create table [%s]", name)
	return table.SetSchema(schema)
}

// TableSchema returns the schema persisted for the named table.
func (e *Engine) TableSchema(name string) (storage.Schema, error) {
	table, err := e.table(name)
	if err != nil {
		return storage.Schema{}, err
	}
	return table.Schema()
}

// Insert stores (key, row) in the named table, overwriting the row of
// an equal key.
func (e *Engine) Insert(name string, key storage.Value, row storage.Row) error {
	table, err := e.table(name)
	if err != nil {
		return err
	}
	return table.Insert(key, row)
}

// Search returns the row stored under key in the named table.
func (e *Engine) Search(name string, key storage.Value) (storage.Row, bool, error) {
	table, err := e.table(name)
	if err != nil {
		return storage.Row{}, false, err
	}
	return table.Search(key)
}

// Delete removes key's row from the named table and returns it.
func (e *Engine) Delete(name string, key storage.Value) (storage.Row, bool, error) {
	table, err := e.table(name)
	if err != nil {
		return storage.Row{}, false, err
	}
	return table.Delete(key)
}

// Scan returns every row of the named table in physical page order.
func (e *Engine) Scan(name string) ([]storage.Row, error) {
	table, err := e.table(name)
	if err != nil {
		return nil, err
	}
	return table.Scan()
}
