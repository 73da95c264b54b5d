package eventlog

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/kahgeh/harold/internal/harolderr"
)

// pool is the store's handle registry: exactly one *sql.DB per physical
// database file, process-wide, so that writer serialisation (SetMaxOpenConns(1))
// and WAL checkpointing can be reasoned about per file. Grounded on the
// starbucks-mugs sqlite_queue.go single-connection discipline.
type pool struct {
	dir string

	mu    sync.Mutex
	files map[string]*sql.DB
}

func newPool(dir string) *pool {
	return &pool{dir: dir, files: make(map[string]*sql.DB)}
}

// open returns the shared handle for the named database file, opening and
// configuring it on first use.
func (p *pool) open(name string) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.files[name]; ok {
		return db, nil
	}

	path := filepath.Join(p.dir, name)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", harolderr.ErrStoreSchema, name, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(pragmaFmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: pragma %s: %w", harolderr.ErrStoreSchema, name, err)
	}

	p.files[name] = db
	return db, nil
}

// all returns every handle currently open, for checkpointing and close.
func (p *pool) all() []*sql.DB {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*sql.DB, 0, len(p.files))
	for _, db := range p.files {
		out = append(out, db)
	}
	return out
}

func (p *pool) closeAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for name, db := range p.files {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", name, err)
		}
	}
	p.files = make(map[string]*sql.DB)
	return firstErr
}
