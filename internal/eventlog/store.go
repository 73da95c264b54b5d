package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kahgeh/harold/internal/harolderr"
)

// catalogFile is the well-known name for the stream registry database.
const catalogFile = "catalog.db"

// Store is Harold's append-only event store. Writes to a given stream are
// serialised through storeMu, so a single goroutine owns the write
// connection at a time; reads may run concurrently since each partition
// file allows multiple readers once SetMaxOpenConns is relaxed for
// read-only handles. In the current
// implementation the same single connection backs both, which is
// sufficient at Harold's event volume and keeps WAL checkpointing simple.
type Store struct {
	pool    *pool
	catalog *sql.DB

	storeMu sync.Mutex // serialises Append and EvolveSchema across all streams

	subMu   sync.Mutex
	waiters map[string][]chan struct{} // stream -> subscribers awaiting new data
}

// Open creates or attaches to the event store rooted at dir. dir is created
// by the caller; Open only requires it to exist.
func Open(dir string) (*Store, error) {
	p := newPool(dir)
	catalog, err := p.open(catalogFile)
	if err != nil {
		return nil, err
	}
	if _, err := catalog.Exec(catalogSchema); err != nil {
		return nil, fmt.Errorf("%w: catalog schema: %w", harolderr.ErrStoreSchema, err)
	}
	return &Store{
		pool:    p,
		catalog: catalog,
		waiters: make(map[string][]chan struct{}),
	}, nil
}

// Close releases every open database handle without checkpointing. Callers
// on a clean shutdown path should call Checkpoint first.
func (s *Store) Close() error {
	return s.pool.closeAll()
}

// currentTable returns the table and file currently registered as writable
// for stream, or ("", "", false) if the stream has never been written to.
func (s *Store) currentTable(stream string) (dbFile, table string, ok bool, err error) {
	row := s.catalog.QueryRow(
		`SELECT db_file, table_name FROM stream_tables
		 WHERE stream = ? ORDER BY seq_from DESC LIMIT 1`, stream)
	err = row.Scan(&dbFile, &table)
	if err == sql.ErrNoRows {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("%w: lookup current table: %w", harolderr.ErrStoreSchema, err)
	}
	return dbFile, table, true, nil
}

// ensureWritableTable returns the database handle and table name that
// should receive the next append for stream at wall-clock time ts. It
// creates a new partition table (and registers it in the catalog) whenever
// the stream has no current table or the partition date has rolled over.
func (s *Store) ensureWritableTable(stream string, ts time.Time, nextSeq int64) (*sql.DB, string, error) {
	partition := partitionKey(ts)
	dbFile, table, ok, err := s.currentTable(stream)
	if err != nil {
		return nil, "", err
	}

	wantFile := fmt.Sprintf("events_%s.db", partition)
	wantTable := "events"

	if ok && dbFile == wantFile {
		db, err := s.pool.open(dbFile)
		if err != nil {
			return nil, "", err
		}
		return db, table, nil
	}

	return s.createTable(stream, wantFile, wantTable, nextSeq)
}

// EvolveSchema forces the next append to stream to land in a brand new
// table, even within the same partition day. Historical tables are never
// altered; this is how the store would absorb a payload shape change
// without an online ALTER TABLE.
func (s *Store) EvolveSchema(ctx context.Context, stream string) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	nextSeq, err := s.peekNextSeq(stream)
	if err != nil {
		return err
	}
	now := time.Now()
	partition := partitionKey(now)
	file := fmt.Sprintf("events_%s.db", partition)
	table := fmt.Sprintf("events_v%d", nextSeq)
	_, _, err = s.createTable(stream, file, table, nextSeq)
	return err
}

func (s *Store) createTable(stream, dbFile, table string, seqFrom int64) (*sql.DB, string, error) {
	db, err := s.pool.open(dbFile)
	if err != nil {
		return nil, "", err
	}
	ddl := fmt.Sprintf(eventTableSchemaFmt, table, table, table)
	if _, err := db.Exec(ddl); err != nil {
		return nil, "", fmt.Errorf("%w: create table %s: %w", harolderr.ErrStoreSchema, table, err)
	}
	_, err = s.catalog.Exec(
		`INSERT INTO stream_tables (stream, seq_from, db_file, table_name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		stream, seqFrom, dbFile, table, time.Now().Unix(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("%w: register table %s: %w", harolderr.ErrStoreSchema, table, err)
	}
	return db, table, nil
}

func (s *Store) peekNextSeq(stream string) (int64, error) {
	var next int64
	err := s.catalog.QueryRow(
		`SELECT next_seq FROM stream_seq WHERE stream = ?`, stream,
	).Scan(&next)
	if err == sql.ErrNoRows {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read sequence counter: %w", harolderr.ErrStoreSchema, err)
	}
	return next, nil
}

func (s *Store) reserveSeq(stream string) (int64, error) {
	next, err := s.peekNextSeq(stream)
	if err != nil {
		return 0, err
	}
	_, err = s.catalog.Exec(
		`INSERT INTO stream_seq (stream, next_seq) VALUES (?, ?)
		 ON CONFLICT(stream) DO UPDATE SET next_seq = excluded.next_seq`,
		stream, next+1,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: reserve sequence: %w", harolderr.ErrStoreSchema, err)
	}
	return next, nil
}

// Append writes a new event to stream and returns it with Seq and
// Timestamp populated. Sequence numbers are strictly increasing within a
// stream across every partition table that has ever backed it.
func (s *Store) Append(ctx context.Context, stream, eventType, traceID string, payload []byte) (Event, error) {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	now := time.Now()
	seq, err := s.reserveSeq(stream)
	if err != nil {
		return Event{}, err
	}
	db, _, err := s.ensureWritableTable(stream, now, seq)
	if err != nil {
		return Event{}, err
	}
	table, err := s.tableFor(stream, seq)
	if err != nil {
		return Event{}, err
	}

	_, err = db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (seq, type, ts, trace_id, payload) VALUES (?, ?, ?, ?, ?)`, table),
		seq, eventType, now.UnixNano(), traceID, payload,
	)
	if err != nil {
		return Event{}, fmt.Errorf("%w: insert %s seq %d: %w", harolderr.ErrStoreWrite, stream, seq, err)
	}

	s.wake(stream)

	return Event{
		Stream:    stream,
		Seq:       seq,
		Type:      eventType,
		Timestamp: now,
		TraceID:   traceID,
		Payload:   payload,
	}, nil
}

// tableFor returns the table name whose seq_from range covers seq.
func (s *Store) tableFor(stream string, seq int64) (string, error) {
	var table string
	err := s.catalog.QueryRow(
		`SELECT table_name FROM stream_tables
		 WHERE stream = ? AND seq_from <= ?
		 ORDER BY seq_from DESC LIMIT 1`, stream, seq,
	).Scan(&table)
	if err != nil {
		return "", fmt.Errorf("%w: resolve table for seq %d: %w", harolderr.ErrStoreSchema, seq, err)
	}
	return table, nil
}

type tableRange struct {
	dbFile, table string
	seqFrom       int64
}

// tablesFrom returns, in ascending seq_from order, every partition table
// registered for stream that could contain events with seq >= afterSeq.
func (s *Store) tablesFrom(stream string, afterSeq int64) ([]tableRange, error) {
	rows, err := s.catalog.Query(
		`SELECT db_file, table_name, seq_from FROM stream_tables
		 WHERE stream = ? ORDER BY seq_from ASC`, stream)
	if err != nil {
		return nil, fmt.Errorf("%w: list tables: %w", harolderr.ErrStoreSchema, err)
	}
	defer rows.Close()

	var all []tableRange
	for rows.Next() {
		var tr tableRange
		if err := rows.Scan(&tr.dbFile, &tr.table, &tr.seqFrom); err != nil {
			return nil, fmt.Errorf("%w: scan table range: %w", harolderr.ErrStoreSchema, err)
		}
		all = append(all, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Keep every table that might hold seq > afterSeq: that is every table
	// except ones whose entire range ends strictly before the next table
	// starts at or below afterSeq.
	var relevant []tableRange
	for i, tr := range all {
		upperExclusive := int64(1<<63 - 1)
		if i+1 < len(all) {
			upperExclusive = all[i+1].seqFrom
		}
		if upperExclusive > afterSeq {
			relevant = append(relevant, tr)
		}
	}
	return relevant, nil
}

// Read returns up to limit events from stream with Seq > afterSeq, in
// ascending sequence order, spanning as many partition tables as needed.
func (s *Store) Read(ctx context.Context, stream string, afterSeq int64, limit int) ([]Event, error) {
	ranges, err := s.tablesFrom(stream, afterSeq)
	if err != nil {
		return nil, err
	}

	var out []Event
	for _, tr := range ranges {
		if len(out) >= limit {
			break
		}
		db, err := s.pool.open(tr.dbFile)
		if err != nil {
			return nil, err
		}
		remaining := limit - len(out)
		rows, err := db.QueryContext(ctx,
			fmt.Sprintf(`SELECT seq, type, ts, trace_id, payload FROM %s
			             WHERE seq > ? ORDER BY seq ASC LIMIT ?`, tr.table),
			afterSeq, remaining,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", harolderr.ErrStoreWrite, tr.table, err)
		}
		for rows.Next() {
			var e Event
			var tsNano int64
			if err := rows.Scan(&e.Seq, &e.Type, &tsNano, &e.TraceID, &e.Payload); err != nil {
				rows.Close()
				return nil, fmt.Errorf("%w: scan %s: %w", harolderr.ErrStoreWrite, tr.table, err)
			}
			e.Stream = stream
			e.Timestamp = time.Unix(0, tsNano)
			out = append(out, e)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Checkpoint truncates the WAL on every open database file. Called exactly
// once, on ordered shutdown, after every writer task has stopped.
func (s *Store) Checkpoint(ctx context.Context) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	var firstErr error
	for _, db := range s.pool.all() {
		var busy, logFrames, checkpointed int64
		err := db.QueryRowContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`).Scan(&busy, &logFrames, &checkpointed)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: checkpoint: %w", harolderr.ErrStoreWrite, err)
			}
			continue
		}
		if busy != 0 {
			slog.Warn("wal checkpoint did not complete", "log_frames", logFrames, "checkpointed", checkpointed)
		}
	}
	return firstErr
}
