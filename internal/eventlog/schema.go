package eventlog

const catalogSchema = `
CREATE TABLE IF NOT EXISTS stream_tables (
	stream     TEXT    NOT NULL,
	seq_from   INTEGER NOT NULL,
	db_file    TEXT    NOT NULL,
	table_name TEXT    NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (stream, seq_from)
);

CREATE TABLE IF NOT EXISTS stream_seq (
	stream   TEXT PRIMARY KEY,
	next_seq INTEGER NOT NULL
);
`

// eventTableSchema is parameterised on table name because each partition
// file can carry more than one table across a schema evolution (see
// Store.EvolveSchema). trace_id carries a default so historical rows
// written before trace propagation existed still satisfy NOT NULL.
const eventTableSchemaFmt = `
CREATE TABLE IF NOT EXISTS %s (
	seq      INTEGER NOT NULL PRIMARY KEY,
	type     TEXT    NOT NULL,
	ts       INTEGER NOT NULL,
	trace_id TEXT    NOT NULL DEFAULT '',
	payload  BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS %s_trace_idx ON %s (trace_id);
`

const pragmaFmt = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous  = NORMAL;
PRAGMA busy_timeout = 5000;
`
