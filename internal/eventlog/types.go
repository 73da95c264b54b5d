// Package eventlog implements Harold's append-only event store: a durable
// log layered over an embedded, WAL-mode SQL engine, with per-day
// partitioned tables and a catalog that tracks which physical table is
// currently writable for each logical stream.
//
// Writes are serialised by a mutex on the Store, so only one writer at a
// time uses a partition's database handle; subscribers are served by a polling wake-up
// in place of a LISTEN/NOTIFY primitive, since SQLite has no equivalent.
package eventlog

import "time"

// Event is a single immutable record appended to a stream.
type Event struct {
	Stream    string
	Seq       int64
	Type      string
	Timestamp time.Time
	TraceID   string
	Payload   []byte
}

// partitionKey returns the YYYYMMDD partition label for t, in UTC, per the
// data model's "partition selection is by the event's wall-clock date at
// append time".
func partitionKey(t time.Time) string {
	return t.UTC().Format("20060102")
}
