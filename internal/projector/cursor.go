package projector

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// CursorStore persists the projector's last-seen sequence number to a
// small key=value text file, written atomically (temp file + rename),
// mirroring listener.CursorStore. Without this, every process restart
// would replay the stream from seq 0: notify's TTS path has no dedup
// (only the iMessage path does) and router.Handle re-issues send-keys
// relays and confirmation iMessages for every historical ReplyReceived
// event, flooding panes and the user on each restart.
type CursorStore struct {
	path string

	mu  sync.Mutex
	seq int64
}

// OpenCursorStore loads the last-seen sequence from path if it exists,
// defaulting to 0 (replay from the start of the stream) otherwise.
func OpenCursorStore(path string) (*CursorStore, error) {
	cs := &CursorStore{path: path}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return cs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open projector cursor file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, val, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(key) != "last_seen_seq" {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			continue
		}
		cs.seq = n
	}
	return cs, scanner.Err()
}

// Seq returns the last persisted sequence number.
func (c *CursorStore) Seq() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Advance persists a new last-seen sequence number. Called only after
// the dispatched handler for that event has returned, per spec.md
// §4.4's ordering rule.
func (c *CursorStore) Advance(seq int64) error {
	c.mu.Lock()
	c.seq = seq
	c.mu.Unlock()

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".projector-cursor-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp projector cursor file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := fmt.Fprintf(tmp, "last_seen_seq=%d\n", seq); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp projector cursor file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp projector cursor file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename projector cursor file: %w", err)
	}
	return nil
}
