// Package scancache persists scan statistics between runs. Entries are
// keyed by the scan root and validated against a fingerprint of the
// file list, so a hit never requires parsing a single source file.
package scancache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"flowtrace/internal/scan"
)

// Bump when the payload layout changes; older entries then read as
// misses instead of decoding garbage.
const schemaVersion uint16 = 1

// Digest is a SHA-256 value.
type Digest [sha256.Size]byte

// Cache stores scan results on disk, one entry per root. Thread-safe;
// a nil Cache is a valid always-miss cache.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// payload is the msgpack-encoded entry layout.
type payload struct {
	Schema      uint16
	Root        string
	Fingerprint Digest
	FileCount   uint32
	CreatedUnix int64
	Stats       scan.Stats
}

// Open initializes the cache at the standard location,
// ${XDG_CACHE_HOME:-$HOME/.cache}/<app>.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(root string) string {
	key := sha256.Sum256([]byte(root))
	// Entries live under "scans" so the whole set is easy to inspect
	// and wipe by hand.
	return filepath.Join(c.dir, "scans", hex.EncodeToString(key[:])+".mp")
}

// Store writes an entry for root. The write is atomic: encode to a
// temp file in the same directory, then rename over the entry.
func (c *Cache) Store(root string, fp Digest, files int, stats scan.Stats) error {
	if c == nil {
		return nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	count, err := safecast.Conv[uint32](files)
	if err != nil {
		return fmt.Errorf("file count: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(abs)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// Gone already after a successful rename.
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&payload{
		Schema:      schemaVersion,
		Root:        abs,
		Fingerprint: fp,
		FileCount:   count,
		CreatedUnix: time.Now().Unix(),
		Stats:       stats,
	}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Load returns the cached stats for root when the stored fingerprint
// matches fp. Any miss, mismatch or corruption reads as ok=false.
func (c *Cache) Load(root string, fp Digest) (scan.Stats, bool) {
	if c == nil {
		return scan.Stats{}, false
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return scan.Stats{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(abs))
	if err != nil {
		return scan.Stats{}, false
	}
	defer func() {
		_ = f.Close()
	}()

	var entry payload
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return scan.Stats{}, false
	}
	if entry.Schema != schemaVersion || entry.Root != abs || entry.Fingerprint != fp {
		return scan.Stats{}, false
	}
	return entry.Stats, true
}

// Drop removes every entry, useful after format changes. Dropping a
// cache that never materialized is a no-op.
func (c *Cache) Drop() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// Fingerprint hashes the identity of a file list: every path with its
// size and modification time. A touched, added or removed file yields
// a different digest without parsing anything.
func Fingerprint(files []string) (Digest, error) {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return Digest{}, err
		}
		h.Write([]byte(path))
		h.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf, uint64(info.Size()))
		h.Write(buf)
		binary.LittleEndian.PutUint64(buf, uint64(info.ModTime().UnixNano()))
		h.Write(buf)
	}
	var d Digest
	h.Sum(d[:0])
	return d, nil
}
