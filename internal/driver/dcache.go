package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"girder/internal/fault"
)

// Bump when the DiskPayload format changes.
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 content hash. Cache keys are digests of the raw
// adapter JSON, so any byte change re-translates.
type Digest [sha256.Size]byte

// HashBytes computes the cache key for an input file's content.
func HashBytes(data []byte) Digest {
	return sha256.Sum256(data)
}

// DiskCache stores translation verdicts keyed by input digest.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached verdict and summary of one translation.
type DiskPayload struct {
	// Schema version for safe invalidation when the format changes
	Schema uint16

	Module    string
	OK        bool
	ErrKind   uint8
	ErrItem   uint8
	ErrMsg    string
	FuncCount int
	FuncNames []string
}

// OpenDiskCache initializes and returns a disk cache at the standard
// XDG location.
func OpenDiskCache(app string) (*DiskCache, error) {
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
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "units", hexKey+".mp")
}

// Put serializes and writes a payload, replacing atomically via rename.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload. Returns false on a miss or a schema mismatch.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// verdictPayload summarizes a translation outcome for caching.
func verdictPayload(module string, unit *Unit, terr error) *DiskPayload {
	payload := &DiskPayload{Schema: diskCacheSchemaVersion, Module: module}
	if terr == nil {
		payload.OK = true
		payload.FuncCount = len(unit.Functions)
		payload.FuncNames = make([]string, 0, len(unit.Functions))
		for _, fn := range unit.Functions {
			payload.FuncNames = append(payload.FuncNames, string(fn.Name))
		}
		return payload
	}
	var fe *fault.Error
	if errors.As(terr, &fe) {
		payload.ErrKind = uint8(fe.Kind)
		payload.ErrItem = uint8(fe.Item)
		payload.ErrMsg = fe.Msg
	} else {
		payload.ErrKind = uint8(fault.KindLoading)
		payload.ErrMsg = terr.Error()
	}
	return payload
}

// payloadVerdict reconstructs the translation error of a cached failure.
func payloadVerdict(payload *DiskPayload) error {
	if payload.OK {
		return nil
	}
	if fault.Kind(payload.ErrKind) == fault.KindNotSupportedYet {
		return fault.NotSupportedYet(fault.Unsupported(payload.ErrItem))
	}
	return &fault.Error{Kind: fault.Kind(payload.ErrKind), Msg: payload.ErrMsg}
}
