package respcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"assistd/pkg/types"
)

// Defaults applied when corresponding Options fields are unset.
const (
	defaultCapacity = 100
	defaultTTL      = 24 * time.Hour
)

// Options tunes the cache.
type Options struct {
	Dir      string
	Capacity int
	TTL      time.Duration
	Logger   zerolog.Logger
}

type entry struct {
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Language  string    `json:"language"`
	Domain    string    `json:"domain"`
	Timestamp time.Time `json:"timestamp"`

	lastAccess time.Time
}

// Cache is a two-tier response cache: an access-ordered in-memory layer over
// a flat directory of per-key JSON documents. Disk I/O failures are advisory;
// they are logged and never surfaced to callers.
type Cache struct {
	mu       sync.Mutex
	mem      map[string]*entry
	capacity int
	ttl      time.Duration
	dir      string
	log      zerolog.Logger

	hits, misses, memHits, diskHits, saves, evictions uint64
}

// New constructs a cache. An empty Dir disables the disk tier.
func New(opts Options) *Cache {
	if opts.Capacity <= 0 {
		opts.Capacity = defaultCapacity
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			opts.Logger.Warn().Err(err).Str("dir", opts.Dir).Msg("cache dir unavailable, disk tier disabled")
			opts.Dir = ""
		}
	}
	return &Cache{
		mem:      make(map[string]*entry),
		capacity: opts.Capacity,
		ttl:      opts.TTL,
		dir:      opts.Dir,
		log:      opts.Logger,
	}
}

// Key returns the deterministic digest for a normalized (prompt, language,
// domain) triple.
func Key(prompt, language, domain string) string {
	normalized := strings.ToLower(strings.TrimSpace(prompt)) + "_" + language + "_" + domain
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached response text, checking memory first and promoting
// disk hits. Expired entries are deleted on encounter.
func (c *Cache) Get(prompt, language, domain string) (string, bool) {
	key := Key(prompt, language, domain)
	now := time.Now()

	c.mu.Lock()
	if e, ok := c.mem[key]; ok {
		if now.Sub(e.Timestamp) <= c.ttl {
			e.lastAccess = now
			c.hits++
			c.memHits++
			c.mu.Unlock()
			return e.Response, true
		}
		delete(c.mem, key)
	}
	c.mu.Unlock()

	if e := c.loadFromDisk(key); e != nil {
		c.mu.Lock()
		e.lastAccess = now
		c.mem[key] = e
		c.hits++
		c.diskHits++
		c.evictLocked()
		c.mu.Unlock()
		return e.Response, true
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return "", false
}

// Put stores a response in memory and writes it to disk outside the lock.
// Callers must not cache fallback responses; the orchestrator enforces that.
func (c *Cache) Put(prompt, response, language, domain string) {
	key := Key(prompt, language, domain)
	now := time.Now()
	e := &entry{
		Prompt:     prompt,
		Response:   response,
		Language:   language,
		Domain:     domain,
		Timestamp:  now,
		lastAccess: now,
	}

	c.mu.Lock()
	c.mem[key] = e
	c.saves++
	c.evictLocked()
	c.mu.Unlock()

	c.saveToDisk(key, e)
}

// ClearExpired sweeps expired entries from both tiers.
func (c *Cache) ClearExpired() {
	now := time.Now()
	c.mu.Lock()
	for key, e := range c.mem {
		if now.Sub(e.Timestamp) > c.ttl {
			delete(c.mem, key)
		}
	}
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.log.Debug().Err(err).Msg("cache sweep: read dir")
		return
	}
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		path := filepath.Join(c.dir, de.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(b, &e); err != nil || now.Sub(e.Timestamp) > c.ttl {
			_ = os.Remove(path)
		}
	}
}

// Clear drops both tiers entirely.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.mem = make(map[string]*entry)
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	for _, de := range entries {
		if !de.IsDir() && strings.HasSuffix(de.Name(), ".json") {
			_ = os.Remove(filepath.Join(c.dir, de.Name()))
		}
	}
}

// Stats reports cache effectiveness counters.
func (c *Cache) Stats() types.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total) * 100
	}
	return types.CacheStats{
		Hits:           c.hits,
		Misses:         c.misses,
		MemoryHits:     c.memHits,
		DiskHits:       c.diskHits,
		Saves:          c.saves,
		Evictions:      c.evictions,
		MemoryEntries:  len(c.mem),
		HitRatePercent: rate,
	}
}

// evictLocked drops least-recently-accessed entries while over capacity.
// Caller holds the mutex.
func (c *Cache) evictLocked() {
	for len(c.mem) > c.capacity {
		var lruKey string
		var lruAt time.Time
		for key, e := range c.mem {
			if lruKey == "" || e.lastAccess.Before(lruAt) {
				lruKey = key
				lruAt = e.lastAccess
			}
		}
		delete(c.mem, lruKey)
		c.evictions++
	}
}

func (c *Cache) filePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// loadFromDisk reads one entry, deleting expired or corrupt files on
// encounter. Returns nil on any miss.
func (c *Cache) loadFromDisk(key string) *entry {
	if c.dir == "" {
		return nil
	}
	path := c.filePath(key)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		c.log.Debug().Str("file", path).Msg("removing corrupt cache file")
		_ = os.Remove(path)
		return nil
	}
	if time.Since(e.Timestamp) > c.ttl {
		_ = os.Remove(path)
		return nil
	}
	return &e
}

func (c *Cache) saveToDisk(key string, e *entry) {
	if c.dir == "" {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.filePath(key), b, 0o644); err != nil {
		c.log.Debug().Err(err).Msg("cache disk write failed")
	}
}
