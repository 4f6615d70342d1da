// Package cache implements the fingerprint-keyed extraction cache of
// spec.md §4.11: one file per key (hashed filename), full key-equality
// re-check on read, version re-probe invalidation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/anthropics/cmdschema/internal/quality"
	"github.com/anthropics/cmdschema/internal/schema"
)

// quickVersionTimeout bounds the fast "--version" re-probe used for
// cache invalidation; independent of the main 5000ms probe timeout.
const quickVersionTimeout = 1500 * time.Millisecond

// Key is the full cache key: command identity, executable fingerprint,
// and policy thresholds, all of which must match exactly for a hit
// (spec.md §4.11).
type Key struct {
	Command          string `json:"command"`
	ExecutablePath   string `json:"executable_path"`
	MtimeSecs        int64  `json:"mtime_secs"`
	SizeBytes        int64  `json:"size_bytes"`
	MinConfidenceBps int    `json:"min_confidence_bps"`
	MinCoverageBps   int    `json:"min_coverage_bps"`
	AllowLowQuality  bool   `json:"allow_low_quality"`
}

// Entry is the persisted cache record: schema, report, and enough
// identity to detect a rebuilt binary without a version string.
type Entry struct {
	Key             Key                      `json:"key"`
	Schema          *schema.CommandSchema    `json:"schema"`
	Report          schema.ExtractionReport  `json:"report"`
	DetectedVersion string                   `json:"detected_version,omitempty"`
	ProbeMode       string                   `json:"probe_mode,omitempty"`
}

// Cache is a directory of hashed-filename JSON entries.
type Cache struct {
	dir string
}

// Open returns a Cache rooted at dir, creating it if necessary.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory used by XDG_CACHE_HOME/$HOME/.cache
// fallback chain when no explicit directory is configured.
func Dir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "cmdschema")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".cache", "cmdschema")
	}
	return filepath.Join(os.TempDir(), "cmdschema-cache")
}

// BuildKey constructs a cache key for command, including the policy
// thresholds encoded as integer basis points so threshold changes
// invalidate prior entries.
func BuildKey(command string, policy quality.Policy) (Key, bool) {
	resolved, err := ResolveExecutable(command)
	if err != nil {
		return Key{}, false
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return Key{}, false
	}
	return Key{
		Command:          command,
		ExecutablePath:   resolved,
		MtimeSecs:        info.ModTime().Unix(),
		SizeBytes:        info.Size(),
		MinConfidenceBps: int(policy.MinConfidence * 10000),
		MinCoverageBps:   int(policy.MinCoverage * 10000),
		AllowLowQuality:  policy.AllowLowQuality,
	}, true
}

// ResolveExecutable returns the canonical full path of command, looked
// up via PATH. The full path is used only for the cache's internal
// fingerprint; public reports and manifests store basenames only
// (spec.md §9 security boundary).
func ResolveExecutable(command string) (string, error) {
	return exec.LookPath(command)
}

// DetectQuickVersion runs a fast "<command> --version" probe used to
// invalidate a cache hit when a binary was rebuilt without changing
// mtime/size.
func DetectQuickVersion(command string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), quickVersionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, command, "--version").Output()
	if err != nil {
		return "", false
	}
	return string(out), true
}

func entryPath(dir string, key Key) string {
	raw, _ := json.Marshal(key)
	sum := sha256.Sum256(raw)
	return filepath.Join(dir, hex.EncodeToString(sum[:])+".json")
}

// Get returns the cached entry for key if an on-disk entry exists and
// its stored key matches exactly (full key-equality re-check, not just
// the hash). Callers are responsible for the version re-probe check.
func (c *Cache) Get(key Key) (Entry, bool) {
	path := entryPath(c.dir, key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false
	}
	if entry.Key != key {
		return Entry{}, false
	}
	return entry, true
}

// Put stores (or overwrites) the entry for key. Concurrent writers of
// the same key are acceptable since all converge to the same content
// (spec.md §5 shared-resource policy).
func (c *Cache) Put(key Key, sch *schema.CommandSchema, report schema.ExtractionReport, detectedVersion, probeMode string) error {
	entry := Entry{Key: key, Schema: sch, Report: report, DetectedVersion: detectedVersion, ProbeMode: probeMode}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	path := entryPath(c.dir, key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return os.Rename(tmp, path)
}
