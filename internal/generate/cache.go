package generate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/akozlov/scormgen/internal/course"
)

// CacheKey derives a stable key from the generation parameters. Two runs
// with identical parameters share a cache entry.
func CacheKey(p Params) string {
	sig, _ := json.Marshal(p)
	sum := sha256.Sum256(sig)
	return hex.EncodeToString(sum[:])[:12]
}

// RunCached generates a course, reusing a prior result from cacheDir when
// one exists for the same parameters. Cache read and write failures are
// non-fatal; the run falls through to generation.
func (o *Orchestrator) RunCached(ctx context.Context, p Params, cacheDir string) (*course.Document, error) {
	path := filepath.Join(cacheDir, "cache_"+CacheKey(p)+".json")

	if data, err := os.ReadFile(path); err == nil {
		var doc course.Document
		if err := json.Unmarshal(data, &doc); err == nil {
			o.log.Info("using cached course", "path", path)
			o.report(ProgressFinalDone, "cache")
			return &doc, nil
		}
		o.log.Warn("ignoring corrupt course cache entry", "path", path)
	}

	doc, err := o.Run(ctx, p)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		o.log.Warn("course cache dir unavailable", "error", err)
		return doc, nil
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		o.log.Warn("course cache write failed", "path", path, "error", err)
	} else {
		o.log.Info("course cached", "path", path)
	}
	return doc, nil
}
