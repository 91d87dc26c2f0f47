package analyzer

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/multierr"

	"github.com/codelintio/codelint/pkg/findingcache"
	"github.com/codelintio/codelint/pkg/issue"
)

// CachedDriver wraps another Driver with the optional on-disk finding
// cache (spec §6 persisted-state extension point). A file whose content
// hash is already cached for this analyzer skips the underlying tool
// entirely; everything else is delegated to Inner and the result is
// written back for next time.
type CachedDriver struct {
	Inner   Driver
	Cache   *findingcache.Cache
	Horizon time.Duration
}

func (c *CachedDriver) Descriptor() Descriptor {
	return c.Inner.Descriptor()
}

func (c *CachedDriver) Analyze(ctx context.Context, batch []string, projectRoot string) (Outcome, error) {
	if c.Cache == nil {
		return c.Inner.Analyze(ctx, batch, projectRoot)
	}

	name := c.Inner.Descriptor().Name
	horizon := c.Horizon
	if horizon <= 0 {
		horizon = findingcache.DefaultHorizon
	}

	var out Outcome
	var misses []string
	hashes := make(map[string]string, len(batch))

	for _, f := range batch {
		hash, err := findingcache.HashFile(filepath.Join(projectRoot, f))
		if err != nil {
			misses = append(misses, f) // unreadable now; let Inner produce the real warning
			continue
		}
		hashes[f] = hash

		cached, ok, err := c.Cache.Get(ctx, name, hash, horizon)
		if err != nil || !ok {
			misses = append(misses, f)
			continue
		}
		out.Issues = append(out.Issues, cached...)
	}

	if len(misses) == 0 {
		return out, nil
	}

	fresh, err := c.Inner.Analyze(ctx, misses, projectRoot)
	if err != nil {
		return out, err
	}
	out.Issues = append(out.Issues, fresh.Issues...)
	out.Warnings = append(out.Warnings, fresh.Warnings...)

	byFile := make(map[string][]issue.Issue)
	for _, iss := range fresh.Issues {
		byFile[iss.File] = append(byFile[iss.File], iss)
	}

	var putErr error
	for _, f := range misses {
		hash, ok := hashes[f]
		if !ok {
			continue // hashing failed earlier; nothing to cache
		}
		putErr = multierr.Append(putErr, c.Cache.Put(ctx, name, hash, byFile[f]))
	}
	if putErr != nil {
		out.Warnings = append(out.Warnings, Warning{
			Message: "finding cache write failed: " + putErr.Error(),
		})
	}

	return out, nil
}
