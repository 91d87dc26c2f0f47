package cmd

import (
	"time"

	"github.com/codelintio/codelint/internal/config"
	"github.com/codelintio/codelint/pkg/analyzer"
	"github.com/codelintio/codelint/pkg/analyzer/banditdriver"
	"github.com/codelintio/codelint/pkg/analyzer/eslintdriver"
	"github.com/codelintio/codelint/pkg/analyzer/patterndriver"
	"github.com/codelintio/codelint/pkg/analyzer/semgrepdriver"
	"github.com/codelintio/codelint/pkg/findingcache"
)

// buildDriverSet constructs the full analyzer registry from config. The
// pattern driver is always present since it has no external binary and
// no reason to be disabled; semgrep is opt-in via analyzers.enabled.
func buildDriverSet(cfg *config.Config, cache *findingcache.Cache) *analyzer.Set {
	horizonDays := cfg.Cache.HorizonDays
	if horizonDays <= 0 {
		horizonDays = 7
	}
	horizon := time.Duration(horizonDays) * 24 * time.Hour

	wrap := func(d analyzer.Driver) analyzer.Driver {
		if cache == nil {
			return d
		}
		return &analyzer.CachedDriver{Inner: d, Cache: cache, Horizon: horizon}
	}

	return analyzer.NewSet(
		wrap(eslintdriver.New(cfg.Analyzers.ESLintPath)),
		wrap(banditdriver.New(cfg.Analyzers.BanditPath)),
		patterndriver.New(),
		wrap(semgrepdriver.New(cfg.Analyzers.SemgrepPath)),
	)
}
