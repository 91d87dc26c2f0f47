package executor

import (
	"github.com/codelintio/codelint/pkg/analyzer"
	"github.com/codelintio/codelint/pkg/classify"
)

// batch is one dispatchable unit: a set of files routed to a single
// analyzer.
type batch struct {
	analyzer string
	files    []string
}

// plan is the ordered multiset of work units fixed at the start of a
// job (spec glossary: Plan).
type plan struct {
	batches    []batch
	totalUnits int
}

// analyzerGroup is the run of batches belonging to one analyzer, kept
// together so a single goroutine can dispatch them in submission order.
type analyzerGroup struct {
	analyzer string
	batches  []batch
}

// groupByAnalyzer splits batches into contiguous per-analyzer runs.
// buildPlan already emits one analyzer's batches contiguously, so this
// is just a run-length grouping, not a sort.
func groupByAnalyzer(batches []batch) []analyzerGroup {
	var groups []analyzerGroup
	for _, b := range batches {
		if n := len(groups); n > 0 && groups[n-1].analyzer == b.analyzer {
			groups[n-1].batches = append(groups[n-1].batches, b)
			continue
		}
		groups = append(groups, analyzerGroup{analyzer: b.analyzer, batches: []batch{b}})
	}
	return groups
}

// buildPlan classifies every file against the resolved drivers and
// groups the resulting work units into per-analyzer batches, capped at
// batchSize files each. Analyzer order follows first appearance in
// drivers; within one analyzer, file order follows files' order.
func buildPlan(files []string, drivers []analyzer.Driver, batchSize int) plan {
	acceptors := analyzer.Acceptors(drivers)

	filesByAnalyzer := make(map[string][]string, len(drivers))
	order := make([]string, 0, len(drivers))
	for _, d := range drivers {
		order = append(order, d.Descriptor().Name)
	}

	for _, f := range files {
		for _, name := range classify.Names(f, acceptors) {
			filesByAnalyzer[name] = append(filesByAnalyzer[name], f)
		}
	}

	var p plan
	for _, name := range order {
		fs := filesByAnalyzer[name]
		p.totalUnits += len(fs)
		for start := 0; start < len(fs); start += batchSize {
			end := start + batchSize
			if end > len(fs) {
				end = len(fs)
			}
			p.batches = append(p.batches, batch{analyzer: name, files: fs[start:end]})
		}
	}
	return p
}
