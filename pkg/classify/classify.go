// Package classify implements the pure file-to-analyzer routing function
// shared by planning and dispatch.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Acceptor reports whether an analyzer accepts a given file, using only
// the lowercase extension (and, for analyzers that take everything, a
// permissive predicate). Acceptor must not open the file.
type Acceptor interface {
	// Name is the analyzer's stable identifier, used as the map key in
	// the classifier's output and as the work unit's analyzer field.
	Name() string
	// Accepts reports whether this analyzer wants to see lowerExt (the
	// file's extension, lower-cased, including the leading dot; empty
	// string for extensionless files).
	Accepts(lowerExt string) bool
}

// PathScoped is an Acceptor that additionally restricts itself to (or
// away from) a glob-matched subset of paths, layered on top of its
// extension predicate — e.g. an analyzer configured to skip vendor/**
// regardless of extension. Acceptors that don't need this stay plain
// Acceptors; Classify only consults AcceptsPath when it's implemented.
type PathScoped interface {
	Acceptor
	AcceptsPath(path string) bool
}

// Classify returns the subset of enabled that accept path: first by
// extension, then — for analyzers wrapped in Scoped — by glob. The
// returned slice preserves the order of enabled.
func Classify(path string, enabled []Acceptor) []Acceptor {
	ext := strings.ToLower(filepath.Ext(path))
	var out []Acceptor
	for _, a := range enabled {
		if !a.Accepts(ext) {
			continue
		}
		if scoped, ok := a.(PathScoped); ok && !scoped.AcceptsPath(path) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Names is a convenience over Classify returning just the analyzer names,
// in the same order.
func Names(path string, enabled []Acceptor) []string {
	matches := Classify(path, enabled)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, len(matches))
	for i, a := range matches {
		names[i] = a.Name()
	}
	return names
}

// ExtensionSet is an Acceptor driven by a fixed set of extensions, e.g.
// the JS/TS linter driver's ".js/.jsx/.ts/.tsx".
type ExtensionSet struct {
	AnalyzerName string
	Extensions   map[string]struct{}
}

// NewExtensionSet builds an ExtensionSet from a literal extension list
// (each including the leading dot, any case — normalized here).
func NewExtensionSet(name string, exts ...string) ExtensionSet {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = struct{}{}
	}
	return ExtensionSet{AnalyzerName: name, Extensions: set}
}

func (e ExtensionSet) Name() string { return e.AnalyzerName }

func (e ExtensionSet) Accepts(lowerExt string) bool {
	_, ok := e.Extensions[lowerExt]
	return ok
}

// AllFiles is an Acceptor that accepts every file regardless of
// extension, used by the custom-pattern driver which scans all text
// files.
type AllFiles struct {
	AnalyzerName string
}

func (a AllFiles) Name() string { return a.AnalyzerName }

func (a AllFiles) Accepts(string) bool { return true }

// Scoped wraps an Acceptor with glob exclude patterns matched against
// the file's project-relative, slash-separated path — e.g. restricting
// the pattern driver to skip vendor/** even though it otherwise accepts
// every extension. A malformed pattern never matches, so it's inert
// rather than fatal.
type Scoped struct {
	Acceptor
	Exclude []string
}

func (s Scoped) AcceptsPath(path string) bool {
	slash := filepath.ToSlash(path)
	for _, pattern := range s.Exclude {
		if ok, _ := doublestar.Match(pattern, slash); ok {
			return false
		}
	}
	return true
}
