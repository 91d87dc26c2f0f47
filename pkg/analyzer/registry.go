package analyzer

import (
	"fmt"
	"sort"

	"github.com/codelintio/codelint/pkg/classify"
)

// Set holds the drivers available to an executor, keyed by name. It is
// built once at startup and treated as read-only thereafter.
type Set struct {
	drivers map[string]Driver
}

// NewSet builds a Set from a driver list. Duplicate names are an
// implementation error and panic — this runs once at process init, not
// per job.
func NewSet(drivers ...Driver) *Set {
	s := &Set{drivers: make(map[string]Driver, len(drivers))}
	for _, d := range drivers {
		name := d.Descriptor().Name
		if _, dup := s.drivers[name]; dup {
			panic(fmt.Sprintf("analyzer: duplicate driver name %q", name))
		}
		s.drivers[name] = d
	}
	return s
}

// Names returns every registered driver name, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.drivers))
	for n := range s.drivers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve validates a caller-supplied analyzer-name list against the
// registered set and returns the matching drivers in the same order.
// An unknown name is the create-time illegal_input fault from §7.
func (s *Set) Resolve(names []string) ([]Driver, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("analyzer: no analyzers selected")
	}
	out := make([]Driver, 0, len(names))
	for _, n := range names {
		d, ok := s.drivers[n]
		if !ok {
			return nil, &UnknownAnalyzerError{Name: n}
		}
		out = append(out, d)
	}
	return out, nil
}

// Acceptors exposes the resolved drivers as classify.Acceptor, preserving
// order, for use by the file classifier.
func Acceptors(drivers []Driver) []classify.Acceptor {
	out := make([]classify.Acceptor, len(drivers))
	for i, d := range drivers {
		out[i] = d.Descriptor().Acceptor
	}
	return out
}

// ByName indexes a driver slice by name for quick lookup during dispatch.
func ByName(drivers []Driver) map[string]Driver {
	m := make(map[string]Driver, len(drivers))
	for _, d := range drivers {
		m[d.Descriptor().Name] = d
	}
	return m
}

// UnknownAnalyzerError is returned by Resolve for a name with no
// registered driver.
type UnknownAnalyzerError struct {
	Name string
}

func (e *UnknownAnalyzerError) Error() string {
	return fmt.Sprintf("analyzer: unknown analyzer %q", e.Name)
}
