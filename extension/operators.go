package extension

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/viant/rtflow/model/graph"
	"github.com/viant/rtflow/service/operator/nop"
	"github.com/viant/rtflow/service/operator/printer"
	"github.com/viant/rtflow/service/operator/relay"
	"github.com/viant/rtflow/service/operator/sink"
	"github.com/viant/rtflow/service/operator/source"
	"go.uber.org/zap"
)

// Factory creates a new body instance for one operator
type Factory func() graph.Body

// Operators provides operator body factories by name
type Operators struct {
	factories map[string]Factory
	mux       sync.RWMutex
}

// Register registers a factory, replacing any previous one with the same name
func (s *Operators) Register(name string, factory Factory) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.factories[strings.ToLower(name)] = factory
}

// Lookup returns a new body for name
func (s *Operators) Lookup(name string) (graph.Body, error) {
	s.mux.RLock()
	factory, ok := s.factories[strings.ToLower(name)]
	s.mux.RUnlock()
	if !ok {
		return nil, fmt.Errorf("operator body %q not registered", name)
	}
	return factory(), nil
}

// Names returns registered names, sorted
func (s *Operators) Names() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make([]string, 0, len(s.factories))
	for name := range s.factories {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// NewOperators creates a registry with the built-in bodies
func NewOperators(logger *zap.Logger) *Operators {
	ret := &Operators{factories: make(map[string]Factory)}
	ret.Register(nop.Name, func() graph.Body { return nop.New() })
	ret.Register(source.Name, func() graph.Body { return source.New(1) })
	ret.Register(relay.Name, func() graph.Body { return relay.New() })
	ret.Register(sink.Name, func() graph.Body { return sink.New() })
	ret.Register(printer.Name, func() graph.Body { return printer.New(logger) })
	return ret
}
