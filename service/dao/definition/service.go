package definition

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/rtflow/internal/yml"
	"github.com/viant/rtflow/model/graph"
	"github.com/viant/rtflow/service/dao"
	"github.com/viant/rtflow/service/dao/store"
	"github.com/viant/rtflow/service/meta"
	"gopkg.in/yaml.v3"
)

// Service loads graph definitions and keeps the loaded ones by name
type Service struct {
	*store.MemoryStore[Definition]
	metaService *meta.Service
}

// DecodeYAML decodes a definition from YAML
func (s *Service) DecodeYAML(encoded []byte) (*Definition, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(encoded, &node); err != nil {
		return nil, err
	}
	return s.Parse("", &node)
}

// Load loads a definition from YAML at the specified URL and saves it
func (s *Service) Load(ctx context.Context, URL string) (*Definition, error) {
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	exists, err := s.metaService.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check definition %s: %w", URL, err)
	}
	if !exists {
		return nil, fmt.Errorf("definition %s: %w", s.metaService.URL(URL), dao.ErrNotFound)
	}
	var node yaml.Node
	if err := s.metaService.Load(ctx, URL, &node); err != nil {
		return nil, fmt.Errorf("failed to load definition from %s: %w", URL, err)
	}
	def, err := s.Parse(URL, &node)
	if err != nil {
		return nil, err
	}
	if err = s.Save(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// Parse converts a YAML node into a validated definition
func (s *Service) Parse(URL string, node *yaml.Node) (*Definition, error) {
	def := &Definition{Name: nameFromURL(URL)}
	if URL != "" {
		def.Source = &Source{URL: URL}
	}
	if err := parseDefinition((*yml.Node)(node).Root(), def); err != nil {
		return nil, fmt.Errorf("failed to parse definition %s: %w", URL, err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition %s: %w", def.Name, err)
	}
	return def, nil
}

func nameFromURL(URL string) string {
	if URL == "" {
		return ""
	}
	base := filepath.Base(URL)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parseDefinition(node *yml.Node, def *Definition) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("definition node should be a mapping")
	}
	return node.Pairs(func(key string, value *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "name":
			def.Name = value.Value
		case "channels":
			def.Channels, err = parseChannels(value)
		case "operators":
			def.Operators, err = parseOperators(value)
		case "deterministic":
			def.Deterministic, err = parseDeterministic(value)
		case "steps":
			def.Steps, err = value.Int()
		default:
			err = fmt.Errorf("line %d: unsupported key %q", value.Line, key)
		}
		return err
	})
}

// parseChannels accepts either "name: capacity" or "name: {capacity: n}"
func parseChannels(node *yml.Node) ([]*Channel, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: channels should be a mapping", node.Line)
	}
	var result []*Channel
	err := node.Pairs(func(name string, value *yml.Node) error {
		ch := &Channel{Name: name}
		switch value.Kind {
		case yaml.ScalarNode:
			if value.Tag == "!!null" {
				break
			}
			capacity, err := value.Int()
			if err != nil {
				return fmt.Errorf("channel %v: %w", name, err)
			}
			ch.Capacity = capacity
		case yaml.MappingNode:
			if c := value.Lookup("capacity"); c != nil {
				capacity, err := c.Int()
				if err != nil {
					return fmt.Errorf("channel %v: %w", name, err)
				}
				ch.Capacity = capacity
			}
		default:
			return fmt.Errorf("channel %v: unsupported node", name)
		}
		result = append(result, ch)
		return nil
	})
	return result, err
}

func parseOperators(node *yml.Node) ([]*Operator, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: operators should be a mapping", node.Line)
	}
	var result []*Operator
	err := node.Pairs(func(name string, value *yml.Node) error {
		op, err := parseOperator(name, value)
		if err != nil {
			return fmt.Errorf("operator %v: %w", name, err)
		}
		result = append(result, op)
		return nil
	})
	return result, err
}

func parseOperator(name string, node *yml.Node) (*Operator, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("operator node should be a mapping")
	}
	op := &Operator{Name: name, Body: name}
	err := node.Pairs(func(key string, value *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "id":
			op.ID, err = value.Uint32()
		case "body":
			op.Body = value.Value
		case "priority":
			op.Priority, err = value.Int()
		case "stage":
			op.Stage, err = graph.ParseStage(value.Value)
		case "in":
			op.In = value.Value
		case "out":
			op.Out = value.Value
		case "inschema":
			op.InSchema, err = parseSchema(value)
		case "outschema":
			op.OutSchema, err = parseSchema(value)
		case "strict":
			op.Strict, err = value.Bool()
		default:
			err = fmt.Errorf("line %d: unsupported key %q", value.Line, key)
		}
		return err
	})
	return op, err
}

func parseSchema(node *yml.Node) (*graph.SchemaID, error) {
	id, err := node.Uint32()
	if err != nil {
		return nil, err
	}
	return graph.Schema(graph.SchemaID(id)), nil
}

func parseDeterministic(node *yml.Node) (*Deterministic, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: deterministic should be a mapping", node.Line)
	}
	ret := &Deterministic{}
	err := node.Pairs(func(key string, value *yml.Node) error {
		var err error
		switch strings.ToLower(key) {
		case "wcet":
			ret.WCET, err = value.Duration()
		case "period":
			ret.Period, err = value.Duration()
		case "deadline":
			ret.Deadline, err = value.Duration()
		default:
			err = fmt.Errorf("line %d: unsupported key %q", value.Line, key)
		}
		return err
	})
	if err == nil && ret.Deadline == 0 {
		ret.Deadline = ret.Period
	}
	return ret, err
}

// New creates a definition service
func New(opts ...Option) *Service {
	ret := &Service{
		MemoryStore: store.NewMemoryStore[Definition](func(d *Definition) string { return d.Name }),
		metaService: meta.New(afs.New(), ""),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
