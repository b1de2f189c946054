package yml

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	Node yaml.Node
)

// Root returns the first document content node, or n itself
func (n *Node) Root() *Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return (*Node)(n.Content[0])
	}
	return n
}

// Lookup returns the value of a mapping key (case-insensitive) or nil
func (n *Node) Lookup(name string) *Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if strings.EqualFold(n.Content[i].Value, name) {
			return (*Node)(n.Content[i+1])
		}
	}
	return nil
}

func (n *Node) Items(callback func(index int, node *Node) error) error {
	for i := 0; i < len(n.Content); i++ {
		if err := callback(i, (*Node)(n.Content[i])); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) Pairs(callback func(key string, node *Node) error) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := callback(n.Content[i].Value, (*Node)(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

// Int returns the scalar value as int
func (n *Node) Int() (int, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("line %d: expected integer", n.Line)
	}
	v, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid integer %q: %w", n.Line, n.Value, err)
	}
	return v, nil
}

// Uint32 returns the scalar value as uint32
func (n *Node) Uint32() (uint32, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("line %d: expected integer", n.Line)
	}
	v, err := strconv.ParseUint(n.Value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid integer %q: %w", n.Line, n.Value, err)
	}
	return uint32(v), nil
}

// Bool returns the scalar value as bool
func (n *Node) Bool() (bool, error) {
	if n.Kind != yaml.ScalarNode {
		return false, fmt.Errorf("line %d: expected boolean", n.Line)
	}
	v, err := strconv.ParseBool(n.Value)
	if err != nil {
		return false, fmt.Errorf("line %d: invalid boolean %q: %w", n.Line, n.Value, err)
	}
	return v, nil
}

// Duration accepts Go duration literals ("50us") or plain nanoseconds
func (n *Node) Duration() (time.Duration, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("line %d: expected duration", n.Line)
	}
	if ns, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
		return time.Duration(ns), nil
	}
	d, err := time.ParseDuration(n.Value)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid duration %q: %w", n.Line, n.Value, err)
	}
	return d, nil
}

// Interface converts the node into plain Go values
func (n *Node) Interface() interface{} {
	switch n.Kind {
	case yaml.DocumentNode:
		return n.Root().Interface()
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!bool":
			v, _ := strconv.ParseBool(n.Value)
			return v
		case "!!null":
			return nil
		case "!!float":
			v, _ := strconv.ParseFloat(n.Value, 64)
			return v
		case "!!int":
			v, _ := strconv.Atoi(n.Value)
			return v
		default:
			return n.Value
		}
	case yaml.MappingNode:
		aMap := make(map[string]interface{}, len(n.Content)/2)
		_ = n.Pairs(func(key string, value *Node) error {
			aMap[key] = value.Interface()
			return nil
		})
		return aMap
	case yaml.SequenceNode:
		aSlice := make([]interface{}, 0, len(n.Content))
		_ = n.Items(func(_ int, value *Node) error {
			aSlice = append(aSlice, value.Interface())
			return nil
		})
		return aSlice
	}
	return nil
}
