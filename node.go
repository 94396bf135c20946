package rulebuilder

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Keys of the rule node fields the registry and the composite condition read.
const (
	KeyConditionType = "condition_type"
	KeyConcatenation = "concatenation"
	KeyEvaluation    = "evaluation"
	KeyConditions    = "conditions"
)

// Node is a single rule node: a condition_type tag plus the fields of
// that kind. Nodes are usually decoded from JSON.
type Node map[string]any

// ParseNode decodes a JSON object into a rule node.
// Numbers are decoded as float64.
func ParseNode(b []byte) (Node, error) {
	var n Node
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNode, err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: null rule", ErrMalformedNode)
	}
	return n, nil
}

// Type returns the condition type of the node, or "" if it has none.
func (n Node) Type() string {
	s, _ := n[KeyConditionType].(string)
	return s
}

// Concatenation returns the concatenation field of a composite node.
func (n Node) Concatenation() (string, error) {
	return n.stringField(KeyConcatenation)
}

// Evaluation returns the evaluation field of a composite node.
func (n Node) Evaluation() (string, error) {
	return n.stringField(KeyEvaluation)
}

func (n Node) stringField(key string) (string, error) {
	v, ok := n[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrMalformedNode, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want string", ErrMalformedNode, key, v)
	}
	return s, nil
}

// Conditions returns the child nodes of a composite node, in order.
func (n Node) Conditions() ([]Node, error) {
	v, ok := n[KeyConditions]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedNode, KeyConditions)
	}
	switch cs := v.(type) {
	case nil:
		return nil, nil
	case []Node:
		return cs, nil
	case []map[string]any:
		out := make([]Node, len(cs))
		for i := range cs {
			out[i] = cs[i]
		}
		return out, nil
	case []any:
		out := make([]Node, len(cs))
		for i, c := range cs {
			switch m := c.(type) {
			case Node:
				out[i] = m
			case map[string]any:
				out[i] = m
			default:
				return nil, fmt.Errorf("%w: %s[%d] is %T, want object", ErrMalformedNode, KeyConditions, i, c)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s is %T, want array", ErrMalformedNode, KeyConditions, v)
	}
}

// JSON encodes the node.
func (n Node) JSON() ([]byte, error) {
	return json.Marshal(n)
}
