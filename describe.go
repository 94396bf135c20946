package rulebuilder

import (
	"fmt"
	"slices"
	"strings"
)

// Describe returns a tree representation of the rule, one node per line.
// Nodes are rendered by their condition kind if it implements Representer;
// otherwise by the kind's form title and the node's fields. Unregistered
// condition types are marked as such.
//
// Example output:
//
//	If ALL are TRUE of the following:
//	├── Age over (n=18)
//	└── If ANY are TRUE of the following:
//	    ├── Country is (code=US)
//	    └── Country is (code=CA)
func (r *Registry) Describe(languageName string, node Node) (string, error) {
	if _, err := r.Schema(languageName); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(r.represent(languageName, node))
	sb.WriteString("\n")
	if err := r.describeChildren(&sb, languageName, node, "", 1); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// describeChildren writes the children of composite nodes with tree
// characters (├──, └──, │).
func (r *Registry) describeChildren(sb *strings.Builder, languageName string, node Node, prefix string, depth int) error {
	if node.Type() != IfConditionName {
		return nil
	}
	if depth > r.opts.MaxDepth {
		return fmt.Errorf("%w: %d", ErrMaxDepth, r.opts.MaxDepth)
	}
	children, err := node.Conditions()
	if err != nil {
		return err
	}
	for i, child := range children {
		connector, childPrefix := "├── ", "│   "
		if i == len(children)-1 {
			connector, childPrefix = "└── ", "    "
		}
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(r.represent(languageName, child))
		sb.WriteString("\n")
		if err := r.describeChildren(sb, languageName, child, prefix+childPrefix, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) represent(languageName string, node Node) string {
	kind, err := r.Condition(languageName, node.Type())
	if err != nil {
		return fmt.Sprintf("%s (not registered)", node.Type())
	}
	if rp, ok := kind.(Representer); ok {
		return rp.Represent(node)
	}

	title := kind.Form().Title
	if title == "" {
		title = node.Type()
	}

	keys := make([]string, 0, len(node))
	for k := range node {
		if k != KeyConditionType {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return title
	}
	slices.Sort(keys)
	params := make([]string, len(keys))
	for i, k := range keys {
		params[i] = fmt.Sprintf("%s=%v", k, node[k])
	}
	return fmt.Sprintf("%s (%s)", title, strings.Join(params, ", "))
}
