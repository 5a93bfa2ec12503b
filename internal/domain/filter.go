package domain

import (
	"encoding/json"
	"fmt"
)

// Operator is a filter comparison operator
type Operator string

const (
	OperatorIs             Operator = "is"
	OperatorIsNot          Operator = "isNot"
	OperatorContains       Operator = "contains"
	OperatorDoesNotContain Operator = "doesNotContain"
	OperatorIsEmpty        Operator = "isEmpty"
	OperatorIsNotEmpty     Operator = "isNotEmpty"
	OperatorIsGreater      Operator = "isGreater"
	OperatorIsGreaterEqual Operator = "isGreaterEqual"
	OperatorIsLess         Operator = "isLess"
	OperatorIsLessEqual    Operator = "isLessEqual"
	OperatorIsBefore       Operator = "isBefore"
	OperatorIsAfter        Operator = "isAfter"
	OperatorIsOnOrAfter    Operator = "isOnOrAfter"
	OperatorIsOnOrBefore   Operator = "isOnOrBefore"
	OperatorIsWithIn       Operator = "isWithIn"
	OperatorIsAnyOf        Operator = "isAnyOf"
	OperatorIsNoneOf       Operator = "isNoneOf"
	OperatorIsExactly      Operator = "isExactly"
	OperatorHasAnyOf       Operator = "hasAnyOf"
	OperatorHasAllOf       Operator = "hasAllOf"
	OperatorHasNoneOf      Operator = "hasNoneOf"
)

// Operators lists every operator in a stable order
var Operators = []Operator{
	OperatorIs, OperatorIsNot, OperatorContains, OperatorDoesNotContain,
	OperatorIsEmpty, OperatorIsNotEmpty,
	OperatorIsGreater, OperatorIsGreaterEqual, OperatorIsLess, OperatorIsLessEqual,
	OperatorIsBefore, OperatorIsAfter, OperatorIsOnOrAfter, OperatorIsOnOrBefore, OperatorIsWithIn,
	OperatorIsAnyOf, OperatorIsNoneOf, OperatorIsExactly,
	OperatorHasAnyOf, OperatorHasAllOf, OperatorHasNoneOf,
}

// RequiresValue returns false for operators that ignore the filter value
func (o Operator) RequiresValue() bool {
	return o != OperatorIsEmpty && o != OperatorIsNotEmpty
}

// Validate checks if the operator is known
func (o Operator) Validate() error {
	for _, op := range Operators {
		if op == o {
			return nil
		}
	}
	return fmt.Errorf("invalid operator: %s", o)
}

// Conjunction joins the children of a filter group
type Conjunction string

const (
	ConjunctionAnd Conjunction = "and"
	ConjunctionOr  Conjunction = "or"
)

const (
	FilterNodeKindLeaf  = "leaf"
	FilterNodeKindGroup = "group"
)

// FilterNode represents a node in the filter tree.
// It is either a group (AND/OR of children) or a leaf (a single condition).
type FilterNode struct {
	Kind  string       `json:"kind"` // "group" or "leaf"
	Group *FilterGroup `json:"group,omitempty"`
	Leaf  *FilterLeaf  `json:"leaf,omitempty"`
}

// FilterGroup combines child nodes with a conjunction
type FilterGroup struct {
	Conjunction Conjunction   `json:"conjunction"`
	Children    []*FilterNode `json:"children"`
}

// FilterLeaf is a single "field operator value" condition.
// Value is kept raw: its shape depends on the operator and the field type.
type FilterLeaf struct {
	FieldID  string          `json:"fieldId"`
	Operator Operator        `json:"operator"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// NewLeaf builds a leaf node, marshalling value to JSON
func NewLeaf(fieldID string, operator Operator, value interface{}) *FilterNode {
	var raw json.RawMessage
	if value != nil {
		raw, _ = json.Marshal(value)
	}
	return &FilterNode{
		Kind: FilterNodeKindLeaf,
		Leaf: &FilterLeaf{FieldID: fieldID, Operator: operator, Value: raw},
	}
}

// NewGroup builds a group node
func NewGroup(conjunction Conjunction, children ...*FilterNode) *FilterNode {
	return &FilterNode{
		Kind:  FilterNodeKindGroup,
		Group: &FilterGroup{Conjunction: conjunction, Children: children},
	}
}

// Validate validates the tree structure
func (n *FilterNode) Validate() error {
	if n.Kind == "" {
		return fmt.Errorf("filter node must have 'kind' field")
	}

	switch n.Kind {
	case FilterNodeKindGroup:
		if n.Group == nil {
			return fmt.Errorf("group node must have 'group' field")
		}
		return n.Group.Validate()
	case FilterNodeKindLeaf:
		if n.Leaf == nil {
			return fmt.Errorf("leaf node must have 'leaf' field")
		}
		return n.Leaf.Validate()
	default:
		return fmt.Errorf("invalid filter node kind: %s (must be 'group' or 'leaf')", n.Kind)
	}
}

// Validate validates a group node. Empty groups are allowed and compile to nothing.
func (g *FilterGroup) Validate() error {
	if g.Conjunction != ConjunctionAnd && g.Conjunction != ConjunctionOr {
		return fmt.Errorf("invalid conjunction: %s (must be 'and' or 'or')", g.Conjunction)
	}

	for i, child := range g.Children {
		if child == nil {
			return fmt.Errorf("group child %d is nil", i)
		}
		if err := child.Validate(); err != nil {
			return fmt.Errorf("group child %d: %w", i, err)
		}
	}

	return nil
}

// Validate validates a leaf node
func (l *FilterLeaf) Validate() error {
	if l.FieldID == "" {
		return fmt.Errorf("leaf must have 'fieldId'")
	}
	if err := l.Operator.Validate(); err != nil {
		return err
	}
	if l.Operator.RequiresValue() && len(l.Value) > 0 && !json.Valid(l.Value) {
		return fmt.Errorf("leaf value for field %s is not valid JSON", l.FieldID)
	}
	return nil
}

// FieldIDs returns the distinct field ids referenced by the tree, in order of appearance
func (n *FilterNode) FieldIDs() []string {
	seen := map[string]bool{}
	var ids []string
	var walk func(node *FilterNode)
	walk = func(node *FilterNode) {
		if node == nil {
			return
		}
		if node.Leaf != nil && !seen[node.Leaf.FieldID] {
			seen[node.Leaf.FieldID] = true
			ids = append(ids, node.Leaf.FieldID)
		}
		if node.Group != nil {
			for _, child := range node.Group.Children {
				walk(child)
			}
		}
	}
	walk(n)
	return ids
}
