package node

import (
	"fmt"

	"github.com/litua-lang/litua/diag"
)

// Field names published to the extension bridge (§4.3): "Field access is
// restricted to the published set {call, args, content, copy, is_node,
// tostring, totext}."
const (
	FieldCall    = "call"
	FieldArgs    = "args"
	FieldContent = "content"
)

var readableFields = map[string]bool{
	FieldCall:    true,
	FieldArgs:    true,
	FieldContent: true,
}

// GetField returns the value of one of the published readable fields, or
// an error if field is not in the published set. Method-shaped members
// (copy, is_node, tostring, totext) correspond to Copy, Value.IsNode,
// ToString and TextOnly in this package; GetField only covers the three
// data fields and rejects every other name, those four included.
func GetField(n *Node, field string) (any, error) {
	if !readableFields[field] {
		return nil, diag.New(diag.NodeAccess, fmt.Sprintf("field %q is not accessible on a node", field)).
			WithExpected("one of call, args, content, copy, is_node, tostring, totext")
	}
	switch field {
	case FieldCall:
		return n.Call, nil
	case FieldArgs:
		return n.Args, nil
	case FieldContent:
		return n.Content, nil
	}
	panic("unreachable")
}

// SetField assigns one of the published writable fields (call, args,
// content). Any other field name is rejected.
func SetField(n *Node, field string, value any) error {
	switch field {
	case FieldCall:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %q must be assigned a string", field)
		}
		n.Call = s
		return nil
	case FieldArgs:
		m, ok := value.(map[string][]Value)
		if !ok {
			return fmt.Errorf("field %q must be assigned an argument map", field)
		}
		n.Args = m
		return nil
	case FieldContent:
		c, ok := value.([]Value)
		if !ok {
			return fmt.Errorf("field %q must be assigned a content sequence", field)
		}
		n.Content = c
		return nil
	default:
		return diag.New(diag.NodeAccess, fmt.Sprintf("field %q is not assignable on a node", field)).
			WithExpected("one of call, args, content")
	}
}
