package node

import "github.com/fxamacker/cbor/v2"

// wireValue and wireNode mirror Value/Node for CBOR encoding. The
// instance-level ToString override is a Go closure and cannot be
// serialized; a decoded node never carries one, which mirrors what a
// round trip through reserialize+reparse would produce anyway, since no
// textual form can express a closure.
type wireValue struct {
	IsNode bool      `cbor:"n,omitempty"`
	Text   string    `cbor:"t,omitempty"`
	Child  *wireNode `cbor:"c,omitempty"`
}

type wireNode struct {
	Call    string                 `cbor:"call"`
	Args    map[string][]wireValue `cbor:"args,omitempty"`
	Content []wireValue            `cbor:"content,omitempty"`
}

// EncodeCBOR serializes n to CBOR, giving the tree a second, binary
// round-trip channel (§8) alongside identity-string/lex round-tripping —
// useful for golden-fixture snapshots in tests, grounded on the pack's
// fxamacker/cbor dependency (declared by the teacher's go.mod but unused
// in its own source; wired here into a concern it fits naturally).
func EncodeCBOR(n *Node) ([]byte, error) {
	return cbor.Marshal(toWireNode(n))
}

// DecodeCBOR reconstructs a Node from bytes produced by EncodeCBOR.
func DecodeCBOR(data []byte) (*Node, error) {
	var w wireNode
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWireNode(&w), nil
}

func toWireNode(n *Node) *wireNode {
	if n == nil {
		return nil
	}
	w := &wireNode{Call: n.Call}
	if n.Args != nil {
		w.Args = make(map[string][]wireValue, len(n.Args))
		for k, vs := range n.Args {
			w.Args[k] = toWireValues(vs)
		}
	}
	w.Content = toWireValues(n.Content)
	return w
}

func toWireValues(vs []Value) []wireValue {
	if vs == nil {
		return nil
	}
	out := make([]wireValue, len(vs))
	for i, v := range vs {
		out[i] = wireValue{IsNode: v.IsNode, Text: v.Text, Child: toWireNode(v.Child)}
	}
	return out
}

func fromWireNode(w *wireNode) *Node {
	if w == nil {
		return nil
	}
	n := &Node{Call: w.Call}
	if w.Args != nil {
		n.Args = make(map[string][]Value, len(w.Args))
		for k, vs := range w.Args {
			n.Args[k] = fromWireValues(vs)
		}
	} else {
		n.Args = map[string][]Value{}
	}
	n.Content = fromWireValues(w.Content)
	return n
}

func fromWireValues(vs []wireValue) []Value {
	if vs == nil {
		return nil
	}
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Value{IsNode: v.IsNode, Text: v.Text, Child: fromWireNode(v.Child)}
	}
	return out
}
