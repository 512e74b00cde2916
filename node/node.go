// Package node implements litua's in-memory tree model: the Node entity,
// its restricted attribute surface, copy/serialize/text-projection
// operations, and the per-instance string-conversion override the
// transform pipeline's root relies on.
//
// The shape — a tagged child slot holding either literal text or a nested
// node, an ordered multi-valued argument map, and a small set of
// operations the rest of the system is allowed to call — is grounded on
// the teacher's ast.Node design (pkgs/ast/ast.go), generalized from
// devcmd's fixed command/variable/decorator node kinds to litua's single
// uniform call/args/content shape.
package node

import "sort"

// Value is a child slot: either literal text or a nested Node. Exactly
// one of the two is meaningful, selected by IsNode, following the design
// notes' "tagged-variant child slot" guidance for phase-4 replace-with-text.
type Value struct {
	IsNode bool
	Text   string
	Child  *Node
}

// Text constructs a literal-text Value.
func Text(s string) Value { return Value{Text: s} }

// Of constructs a Value wrapping a Node.
func Of(n *Node) Value { return Value{IsNode: true, Child: n} }

// Node is the central tree entity (§3).
type Node struct {
	Call    string
	Args    map[string][]Value
	Content []Value

	// toString, when set, overrides identity serialization for this
	// specific instance (§4.3/§9) — used by the pipeline to give the
	// synthetic document root a flattening string form.
	toString func(*Node) (string, error)
}

// New creates an empty node with the given call name.
func New(call string) *Node {
	return &Node{Call: call, Args: map[string][]Value{}}
}

// SetToStringOverride installs a per-instance converter used by ToString
// instead of IdentityString. Passing nil clears the override.
func (n *Node) SetToStringOverride(f func(*Node) (string, error)) {
	n.toString = f
}

// HasToStringOverride reports whether this instance carries an override.
func (n *Node) HasToStringOverride() bool {
	return n.toString != nil
}

// AppendArg appends a value to the (possibly new) sequence for key —
// mirroring the grammar rule that repeated '[k=...]' groups for the same
// key append rather than overwrite (§4.2 step 2).
func (n *Node) AppendArg(key string, values ...Value) {
	if n.Args == nil {
		n.Args = map[string][]Value{}
	}
	n.Args[key] = append(n.Args[key], values...)
}

// SortedArgKeys returns the node's argument keys in lexicographic order,
// the deterministic iteration order invariant 4 and the reducer's
// dispatch order both require.
func (n *Node) SortedArgKeys() []string {
	keys := make([]string, 0, len(n.Args))
	for k := range n.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsRawString reports whether this node is the internal raw-string
// representation: a call name that is a non-empty run of '<' characters.
func (n *Node) IsRawString() bool {
	if n.Call == "" {
		return false
	}
	for _, r := range n.Call {
		if r != '<' {
			return false
		}
	}
	return true
}

// RawStringDepth returns the bracket depth k for a raw-string node, or 0
// if this node is not one.
func (n *Node) RawStringDepth() int {
	if !n.IsRawString() {
		return 0
	}
	return len([]rune(n.Call))
}

const (
	// MetaWhitespace is the meta-key carrying the whitespace between a
	// call's name/argument groups and its content (§3).
	MetaWhitespace = "=whitespace"
	// MetaWhitespaceAfter is the meta-key carrying trailing whitespace
	// before the closing brace (§3).
	MetaWhitespaceAfter = "=whitespace-after"
)

// IsMetaKey reports whether key is reserved for lexer/parser bookkeeping.
func IsMetaKey(key string) bool {
	return len(key) > 0 && key[0] == '='
}
