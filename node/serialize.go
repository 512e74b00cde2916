package node

import "strings"

// IdentityString reserializes n to a form that lexes back to a
// structurally equivalent node (§4.3). Argument iteration is sorted
// lexicographically for determinism (invariant 4); a key with multiple
// values emits one '[k=v]' group per value so re-parsing reconstructs the
// same ordered sequence under that key.
func IdentityString(n *Node) string {
	var b strings.Builder
	writeIdentity(n, &b)
	return b.String()
}

func writeIdentity(n *Node, b *strings.Builder) {
	if n.IsRawString() {
		b.WriteByte('{')
		b.WriteString(n.Call)
		for _, v := range n.Content {
			writeValue(v, b)
		}
		b.WriteString(strings.Repeat(">", n.RawStringDepth()))
		b.WriteByte('}')
		return
	}

	b.WriteByte('{')
	b.WriteString(n.Call)

	for _, key := range n.SortedArgKeys() {
		if IsMetaKey(key) {
			continue
		}
		for _, v := range n.Args[key] {
			b.WriteByte('[')
			b.WriteString(key)
			b.WriteByte('=')
			writeValue(v, b)
			b.WriteByte(']')
		}
	}

	ws, hasWS := metaText(n, MetaWhitespace)
	trailing, hasTrailing := metaText(n, MetaWhitespaceAfter)

	if hasWS {
		b.WriteString(ws)
	} else if len(n.Content) > 0 {
		// A node built programmatically (e.g. by a mutator hook) may omit
		// the whitespace meta-key; the grammar requires at least one
		// whitespace rune before content, so supply a minimal separator.
		b.WriteByte(' ')
	}

	for _, v := range n.Content {
		writeValue(v, b)
	}

	if hasTrailing {
		b.WriteString(trailing)
	}

	b.WriteByte('}')
}

func writeValue(v Value, b *strings.Builder) {
	if v.IsNode {
		writeIdentity(v.Child, b)
	} else {
		b.WriteString(v.Text)
	}
}

func metaText(n *Node, key string) (string, bool) {
	vs, ok := n.Args[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0].Text, true
}

// ToString dispatches to IdentityString unless n carries an
// instance-level override (§4.3), which the pipeline uses to give the
// synthetic document root a flattened, wrapper-free string form.
func ToString(n *Node) (string, error) {
	if n.toString != nil {
		return n.toString(n)
	}
	return IdentityString(n), nil
}
