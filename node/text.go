package node

import "strings"

// TextOnly concatenates all text in n's content, recursing into child
// nodes, and discarding call names, arguments, and whitespace meta (§4.3).
// For a raw-string node, Content holds the single literal span between its
// delimiters (including that span's own boundary whitespace, per the data
// model), so TextOnly naturally reproduces the raw string verbatim.
func TextOnly(n *Node) string {
	var b strings.Builder
	writeTextOnly(n, &b)
	return b.String()
}

func writeTextOnly(n *Node, b *strings.Builder) {
	for _, v := range n.Content {
		if v.IsNode {
			writeTextOnly(v.Child, b)
		} else {
			b.WriteString(v.Text)
		}
	}
}
