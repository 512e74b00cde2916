package node

// ReducedView returns a node carrying n's call name and per-instance
// tostring override (if any), but with Args/Content replaced by their
// already-reduced string forms, each wrapped as a literal text value.
//
// The transform pipeline's reducer pass (§4.5 phase 6) computes
// reducedArgs/reducedContent by recursively reducing every child first;
// this view lets the default identity-serialization path, and a root's
// flattening tostring override, read what the pipeline already computed
// instead of re-walking (and silently re-converting) the original
// subtree, which would drop any converter hook or reserved short-circuit
// that matched a descendant whose parent has no converter of its own.
func ReducedView(n *Node, args map[string][]string, content []string) *Node {
	out := &Node{Call: n.Call, toString: n.toString, Args: map[string][]Value{}}
	for k, vs := range args {
		vals := make([]Value, len(vs))
		for i, s := range vs {
			vals[i] = Text(s)
		}
		out.Args[k] = vals
	}
	out.Content = make([]Value, len(content))
	for i, s := range content {
		out.Content[i] = Text(s)
	}
	return out
}
