package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litua-lang/litua/hook"
	"github.com/litua-lang/litua/node"
)

func converter(fn func(*node.Node, map[string][]string, []string) (string, error)) any {
	return fn
}

// TestEnumerationScenario is worked scenario 1 (§8): each "item" call is
// converted to "(n)" with n incrementing across the document; the source's
// own leading space before each letter supplies the separating space, so
// the converter itself emits none.
func TestEnumerationScenario(t *testing.T) {
	h := hook.New()
	n := 0
	require.NoError(t, h.Register(hook.OnSetup, hook.EmptyFilter, func() error { n = 0; return nil }, "t"))
	require.NoError(t, h.Register(hook.ConvertNodeToString, "item", converter(func(_ *node.Node, _ map[string][]string, _ []string) (string, error) {
		n++
		return fmt.Sprintf("(%d)", n), nil
	}), "t"))

	p := New(h, Config{})
	res, err := p.Run("{item} a{item} b{item} c")
	require.NoError(t, err)
	assert.Equal(t, "(1) a(2) b(3) c", res.Output)
}

// TestEscapeShortCircuitScenario is worked scenario 3 (§8): the reserved
// call names reduce to literal braces independent of any hook.
func TestEscapeShortCircuitScenario(t *testing.T) {
	p := New(hook.New(), Config{})
	res, err := p.Run("a{left-curly-brace}b{right-curly-brace}c")
	require.NoError(t, err)
	assert.Equal(t, "a{b}c", res.Output)
}

// TestRawStringScenario is worked scenario 4 (§8).
func TestRawStringScenario(t *testing.T) {
	h := hook.New()
	require.NoError(t, h.Register(hook.ConvertNodeToString, "code", converter(func(n *node.Node, _ map[string][]string, _ []string) (string, error) {
		return node.TextOnly(n), nil
	}), "t"))

	p := New(h, Config{})
	res, err := p.Run(`{code {< println!("{x}"); >}}`)
	require.NoError(t, err)
	assert.Equal(t, ` println!("{x}"); `, res.Output)
}

func TestReplacementScenario(t *testing.T) {
	h := hook.New()
	require.NoError(t, h.Register(hook.ModifyNode, "let", func(n *node.Node, depth int, filter string) (MutatorResult, error) {
		for _, key := range n.SortedArgKeys() {
			if node.IsMetaKey(key) {
				continue
			}
			concatenated := ""
			for _, v := range n.Args[key] {
				if !v.IsNode {
					concatenated += v.Text
				}
			}
			_ = h.Register(hook.ConvertNodeToString, key, converter(func(*node.Node, map[string][]string, []string) (string, error) {
				return concatenated, nil
			}), "t")
		}
		return MutatorResult{IsText: true, Text: ""}, nil
	}, "t"))

	// The replacement itself happens through node structure: "who" appears
	// later in the document as its own call.
	p := New(h, Config{})
	res, err := p.Run("{let[who=tajpulo]}Hello {who}")
	require.NoError(t, err)
	assert.Equal(t, "Hello tajpulo", res.Output)
}

func TestTeardownAlwaysRuns(t *testing.T) {
	h := hook.New()
	teardownRan := false
	require.NoError(t, h.Register(hook.OnTeardown, hook.EmptyFilter, func() error {
		teardownRan = true
		return nil
	}, "t"))
	require.NoError(t, h.Register(hook.ModifyNode, hook.EmptyFilter, func(*node.Node, int, string) (MutatorResult, error) {
		return MutatorResult{}, errors.New("boom")
	}, "t"))

	p := New(h, Config{})
	res, err := p.Run("{item}")
	require.Error(t, err)
	assert.True(t, teardownRan, "on_teardown must run even though phase 4 failed")
	assert.NotNil(t, res)
}

// TestNestedXMLScenario is worked scenario 5 (§8): an empty-filter
// converter builds bracketed markup using four substitution bytes standing
// in for '<', '>', '/', and the escaped '&' entity, so that a parent's
// blind "escape literal &" pass over its own reduced content never
// re-touches a child's already-produced output (the child left no literal
// '&' behind, only the substitution byte). A converter scoped to
// "document" does the final byte-to-text restoration.
func TestNestedXMLScenario(t *testing.T) {
	const (
		openP  = "\x01"
		closeP = "\x02"
		slashP = "\x03"
		ampP   = "\x04"
	)

	h := hook.New()
	require.NoError(t, h.Register(hook.ConvertNodeToString, hook.EmptyFilter, converter(func(n *node.Node, _ map[string][]string, content []string) (string, error) {
		var body strings.Builder
		for _, s := range content {
			body.WriteString(strings.ReplaceAll(s, "&", ampP))
		}
		return openP + n.Call + closeP + body.String() + openP + slashP + n.Call + closeP, nil
	}), "t"))
	require.NoError(t, h.Register(hook.ConvertNodeToString, "document", converter(func(_ *node.Node, _ map[string][]string, content []string) (string, error) {
		out := strings.Join(content, "")
		out = strings.ReplaceAll(out, openP, "<")
		out = strings.ReplaceAll(out, closeP, ">")
		out = strings.ReplaceAll(out, slashP, "/")
		out = strings.ReplaceAll(out, ampP, "&amp;")
		return out, nil
	}), "t"))

	p := New(h, Config{})
	res, err := p.Run("{main {p Hello & World}}")
	require.NoError(t, err)
	assert.Equal(t, "<main><p>Hello &amp; World</p></main>", res.Output)
}

func TestConverterUniquenessFailsDeterministically(t *testing.T) {
	h := hook.New()
	impl := converter(func(*node.Node, map[string][]string, []string) (string, error) { return "", nil })
	require.NoError(t, h.Register(hook.ConvertNodeToString, hook.EmptyFilter, impl, "first"))
	assert.Error(t, h.Register(hook.ConvertNodeToString, hook.EmptyFilter, impl, "second"))
}
