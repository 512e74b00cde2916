package node

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func sampleTree() *Node {
	root := New("document")
	item := New("item")
	item.AppendArg(MetaWhitespace, Text(" "))
	item.Content = []Value{Text("hello")}
	root.Content = []Value{Of(item), Text(" tail")}
	return root
}

func TestCopyIsIndependent(t *testing.T) {
	orig := sampleTree()
	dup := Copy(orig)

	dup.Content[0].Child.Content[0] = Text("changed")

	if orig.Content[0].Child.Content[0].Text != "hello" {
		t.Fatalf("mutating the copy affected the original: %q", orig.Content[0].Child.Content[0].Text)
	}
}

func TestCopyStructurallyEqual(t *testing.T) {
	orig := sampleTree()
	dup := Copy(orig)

	if diff := cmp.Diff(orig, dup, cmpopts.IgnoreUnexported(Node{})); diff != "" {
		t.Fatalf("copy differs from original (-orig +copy):\n%s", diff)
	}
}

func TestTextOnlyDiscardsArgsAndCallNames(t *testing.T) {
	tree := sampleTree()
	got := TextOnly(tree)
	want := "hello tail"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIdentityStringRoundTripsSortedArgs(t *testing.T) {
	n := New("let")
	n.AppendArg("who", Text("tajpulo"))
	n.AppendArg("also", Text("x"))
	n.AppendArg(MetaWhitespace, Text(" "))
	n.Content = []Value{Text("Hello")}

	got := IdentityString(n)
	want := "{let[also=x][who=tajpulo] Hello}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestIdentityStringRawString(t *testing.T) {
	n := New("<")
	n.Content = []Value{Text("  println!(\"x\");  ")}

	got := IdentityString(n)
	want := "{<  println!(\"x\");  >}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToStringUsesInstanceOverride(t *testing.T) {
	n := New("document")
	n.Content = []Value{Text("a"), Text("b")}
	n.SetToStringOverride(func(node *Node) (string, error) {
		out := ""
		for _, v := range node.Content {
			out += v.Text
		}
		return out, nil
	})

	got, err := ToString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ab" {
		t.Fatalf("got %q, want %q", got, "ab")
	}
}

func TestRawStringDepth(t *testing.T) {
	n := New("<<<")
	if !n.IsRawString() {
		t.Fatal("expected a run of '<' to be recognized as a raw-string node")
	}
	if n.RawStringDepth() != 3 {
		t.Fatalf("got depth %d, want 3", n.RawStringDepth())
	}
	if New("item").IsRawString() {
		t.Fatal("a regular call name must not be treated as a raw string")
	}
}

func TestGetFieldRejectsUnpublishedAttributes(t *testing.T) {
	n := New("item")
	if _, err := GetField(n, "call"); err != nil {
		t.Fatalf("unexpected error reading published field: %v", err)
	}
	if _, err := GetField(n, "toString"); err == nil {
		t.Fatal("expected an error reading an unpublished field")
	}
}

func TestCBORRoundTrip(t *testing.T) {
	orig := sampleTree()

	data, err := EncodeCBOR(orig)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeCBOR(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if diff := cmp.Diff(orig, decoded, cmpopts.IgnoreUnexported(Node{})); diff != "" {
		t.Fatalf("round trip mismatch (-orig +decoded):\n%s", diff)
	}
}
