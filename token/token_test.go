package token

import "testing"

func TestTypeStringKnownAndUnknown(t *testing.T) {
	if CallOpen.String() != "CALL_OPEN" {
		t.Fatalf("got %q, want CALL_OPEN", CallOpen.String())
	}
	if got := Type(999).String(); got != "Type(999)" {
		t.Fatalf("got %q, want Type(999)", got)
	}
}

func TestPosition(t *testing.T) {
	tok := Token{Line: 3, Column: 7}
	if got := tok.Position(); got != "3:7" {
		t.Fatalf("got %q, want 3:7", got)
	}
}

func TestStringIncludesDepthForRawString(t *testing.T) {
	tok := Token{Type: RawString, Depth: 2, Text: "x"}
	got := tok.String()
	if want := `RAW_STRING(2)<0:"x">`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
