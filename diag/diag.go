// Package diag implements litua's structured diagnostic records: the
// `message`/`context`/`expected`/`actual`/`fix`/`source` shape of §6
// "Diagnostic format" and the `ERROR:`/`LOG[component]:` renderings, plus
// the error-kind taxonomy of §7.
//
// Grounded on the teacher's ParseError/FormatErrors design
// (pkgs/parser/errors.go): a typed record carrying a human-context
// message plus a dedicated renderer, rather than bare fmt.Errorf strings.
package diag

import (
	"fmt"
	"strings"
)

// Kind enumerates the diagnostic taxonomy of §7.
type Kind int

const (
	LexError Kind = iota
	ParseError
	UnknownPhase
	InvalidFilter
	InvalidHook
	DuplicateConverter
	HookReturnShape
	NodeAccess
	FormatOverflow
	RawStringBoundary
)

var kindNames = [...]string{
	LexError:           "LexError",
	ParseError:         "ParseError",
	UnknownPhase:       "UnknownPhase",
	InvalidFilter:      "InvalidFilter",
	InvalidHook:        "InvalidHook",
	DuplicateConverter: "DuplicateConverter",
	HookReturnShape:    "HookReturnShape",
	NodeAccess:         "NodeAccess",
	FormatOverflow:     "FormatOverflow",
	RawStringBoundary:  "RawStringBoundary",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Diagnostic is a structured error record (§6).
type Diagnostic struct {
	Kind     Kind
	Message  string
	Context  string
	Expected string
	Actual   string
	Fix      string
	Source   string
}

// New builds a bare diagnostic carrying only a kind and message; the
// optional fields are filled in with the With* builders.
func New(kind Kind, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: message}
}

func (d *Diagnostic) WithContext(s string) *Diagnostic  { d.Context = s; return d }
func (d *Diagnostic) WithExpected(s string) *Diagnostic { d.Expected = s; return d }
func (d *Diagnostic) WithActual(s string) *Diagnostic   { d.Actual = s; return d }
func (d *Diagnostic) WithFix(s string) *Diagnostic      { d.Fix = s; return d }
func (d *Diagnostic) WithSource(s string) *Diagnostic   { d.Source = s; return d }

// Error satisfies the error interface with the multi-line ERROR: block.
func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ERROR: %s", d.Message)
	if d.Context != "" {
		fmt.Fprintf(&b, "\n  context:  %s", d.Context)
	}
	if d.Expected != "" {
		fmt.Fprintf(&b, "\n  expected: %s", d.Expected)
	}
	if d.Actual != "" {
		fmt.Fprintf(&b, "\n  actual:   %s", d.Actual)
	}
	if d.Fix != "" {
		fmt.Fprintf(&b, "\n  fix:      %s", d.Fix)
	}
	if d.Source != "" {
		fmt.Fprintf(&b, "\n  source:   %s", d.Source)
	}
	return b.String()
}

// Log renders a component log line in the LOG[<component>]: <text> form.
func Log(component, message string) string {
	return fmt.Sprintf("LOG[%s]: %s", component, message)
}
