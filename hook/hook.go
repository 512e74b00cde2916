// Package hook implements litua's per-phase, per-filter hook registry
// (§4.4): a typed store keyed on (phase, filter) holding ordered hook
// records, with registration-time validation and dispatch-order lookup.
//
// Grounded on the teacher's decorator registry (core/decorator/registry.go):
// a sync.RWMutex-guarded map behind package-level Register/Global
// functions, following the database/sql driver registration pattern. Role
// auto-inference from implemented interfaces does not apply here — litua
// hooks are plain callables, not interface-implementing values — so
// Register takes an explicit phase instead of inferring one.
package hook

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"sync"
	"unicode"

	"golang.org/x/crypto/blake2b"

	"github.com/litua-lang/litua/diag"
)

// Phase names the eight pipeline stages a hook can register against (§4.5).
type Phase string

const (
	OnSetup             Phase = "on_setup"
	ModifyInitialString Phase = "modify_initial_string"
	ReadNewNode         Phase = "read_new_node"
	ModifyNode          Phase = "modify_node"
	ReadModifiedNode    Phase = "read_modified_node"
	ConvertNodeToString Phase = "convert_node_to_string"
	ModifyFinalString   Phase = "modify_final_string"
	OnTeardown          Phase = "on_teardown"
)

var knownPhases = map[Phase]bool{
	OnSetup:             true,
	ModifyInitialString: true,
	ReadNewNode:         true,
	ModifyNode:          true,
	ReadModifiedNode:    true,
	ConvertNodeToString: true,
	ModifyFinalString:   true,
	OnTeardown:          true,
}

// EmptyFilter matches every call (§4.4).
const EmptyFilter = ""

// Record is a single registered hook: its implementation, the source site
// that registered it (for diagnostics), and a content fingerprint of that
// source string (the first 16 hex digits of its BLAKE2b-256 digest; equal
// source strings give equal fingerprints).
type Record struct {
	Phase       Phase
	Filter      string
	Impl        any
	Source      string
	Fingerprint string
}

// Registry holds all hooks registered during one invocation.
type Registry struct {
	mu    sync.RWMutex
	hooks map[Phase]map[string][]Record
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{hooks: make(map[Phase]map[string][]Record)}
}

// Register validates and stores a hook (§4.4's registration contract).
// source is a human-readable "file:line in scope" string attributed to
// the caller; it is stored on the Record together with its BLAKE2b-256
// fingerprint.
func (r *Registry) Register(phase Phase, filter string, impl any, source string) error {
	if !knownPhases[phase] {
		return diag.New(diag.UnknownPhase, fmt.Sprintf("unknown phase %q", phase)).
			WithExpected("one of on_setup, modify_initial_string, read_new_node, modify_node, read_modified_node, convert_node_to_string, modify_final_string, on_teardown").
			WithSource(source)
	}
	if filter != EmptyFilter && !validFilter(filter) {
		return diag.New(diag.InvalidFilter, fmt.Sprintf("invalid filter %q", filter)).
			WithExpected("empty string, or a call name with no whitespace and no '['").
			WithSource(source)
	}
	if impl == nil || !isCallable(impl) {
		return diag.New(diag.InvalidHook, "hook implementation is not callable").
			WithSource(source)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if phase == ConvertNodeToString && len(r.hooks[phase][filter]) > 0 {
		return diag.New(diag.DuplicateConverter, fmt.Sprintf("a converter is already registered for filter %q", displayFilter(filter))).
			WithContext("convert_node_to_string permits at most one hook per filter").
			WithSource(source)
	}

	if r.hooks[phase] == nil {
		r.hooks[phase] = make(map[string][]Record)
	}
	r.hooks[phase][filter] = append(r.hooks[phase][filter], Record{
		Phase:       phase,
		Filter:      filter,
		Impl:        impl,
		Source:      source,
		Fingerprint: fingerprint(source),
	})
	return nil
}

// Dispatch returns the hooks that fire for a node with the given call
// name in the given phase, in dispatch order: the specific-filter list
// first, then the empty-filter list, each preserving registration order
// (§4.4, §5 "Ordering guarantees").
func (r *Registry) Dispatch(phase Phase, call string) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byFilter := r.hooks[phase]
	if byFilter == nil {
		return nil
	}
	out := make([]Record, 0, len(byFilter[call])+len(byFilter[EmptyFilter]))
	out = append(out, byFilter[call]...)
	if call != EmptyFilter {
		out = append(out, byFilter[EmptyFilter]...)
	}
	return out
}

// Converter returns the single convert_node_to_string hook matching call,
// using the specific-filter-then-empty-filter contract, or ok=false if
// none is registered.
func (r *Registry) Converter(call string) (Record, bool) {
	hooks := r.Dispatch(ConvertNodeToString, call)
	if len(hooks) == 0 {
		return Record{}, false
	}
	return hooks[0], true
}

func validFilter(filter string) bool {
	for _, ch := range filter {
		if unicode.IsSpace(ch) || ch == '[' {
			return false
		}
	}
	return true
}

func displayFilter(filter string) string {
	if filter == EmptyFilter {
		return "(empty)"
	}
	return filter
}

func isCallable(impl any) bool {
	return reflect.ValueOf(impl).Kind() == reflect.Func
}

func fingerprint(source string) string {
	sum := blake2b.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])[:16]
}
