// Package bridge is the extension layer's entry point into the core
// (§4.6): the Litua.global/Litua.config surface, the single Register
// entry point for all eight phases, and the diagnostic helpers
// error/log/format.
//
// Grounded on the teacher's validation and secret-handling layers:
// core/types/validation.go's jsonschema.Validator wraps config snapshots
// the same way here, and core/sdk/secret/handle.go's pattern of a small
// wrapped value type with a narrow, explicit API grounds Config's
// read-only snapshot semantics (no raw map handed out for mutation).
package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"

	"github.com/litua-lang/litua/diag"
	"github.com/litua-lang/litua/hook"
	"github.com/litua-lang/litua/node"
)

// Global is the user-controlled, process-wide mapping for one invocation
// (§4.6, §5): the core never inspects its contents, only logs access
// when a caller opts into that by passing a log callback to NewGlobal.
type Global struct {
	mu  sync.Mutex
	log func(string)
	m   map[string]any
}

// NewGlobal creates an empty global store. log, if non-nil, receives a
// diag.Log-formatted line for every read and write.
func NewGlobal(log func(string)) *Global {
	return &Global{m: make(map[string]any), log: log}
}

func (g *Global) Get(key string) any {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := g.m[key]
	if g.log != nil {
		g.log(diag.Log("bridge", fmt.Sprintf("global read %q", key)))
	}
	return v
}

func (g *Global) Set(key string, value any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.m[key] = value
	if g.log != nil {
		g.log(diag.Log("bridge", fmt.Sprintf("global write %q", key)))
	}
}

// Config is a read-only snapshot exposed as Litua.config. It is
// constructed once by validating raw JSON against a schema, grounded on
// the teacher's ValidateParams (core/types/validation.go).
type Config struct {
	apiVersion string
	data       map[string]any
}

// NewConfig validates raw (JSON-encoded config) against schema (a JSON
// Schema document, also JSON-encoded) and, if it passes, returns a
// read-only Config snapshot. apiVersion must be a valid semver string
// (e.g. "v1.2.0"); minSupported gates compatibility the same way.
func NewConfig(raw, schema []byte, apiVersion, minSupported string) (*Config, error) {
	if !semver.IsValid(apiVersion) {
		return nil, fmt.Errorf("config apiVersion %q is not a valid semantic version", apiVersion)
	}
	if minSupported != "" && semver.IsValid(minSupported) && semver.Compare(apiVersion, minSupported) < 0 {
		return nil, fmt.Errorf("config apiVersion %s is older than the minimum supported version %s", apiVersion, minSupported)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("schema load failed: %w", err)
	}
	sch, err := compiler.Compile("config.schema.json")
	if err != nil {
		return nil, fmt.Errorf("schema compile failed: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config is not valid JSON: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	data, _ := doc.(map[string]any)
	return &Config{apiVersion: apiVersion, data: data}, nil
}

func (c *Config) APIVersion() string { return c.apiVersion }

// Get returns a top-level config value and whether it was present.
func (c *Config) Get(key string) (any, bool) {
	v, ok := c.data[key]
	return v, ok
}

// Bridge wires a hook registry, a global store, and a config snapshot
// together into the surface the script layer consumes (§4.6).
type Bridge struct {
	Hooks  *hook.Registry
	Global *Global
	Config *Config
}

// New creates a bridge around an existing hook registry.
func New(hooks *hook.Registry, global *Global, cfg *Config) *Bridge {
	return &Bridge{Hooks: hooks, Global: global, Config: cfg}
}

// phaseNames is the fuzzy-match candidate set for UnknownPhase "did you
// mean" suggestions.
var phaseNames = []string{
	string(hook.OnSetup), string(hook.ModifyInitialString), string(hook.ReadNewNode),
	string(hook.ModifyNode), string(hook.ReadModifiedNode), string(hook.ConvertNodeToString),
	string(hook.ModifyFinalString), string(hook.OnTeardown),
}

// Register is the single entry point backing the eight per-phase
// registration functions of §4.6; source is the caller's attributed
// "file:line in scope" string. On an unknown phase, the error's Fix
// field carries a fuzzy-matched "did you mean" suggestion, grounded on
// the teacher's GetErrorSuggestions (pkgs/parser/errors.go).
func (b *Bridge) Register(phase string, filter string, impl any, source string) error {
	err := b.Hooks.Register(hook.Phase(phase), filter, impl, source)
	if d, ok := err.(*diag.Diagnostic); ok && d.Kind == diag.UnknownPhase {
		if suggestion := suggestPhase(phase); suggestion != "" {
			d.Fix = fmt.Sprintf("did you mean %q?", suggestion)
		}
	}
	return err
}

func suggestPhase(name string) string {
	best, bestDist := "", -1
	for _, candidate := range phaseNames {
		if d := fuzzy.LevenshteinDistance(name, candidate); bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// Error constructs a user-raised diagnostic (the script layer's error()
// helper, §4.6).
func (b *Bridge) Error(message string, details map[string]string) error {
	d := diag.New(diag.HookReturnShape, message)
	if ctx, ok := details["context"]; ok {
		d.Context = ctx
	}
	if fix, ok := details["fix"]; ok {
		d.Fix = fix
	}
	return d
}

// Log renders a component log line (the script layer's log() helper).
func (b *Bridge) Log(component, message string) string {
	return diag.Log(component, message)
}

// Format implements the script layer's format(template, ...args) helper:
// positional substitutions %1..%9, more than nine arguments is fatal
// (§4.6, FormatOverflow).
func (b *Bridge) Format(template string, args ...any) (string, error) {
	if len(args) > 9 {
		return "", diag.New(diag.FormatOverflow, fmt.Sprintf("format received %d arguments, at most 9 positional substitutions are supported", len(args)))
	}

	var out strings.Builder
	runes := []rune(template)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '%' && i+1 < len(runes) && runes[i+1] >= '1' && runes[i+1] <= '9' {
			idx := int(runes[i+1] - '1')
			if idx < len(args) {
				out.WriteString(stringifyArg(args[idx]))
				i++
				continue
			}
		}
		out.WriteRune(r)
	}
	return out.String(), nil
}

// stringifyArg renders a format() argument per §4.6: text values are
// single-quoted with their single quotes backslash-escaped; mappings
// render as "{ [k] = v, ... }"; nodes defer to identity serialization.
func stringifyArg(v any) string {
	switch x := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(x, "'", "\\'") + "'"
	case map[string]any:
		return stringifyMap(x)
	case *node.Node:
		s, err := node.ToString(x)
		if err != nil {
			return ""
		}
		return s
	default:
		return fmt.Sprintf("%v", x)
	}
}

func stringifyMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{ ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "[%s] = %s", k, stringifyArg(m[k]))
	}
	b.WriteString(" }")
	return b.String()
}
