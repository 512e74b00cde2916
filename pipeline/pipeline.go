// Package pipeline runs litua's eight-phase reduction of a parsed tree to
// a string (§4.5): on_setup, modify_initial_string, read_new_node,
// modify_node, read_modified_node, convert_node_to_string,
// modify_final_string, on_teardown.
//
// Grounded on the teacher's run-loop discipline in cli/main.go: compute
// the outcome, always run the teardown/restore step before reporting it,
// and fold any teardown failure into the reported result rather than
// losing it. runtime/executor's Config{Debug}/Result{Duration, ...}
// shape grounds the Config/Result types below.
package pipeline

import (
	"fmt"
	"time"

	"github.com/litua-lang/litua/diag"
	"github.com/litua-lang/litua/hook"
	"github.com/litua-lang/litua/lexer"
	"github.com/litua-lang/litua/node"
	"github.com/litua-lang/litua/parser"
)

// DebugLevel is the verbosity setting carried in Config. Run does not
// read it; the pipeline emits no progress log lines at any level.
type DebugLevel int

const (
	DebugOff DebugLevel = iota
	DebugBasic
	DebugDetailed
)

// Config configures one pipeline run.
type Config struct {
	Debug DebugLevel
	// Log is a sink for diag.Log-formatted lines; New replaces a nil Log
	// with a no-op. Run does not call it.
	Log func(string)
}

// Result summarizes a completed run.
type Result struct {
	Output       string
	Duration     time.Duration
	TeardownErrs []error
}

// Pipeline owns a hook registry and runs the eight phases over one
// document per invocation (§5: "no concurrency across documents inside
// one invocation").
type Pipeline struct {
	Hooks  *hook.Registry
	Config Config
}

// New creates a pipeline bound to an existing hook registry (typically
// populated beforehand by the extension bridge's script-registration
// functions).
func New(hooks *hook.Registry, cfg Config) *Pipeline {
	if cfg.Log == nil {
		cfg.Log = func(string) {}
	}
	return &Pipeline{Hooks: hooks, Config: cfg}
}

// Run executes all eight phases over src and returns the final text.
// Phase 8 (on_teardown) always runs, even if phases 3-7 abort; its
// errors are attached to the returned Result/error rather than
// discarded (§4.5, §7 "Propagation").
func (p *Pipeline) Run(src string) (*Result, error) {
	start := time.Now()
	res := &Result{}

	primaryErr := p.runPhases1Through7(src, res)

	teardownErrs := p.runPhase(hook.OnTeardown, func(r hook.Record) error {
		return callVoid(r)
	})
	res.TeardownErrs = teardownErrs

	res.Duration = time.Since(start)

	if primaryErr != nil {
		return res, primaryErr
	}
	if len(teardownErrs) > 0 {
		return res, teardownErrs[0]
	}
	return res, nil
}

func (p *Pipeline) runPhases1Through7(src string, res *Result) error {
	if errs := p.runPhase(hook.OnSetup, func(r hook.Record) error {
		return callVoid(r)
	}); len(errs) > 0 {
		return errs[0]
	}

	text, err := p.modifyInitialString(src)
	if err != nil {
		return err
	}

	tokens, err := lexer.New([]byte(text)).Tokenize()
	if err != nil {
		return diag.New(diag.LexError, err.Error())
	}

	root, err := parser.Parse(tokens)
	if err != nil {
		return diag.New(diag.ParseError, err.Error())
	}

	if err := p.readPass(hook.ReadNewNode, root, 0); err != nil {
		return err
	}

	rootValue, err := p.mutatePass(node.Of(root), 0)
	if err != nil {
		return err
	}
	if !rootValue.IsNode {
		// The document root itself cannot be replaced with text; a
		// modify_node hook filtered on "document" or the empty filter
		// that returns text here is a contract violation.
		return diag.New(diag.HookReturnShape, "a modify_node hook replaced the document root with text")
	}
	root = rootValue.Child

	if err := p.readPass(hook.ReadModifiedNode, root, 0); err != nil {
		return err
	}

	installRootOverride(root)
	out, err := p.reducePass(root, 0)
	if err != nil {
		return err
	}

	final, err := p.modifyFinalString(out)
	if err != nil {
		return err
	}
	res.Output = final
	return nil
}

// installRootOverride gives the synthetic document root a tostring that
// concatenates its children's string forms, so the final output has no
// outer "{document ...}" wrapper (§4.5 "Root serialization", §9).
func installRootOverride(root *node.Node) {
	root.SetToStringOverride(func(n *node.Node) (string, error) {
		var out string
		for _, v := range n.Content {
			if v.IsNode {
				s, err := node.ToString(v.Child)
				if err != nil {
					return "", err
				}
				out += s
			} else {
				out += v.Text
			}
		}
		return out, nil
	})
}

func (p *Pipeline) modifyInitialString(text string) (string, error) {
	for _, r := range p.Hooks.Dispatch(hook.ModifyInitialString, hook.EmptyFilter) {
		next, err := callStringToString(r, text)
		if err != nil {
			return "", err
		}
		text = next
	}
	return text, nil
}

func (p *Pipeline) modifyFinalString(text string) (string, error) {
	for _, r := range p.Hooks.Dispatch(hook.ModifyFinalString, hook.EmptyFilter) {
		next, err := callStringToString(r, text)
		if err != nil {
			return "", err
		}
		text = next
	}
	return text, nil
}

// readPass runs a reader phase over n and its descendants, pre-order,
// handing each hook a deep copy so mutation inside a reader cannot reach
// the canonical tree (§5 "Shared resource policy").
func (p *Pipeline) readPass(phase hook.Phase, n *node.Node, depth int) error {
	for _, r := range p.Hooks.Dispatch(phase, n.Call) {
		snapshot := node.Copy(n)
		if err := callReader(r, snapshot, depth); err != nil {
			return err
		}
	}
	for _, key := range n.SortedArgKeys() {
		for _, v := range n.Args[key] {
			if v.IsNode {
				if err := p.readPass(phase, v.Child, depth+1); err != nil {
					return err
				}
			}
		}
	}
	for _, v := range n.Content {
		if v.IsNode {
			if err := p.readPass(phase, v.Child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// mutatePass runs modify_node over v and its descendants, pre-order,
// handing hooks the live node. A hook's returned node or text replaces v
// wholesale (§4.5 phase 4, §9 "Replace-with-text"); once a hook turns a
// node into text it is no longer a call, so no further modify_node hooks
// or recursion into its former content apply.
func (p *Pipeline) mutatePass(v node.Value, depth int) (node.Value, error) {
	if !v.IsNode {
		return v, nil
	}
	current := v.Child

	for _, r := range p.Hooks.Dispatch(hook.ModifyNode, current.Call) {
		replacement, err := callMutator(r, current, depth, r.Filter)
		if err != nil {
			return node.Value{}, err
		}
		if replacement.IsNode {
			current = replacement.Child
			continue
		}
		return replacement, nil
	}

	for _, key := range current.SortedArgKeys() {
		vs := current.Args[key]
		for i, av := range vs {
			next, err := p.mutatePass(av, depth+1)
			if err != nil {
				return node.Value{}, err
			}
			vs[i] = next
		}
		current.Args[key] = vs
	}
	for i, cv := range current.Content {
		next, err := p.mutatePass(cv, depth+1)
		if err != nil {
			return node.Value{}, err
		}
		current.Content[i] = next
	}
	return node.Of(current), nil
}

// reducePass runs convert_node_to_string over n and its descendants,
// post-order: args and content are reduced to strings first (depth+1),
// then a single converter hook (or identity serialization) reduces n
// itself (§4.5 phase 6). The two reserved short-circuits are checked
// before any hook is consulted.
func (p *Pipeline) reducePass(n *node.Node, depth int) (string, error) {
	if n.Call == "left-curly-brace" {
		return "{", nil
	}
	if n.Call == "right-curly-brace" {
		return "}", nil
	}

	reducedArgs := make(map[string][]string, len(n.Args))
	for _, key := range n.SortedArgKeys() {
		for _, v := range n.Args[key] {
			s, err := p.reduceValue(v, depth+1)
			if err != nil {
				return "", err
			}
			reducedArgs[key] = append(reducedArgs[key], s)
		}
	}
	reducedContent := make([]string, 0, len(n.Content))
	for _, v := range n.Content {
		s, err := p.reduceValue(v, depth+1)
		if err != nil {
			return "", err
		}
		reducedContent = append(reducedContent, s)
	}

	if r, ok := p.Hooks.Converter(n.Call); ok {
		return callConverter(r, n, reducedArgs, reducedContent)
	}
	return node.ToString(node.ReducedView(n, reducedArgs, reducedContent))
}

func (p *Pipeline) reduceValue(v node.Value, depth int) (string, error) {
	if v.IsNode {
		return p.reducePass(v.Child, depth)
	}
	return v.Text, nil
}

// runPhase dispatches the no-argument on_setup/on_teardown contract over
// the empty filter (these phases fire once and are not per-node).
func (p *Pipeline) runPhase(phase hook.Phase, call func(hook.Record) error) []error {
	var errs []error
	for _, r := range p.Hooks.Dispatch(phase, hook.EmptyFilter) {
		if err := call(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func callVoid(r hook.Record) error {
	fn, ok := r.Impl.(func() error)
	if !ok {
		return diag.New(diag.HookReturnShape, fmt.Sprintf("hook registered at %s must take no arguments and return only an error", r.Source))
	}
	return fn()
}

func callStringToString(r hook.Record, text string) (string, error) {
	fn, ok := r.Impl.(func(string) (string, error))
	if !ok {
		return "", diag.New(diag.HookReturnShape, fmt.Sprintf("hook registered at %s must take a string and return (string, error)", r.Source))
	}
	return fn(text)
}

func callReader(r hook.Record, n *node.Node, depth int) error {
	fn, ok := r.Impl.(func(*node.Node, int) error)
	if !ok {
		return diag.New(diag.HookReturnShape, fmt.Sprintf("hook registered at %s must take (*node.Node, depth int) and return error", r.Source))
	}
	return fn(n, depth)
}

// MutatorResult is what a modify_node hook returns: either a replacement
// node or replacement text, tagged the same way a content/arg slot is
// (§9 "Replace-with-text").
type MutatorResult struct {
	IsText bool
	Text   string
	Node   *node.Node
}

func callMutator(r hook.Record, n *node.Node, depth int, filter string) (node.Value, error) {
	fn, ok := r.Impl.(func(*node.Node, int, string) (MutatorResult, error))
	if !ok {
		return node.Value{}, diag.New(diag.HookReturnShape, fmt.Sprintf("hook registered at %s must take (*node.Node, depth int, filter string) and return (pipeline.MutatorResult, error)", r.Source))
	}
	result, err := fn(n, depth, filter)
	if err != nil {
		return node.Value{}, err
	}
	if result.IsText {
		return node.Text(result.Text), nil
	}
	if result.Node == nil {
		return node.Value{}, diag.New(diag.HookReturnShape, fmt.Sprintf("hook registered at %s returned neither text nor a node", r.Source))
	}
	return node.Of(result.Node), nil
}

func callConverter(r hook.Record, n *node.Node, args map[string][]string, content []string) (string, error) {
	fn, ok := r.Impl.(func(*node.Node, map[string][]string, []string) (string, error))
	if !ok {
		return "", diag.New(diag.HookReturnShape, fmt.Sprintf("converter registered at %s must take (*node.Node, args, content) and return (string, error)", r.Source))
	}
	return fn(n, args, content)
}
