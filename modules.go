// modules.go — host bridge and module resolution.
//
// OVERVIEW
// --------
// The interpreter consumes the embedding application through one narrow Host
// interface: an output sink, an input source, module resolution, and deferred
// type construction. `import a.b.c` asks the host to resolve the dotted name;
// the host answers with either a live value (kind object) or an opaque
// locator (kind reference) that it then loads on request. The interpreter
// binds the outcome under the name's leading dotted segment.
//
// StdHost is the default bridge:
//
//   - Print writes stringified values, space-joined, to an io.Writer.
//   - Input prompts on the writer and reads one line from an io.Reader.
//   - Resolution consults a registry of pre-installed module values first
//     (the builtin modules live there, and a canvas host installs its
//     drawing API the same way), then falls back to the
//     filesystem: the dotted name maps to a path under the configured search
//     roots, with ".gil" appended when the name lacks an extension.
//   - Load executes a referenced file in a fresh environment (child of the
//     loading interpreter's Core) and snapshots its ordered top-level
//     bindings into an object. Cycles are detected via a load stack and
//     reported as an `a -> b -> a` chain. Successful loads are cached by
//     canonical absolute path; failures are never cached.
//
// Host-side failures carry context via github.com/pkg/errors and surface to
// scripts as RuntimeError{Kind: ImportResolution}.
package gilgamesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ResolutionKind discriminates how a module name was resolved.
type ResolutionKind int

const (
	ResolveObject    ResolutionKind = iota // Value is ready to bind
	ResolveReference                       // Ref must be passed to Load
)

// Resolution is the host's answer to a module-name lookup.
type Resolution struct {
	Kind  ResolutionKind
	Value Value  // valid when Kind == ResolveObject
	Ref   string // valid when Kind == ResolveReference
}

// Host is the bridge the interpreter requires from its embedder.
type Host interface {
	// Print receives already-evaluated values; stringification is the
	// host's choice (StdHost uses Stringify).
	Print(values ...Value)
	// Input prompts the user and returns one value. May suspend.
	Input(prompt string) (Value, error)
	// Resolve turns a textual module name into a loadable unit.
	Resolve(name string) (Resolution, error)
	// Load turns a reference-kind locator into a value.
	Load(ref string) (Value, error)
	// Construct consumes a deferred type construction (Color, Point, ...).
	Construct(name string, args []Value) (Value, error)
}

// StdHost is the standard bridge implementation.
type StdHost struct {
	Out io.Writer
	In  io.Reader

	// SearchPaths are the filesystem roots tried, in order, for module
	// names not present in the registry.
	SearchPaths []string

	registry  map[string]Value
	cache     map[string]Value // canonical path → loaded module
	loadStack []string         // cycle detection

	reader *bufio.Reader
}

// NewStdHost returns a host wired to stdout/stdin with the builtin modules
// (random, time, strings, json) registered and the working directory as the
// search root.
func NewStdHost() *StdHost {
	h := &StdHost{
		Out:         os.Stdout,
		In:          os.Stdin,
		SearchPaths: []string{"."},
		registry:    map[string]Value{},
		cache:       map[string]Value{},
	}
	h.RegisterModule("random", randomModule())
	h.RegisterModule("time", timeModule())
	h.RegisterModule("strings", stringsModule())
	h.RegisterModule("json", jsonModule())
	return h
}

// RegisterModule installs a live value under a module name; imports of that
// name resolve to it directly (kind object).
func (h *StdHost) RegisterModule(name string, v Value) {
	h.registry[name] = v
}

func (h *StdHost) Print(values ...Value) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Stringify(v)
	}
	fmt.Fprintln(h.Out, strings.Join(parts, " "))
}

func (h *StdHost) Input(prompt string) (Value, error) {
	if prompt != "" {
		fmt.Fprint(h.Out, prompt)
	}
	if h.reader == nil {
		h.reader = bufio.NewReader(h.In)
	}
	line, err := h.reader.ReadString('\n')
	if err != nil && line == "" {
		return Null, errors.Wrap(err, "input")
	}
	return Str(strings.TrimRight(line, "\r\n")), nil
}

// Resolve checks the registry first, then maps the dotted name onto the
// filesystem search roots. A trailing ".gil" segment in the written name is
// tolerated (`import shapes.circle.gil`).
func (h *StdHost) Resolve(name string) (Resolution, error) {
	if v, ok := h.registry[name]; ok {
		return Resolution{Kind: ResolveObject, Value: v}, nil
	}
	// Also allow a registered leading segment: `import random.extras` style.
	if v, ok := h.registry[leadingSegment(name)]; ok {
		return Resolution{Kind: ResolveObject, Value: v}, nil
	}

	rel := dottedToPath(name)
	for _, root := range h.SearchPaths {
		p := filepath.Join(root, rel)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			abs, err := filepath.Abs(p)
			if err != nil {
				return Resolution{}, errors.Wrapf(err, "resolving %q", name)
			}
			return Resolution{Kind: ResolveReference, Ref: abs}, nil
		}
	}
	return Resolution{}, errors.Errorf("module %q not found (searched %s)",
		name, strings.Join(h.SearchPaths, ", "))
}

// dottedToPath maps "shapes.circle" to "shapes/circle.gil" and leaves an
// explicit ".gil" suffix alone ("shapes.circle.gil" → "shapes/circle.gil").
func dottedToPath(name string) string {
	segs := strings.Split(name, ".")
	if len(segs) > 1 && segs[len(segs)-1] == "gil" {
		return filepath.Join(segs[:len(segs)-1]...) + ".gil"
	}
	return filepath.Join(segs...) + ".gil"
}

// Load parses and executes the referenced file in a fresh interpreter
// environment and snapshots its ordered top-level bindings into an object.
func (h *StdHost) Load(ref string) (Value, error) {
	if v, ok := h.cache[ref]; ok {
		return v, nil
	}
	for i, active := range h.loadStack {
		if active == ref {
			chain := append(append([]string(nil), h.loadStack[i:]...), ref)
			for j := range chain {
				chain[j] = filepath.Base(chain[j])
			}
			return Null, errors.Errorf("import cycle detected: %s", strings.Join(chain, " -> "))
		}
	}

	src, err := os.ReadFile(ref)
	if err != nil {
		return Null, errors.Wrapf(err, "reading module %s", filepath.Base(ref))
	}
	prog, err := Parse(string(src))
	if err != nil {
		return Null, errors.Wrapf(err, "parsing module %s", filepath.Base(ref))
	}

	h.loadStack = append(h.loadStack, ref)
	defer func() { h.loadStack = h.loadStack[:len(h.loadStack)-1] }()

	// The module runs in its own interpreter sharing this host, so nested
	// imports resolve through the same registry, cache, and load stack.
	mip := NewInterpreter(h)
	if _, err := mip.RunProgram(prog); err != nil {
		return Null, errors.Wrapf(err, "running module %s", filepath.Base(ref))
	}
	mod := ObjVal(mip.Global.snapshot())
	h.cache[ref] = mod
	return mod, nil
}

// Construct builds the default representation of a deferred construction: an
// ordered object {kind, args}. A canvas host overrides this with real
// colors, points, and rectangles.
func (h *StdHost) Construct(name string, args []Value) (Value, error) {
	o := NewObject()
	o.Set("kind", Str(name))
	o.Set("args", Arr(args))
	return ObjVal(o), nil
}
