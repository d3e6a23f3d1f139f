package compile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/zvue/pkg/reactive"
)

// ErrUnknownDirective is returned for a z-* attribute that names no directive.
var ErrUnknownDirective = errors.New("compile: unknown directive")

// interpolation matches {{ key }} runs inside text.
var interpolation = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)

// Binding is one compiled binding.
type Binding struct {
	ID      int
	Kind    Kind
	Key     string
	Node    *html.Node
	Watcher *reactive.Watcher
}

// Patch describes a node update caused by a data change.
type Patch struct {
	ID    int    `json:"id"`
	Kind  string `json:"kind"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Option configures compilation.
type Option func(*View)

// WithLogger sets the logger for update failures.
func WithLogger(logger *slog.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// View is a compiled fragment bound to a VM.
type View struct {
	vm     *reactive.VM
	root   *html.Node
	logger *slog.Logger

	bindings  []*Binding
	listeners []func(Patch)

	// mu guards the node tree and listeners.
	mu sync.Mutex
}

// Parse parses an HTML fragment in a body context.
func Parse(r io.Reader) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	return nodes, nil
}

// New parses r and compiles it against vm.
func New(r io.Reader, vm *reactive.VM, opts ...Option) (*View, error) {
	nodes, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return Compile(nodes, vm, opts...)
}

// Compile binds the fragment nodes to vm. The nodes are adopted by the view
// and must not be shared. Each binding is rendered with the current value
// before its watcher is created.
func Compile(nodes []*html.Node, vm *reactive.VM, opts ...Option) (*View, error) {
	v := &View{
		vm:     vm,
		root:   &html.Node{Type: html.DocumentNode},
		logger: slog.Default().With("component", "compile"),
	}
	for _, opt := range opts {
		opt(v)
	}

	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		v.root.AppendChild(n)
	}

	if err := v.compile(v.root); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *View) compile(parent *html.Node) error {
	// Snapshot children: compiling text splices new siblings in.
	var children []*html.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}

	for _, n := range children {
		switch n.Type {
		case html.ElementNode:
			bound, err := v.compileElement(n)
			if err != nil {
				return err
			}
			// Bound content is owned by the updater.
			if bound || rawText(n) {
				continue
			}
			if err := v.compile(n); err != nil {
				return err
			}
		case html.TextNode:
			if err := v.compileText(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// rawText reports elements whose text children are not markup.
func rawText(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Textarea, atom.Title:
		return true
	}
	return false
}

func (v *View) compileElement(n *html.Node) (bool, error) {
	attrs := n.Attr[:0:0]
	type pending struct {
		kind Kind
		key  string
	}
	var binds []pending

	for _, attr := range n.Attr {
		name, ok := directiveName(attr.Key)
		if !ok {
			attrs = append(attrs, attr)
			continue
		}
		kind, known := directives[name]
		if !known {
			return false, fmt.Errorf("%w: %s=%q on <%s>", ErrUnknownDirective, attr.Key, attr.Val, n.Data)
		}
		binds = append(binds, pending{kind: kind, key: attr.Val})
	}
	n.Attr = attrs

	if len(binds) == 0 {
		return false, nil
	}

	// data-z carries the space-separated binding IDs of the element.
	ids := make([]string, 0, len(binds))
	for _, b := range binds {
		id, err := v.bind(n, b.kind, b.key)
		if err != nil {
			return false, err
		}
		ids = append(ids, strconv.Itoa(id))
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "data-z", Val: strings.Join(ids, " ")})
	return true, nil
}

// compileText splits a text node around its {{key}} runs. Each run becomes
// a bound text node between a <!--z:ID--> and a <!--/z--> comment, so the
// run stays addressable in a browser even while its value is empty.
func (v *View) compileText(n *html.Node) error {
	matches := interpolation.FindAllStringSubmatchIndex(n.Data, -1)
	if len(matches) == 0 {
		return nil
	}

	parent := n.Parent
	text := n.Data
	last := 0
	for _, m := range matches {
		if m[0] > last {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:m[0]]}, n)
		}

		bound := &html.Node{Type: html.TextNode}
		marker := &html.Node{Type: html.CommentNode}
		parent.InsertBefore(marker, n)
		parent.InsertBefore(bound, n)
		parent.InsertBefore(&html.Node{Type: html.CommentNode, Data: "/z"}, n)

		id, err := v.bind(bound, KindText, text[m[2]:m[3]])
		if err != nil {
			return err
		}
		marker.Data = "z:" + strconv.Itoa(id)
		last = m[1]
	}
	if last < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:]}, n)
	}
	parent.RemoveChild(n)
	return nil
}

// bind renders the current value into n and watches key for changes.
func (v *View) bind(n *html.Node, kind Kind, key string) (int, error) {
	update := updaters[kind]
	b := &Binding{
		ID:   len(v.bindings) + 1,
		Kind: kind,
		Key:  key,
		Node: n,
	}

	if err := update(n, v.vm.Get(key)); err != nil {
		return 0, fmt.Errorf("bind %s %q: %w", kind, key, err)
	}

	w, err := v.vm.Watch(key, func(_ reactive.Target, value any) {
		v.apply(b, update, value)
	})
	if err != nil {
		return 0, fmt.Errorf("bind %s %q: %w", kind, key, err)
	}
	b.Watcher = w

	v.bindings = append(v.bindings, b)
	return b.ID, nil
}

// apply runs on every change of a bound key.
func (v *View) apply(b *Binding, update updater, value any) {
	v.mu.Lock()
	err := update(b.Node, value)
	listeners := v.listeners
	v.mu.Unlock()

	if err != nil {
		v.logger.Error("binding update failed", "binding", b.ID, "key", b.Key, "error", err)
		return
	}

	p := Patch{ID: b.ID, Kind: b.Kind.String(), Key: b.Key, Value: Format(value)}
	for _, fn := range listeners {
		fn(p)
	}
}

// OnPatch registers fn to receive every patch. Listeners run synchronously
// on the writing goroutine.
func (v *View) OnPatch(fn func(Patch)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
}

// Bindings returns the compiled bindings in ID order.
func (v *View) Bindings() []*Binding {
	out := make([]*Binding, len(v.bindings))
	copy(out, v.bindings)
	return out
}

// VM returns the bound facade.
func (v *View) VM() *reactive.VM {
	return v.vm
}

// Render writes the current fragment.
func (v *View) Render(w io.Writer) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for c := v.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	return nil
}

// String renders the fragment to a string.
func (v *View) String() string {
	var buf bytes.Buffer
	if err := v.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}
