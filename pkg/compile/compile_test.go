package compile

import (
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/zvue/pkg/reactive"
)

func mustCompile(t *testing.T, src string, vm *reactive.VM) *View {
	t.Helper()
	v, err := New(strings.NewReader(src), vm)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	return v
}

func TestCompileRender(t *testing.T) {
	tests := []struct {
		name string
		src  string
		data map[string]any
		want string
	}{
		{
			name: "interpolation",
			src:  `<p>{{msg}}</p>`,
			data: map[string]any{"msg": "hi"},
			want: `<p><!--z:1-->hi<!--/z--></p>`,
		},
		{
			name: "interpolation with surrounding text",
			src:  `<p>Hello, {{ name }}!</p>`,
			data: map[string]any{"name": "Ann"},
			want: `<p>Hello, <!--z:1-->Ann<!--/z-->!</p>`,
		},
		{
			name: "two runs in one node",
			src:  `<p>{{a}}-{{b}}</p>`,
			data: map[string]any{"a": 1, "b": 2},
			want: `<p><!--z:1-->1<!--/z-->-<!--z:2-->2<!--/z--></p>`,
		},
		{
			name: "z-text",
			src:  `<span z-text="msg">old</span>`,
			data: map[string]any{"msg": "hi"},
			want: `<span data-z="1">hi</span>`,
		},
		{
			name: "bound content is not recompiled",
			src:  `<span z-text="msg"></span>`,
			data: map[string]any{"msg": "{{x}}"},
			want: `<span data-z="1">{{x}}</span>`,
		},
		{
			name: "z-html",
			src:  `<div z-html="body"></div>`,
			data: map[string]any{"body": "<b>x</b>"},
			want: `<div data-z="1"><b>x</b></div>`,
		},
		{
			name: "text is escaped",
			src:  `<p>{{msg}}</p>`,
			data: map[string]any{"msg": "<i>"},
			want: `<p><!--z:1-->&lt;i&gt;<!--/z--></p>`,
		},
		{
			name: "unknown key renders empty",
			src:  `<p>{{nope}}</p>`,
			data: map[string]any{},
			want: `<p><!--z:1--><!--/z--></p>`,
		},
		{
			name: "script is not compiled",
			src:  `<script>var x = "{{msg}}";</script>`,
			data: map[string]any{"msg": "hi"},
			want: `<script>var x = "{{msg}}";</script>`,
		},
		{
			name: "nested elements",
			src:  `<div class="c"><p>{{a}}</p><p z-text="b"></p></div>`,
			data: map[string]any{"a": "x", "b": "y"},
			want: `<div class="c"><p><!--z:1-->x<!--/z--></p><p data-z="2">y</p></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustCompile(t, tt.src, reactive.New(tt.data))
			if got := v.String(); got != tt.want {
				t.Errorf("render = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCompileUpdatesAndPatches(t *testing.T) {
	vm := reactive.New(map[string]any{"msg": "hi"})
	v := mustCompile(t, `<p>{{msg}}</p><span z-text="msg"></span>`, vm)

	var patches []Patch
	v.OnPatch(func(p Patch) { patches = append(patches, p) })

	_ = vm.Set("msg", "bye")

	if got, want := v.String(), `<p><!--z:1-->bye<!--/z--></p><span data-z="2">bye</span>`; got != want {
		t.Errorf("render = %s, want %s", got, want)
	}
	want := []Patch{
		{ID: 1, Kind: "text", Key: "msg", Value: "bye"},
		{ID: 2, Kind: "text", Key: "msg", Value: "bye"},
	}
	if len(patches) != len(want) {
		t.Fatalf("patches = %+v, want %+v", patches, want)
	}
	for i := range want {
		if patches[i] != want[i] {
			t.Errorf("patch %d = %+v, want %+v", i, patches[i], want[i])
		}
	}

	// Equal write: no patches.
	_ = vm.Set("msg", "bye")
	if len(patches) != 2 {
		t.Errorf("equal write produced %d extra patches", len(patches)-2)
	}
}

func TestCompileHTMLPatch(t *testing.T) {
	vm := reactive.New(map[string]any{"body": "<b>x</b>"})
	v := mustCompile(t, `<div z-html="body"></div>`, vm)

	var got Patch
	v.OnPatch(func(p Patch) { got = p })
	_ = vm.Set("body", "<i>y</i>")

	if got.Kind != "html" || got.Value != "<i>y</i>" {
		t.Errorf("patch = %+v", got)
	}
	if s := v.String(); s != `<div data-z="1"><i>y</i></div>` {
		t.Errorf("render = %s", s)
	}
}

func TestCompileUnknownDirective(t *testing.T) {
	_, err := New(strings.NewReader(`<input z-model="msg">`), reactive.New(map[string]any{"msg": ""}))
	if !errors.Is(err, ErrUnknownDirective) {
		t.Errorf("err = %v, want ErrUnknownDirective", err)
	}
}

func TestCompileStrictUnknownKey(t *testing.T) {
	vm := reactive.New(map[string]any{"msg": "hi"}, reactive.WithStrict(true))

	_, err := New(strings.NewReader(`<p>{{nope}}</p>`), vm)
	if !errors.Is(err, reactive.ErrUnknownProperty) {
		t.Errorf("err = %v, want ErrUnknownProperty", err)
	}
}

func TestCompileBindings(t *testing.T) {
	vm := reactive.New(map[string]any{"a": 1, "b": 2})
	v := mustCompile(t, `<p>{{a}}</p><p z-html="b"></p>`, vm)

	bindings := v.Bindings()
	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(bindings))
	}
	if bindings[0].Kind != KindText || bindings[0].Key != "a" || bindings[0].ID != 1 {
		t.Errorf("binding 0 = %+v", bindings[0])
	}
	if bindings[1].Kind != KindHTML || bindings[1].Key != "b" || bindings[1].Watcher == nil {
		t.Errorf("binding 1 = %+v", bindings[1])
	}
	if n := vm.Data().Dep("a").Len(); n != 1 {
		t.Errorf("a should have 1 reader, got %d", n)
	}
	if v.VM() != vm {
		t.Error("VM() should return the bound facade")
	}
}

func TestKindString(t *testing.T) {
	if KindText.String() != "text" || KindHTML.String() != "html" || Kind(0).String() != "unknown" {
		t.Error("unexpected Kind names")
	}
}

func TestFormat(t *testing.T) {
	obj := reactive.Observe(map[string]any{"name": "a"})

	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{3, "3"},
		{int64(-4), "-4"},
		{1.5, "1.5"},
		{2.0, "2"},
		{[]any{1, "a"}, `[1,"a"]`},
		{map[string]any{"k": "v"}, `{"k":"v"}`},
		{obj, `{"name":"a"}`},
	}

	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
