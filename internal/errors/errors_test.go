package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "unknown property",
			code:    "Z001",
			wantMsg: "Unknown property",
			wantCat: CategoryRuntime,
		},
		{
			name:    "unknown directive",
			code:    "Z002",
			wantMsg: "Unknown directive",
			wantCat: CategoryTemplate,
		},
		{
			name:    "config not found",
			code:    "Z010",
			wantMsg: "Config not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "Z999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryData, "key %q missing", "msg")
	if err.Message != `key "msg" missing` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryData {
		t.Errorf("Category = %q, want %q", err.Category, CategoryData)
	}
}

func TestZvueError_Error(t *testing.T) {
	err := New("Z003")
	if got, want := err.Error(), "Z003: Template parse failed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("Z020").Wrap(fmt.Errorf("open x: no such file"))
	if got, want := wrapped.Error(), "Z020: Source fetch failed: open x: no such file"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &ZvueError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "Z001") != nil {
		t.Error("FromError(nil) should be nil")
	}

	cause := stderrors.New("boom")
	ze := FromError(cause, "Z030")
	if ze.Code != "Z030" || !stderrors.Is(ze, cause) {
		t.Errorf("unexpected %+v", ze)
	}

	// An existing ZvueError in the chain is reused.
	inner := New("Z002")
	outer := fmt.Errorf("compile: %w", inner)
	if got := FromError(outer, "Z030"); got != inner {
		t.Errorf("FromError = %v, want the wrapped Z002", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("Z002").
		WithFile("index.html").
		WithSuggestion("Use z-text").
		Wrap(stderrors.New(`z-model`))

	out := err.Format()
	for _, want := range []string{"ERROR Z002: Unknown directive", "index.html", "Hint: Use z-text", "Cause: z-model"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("Z011").WithFile("zvue.json")
	if got, want := err.FormatCompact(), "zvue.json: Z011: Invalid config"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("Z004").WithFile("data.yaml")

	var decoded map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON produced invalid JSON: %v", jerr)
	}
	if decoded["code"] != "Z004" || decoded["file"] != "data.yaml" || decoded["category"] != "data" {
		t.Errorf("unexpected JSON %v", decoded)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %q longer than width", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}

func TestGetAllCodesSorted(t *testing.T) {
	codes := GetAllCodes()
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	if _, ok := GetTemplate("Z001"); !ok {
		t.Error("Z001 should be registered")
	}
}
