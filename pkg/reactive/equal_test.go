package reactive

import (
	"math"
	"testing"
)

func TestSameValue(t *testing.T) {
	m := map[string]any{"a": 1}
	s := []any{1, 2}
	obj := newObject(applyOptions(nil))

	type pair struct{ A, B int }
	type withSlice struct{ S []int }

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"equal strings", "hi", "hi", true},
		{"different strings", "hi", "bye", false},
		{"int vs float", 1, 1.0, false},
		{"NaN", math.NaN(), math.NaN(), false},
		{"same map", m, m, true},
		{"equal but distinct maps", m, map[string]any{"a": 1}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:1], false},
		{"same object", obj, obj, true},
		{"distinct objects", obj, newObject(applyOptions(nil)), false},
		{"comparable structs", pair{1, 2}, pair{1, 2}, true},
		{"non-comparable structs", withSlice{[]int{1}}, withSlice{[]int{1}}, true},
		{"array with slice inside", [1]any{[]int{1}}, [1]any{[]int{1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("SameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
