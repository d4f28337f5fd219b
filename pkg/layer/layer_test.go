package layer

import (
	"reflect"
	"testing"

	"github.com/keyrx/keyrx/pkg/action"
	"github.com/keyrx/keyrx/pkg/keycode"
)

func TestSortConditionalsOrdersBySpecificityThenDeclaration(t *testing.T) {
	conds := []Conditional{
		{Predicate: Predicate{Modifiers: []uint8{0}}, Layer: Layer{ID: "single-decl-1"}},
		{Predicate: Predicate{Modifiers: []uint8{0, 1}}, Layer: Layer{ID: "double"}},
		{Predicate: Predicate{Modifiers: []uint8{0}}, Layer: Layer{ID: "single-decl-2"}},
	}
	SortConditionals(conds)

	want := []ID{"double", "single-decl-1", "single-decl-2"}
	for i, w := range want {
		if conds[i].Layer.ID != w {
			t.Fatalf("position %d = %v, want %v", i, conds[i].Layer.ID, w)
		}
	}
}

func TestActiveLayerFirstMatchWins(t *testing.T) {
	conds := []Conditional{
		{Predicate: Predicate{Modifiers: []uint8{0, 1}}, Layer: Layer{ID: "double"}},
		{Predicate: Predicate{Modifiers: []uint8{0}}, Layer: Layer{ID: "single"}},
	}

	active := map[uint8]struct{}{0: {}}
	l, ok := ActiveLayer(conds, active, nil, nil)
	if !ok || l.ID != "single" {
		t.Fatalf("got %v, %v; want single, true", l.ID, ok)
	}

	active[1] = struct{}{}
	l, ok = ActiveLayer(conds, active, nil, nil)
	if !ok || l.ID != "double" {
		t.Fatalf("got %v, %v; want double, true", l.ID, ok)
	}
}

func TestActiveLayerFallsBackWhenNoPredicateMatches(t *testing.T) {
	conds := []Conditional{
		{Predicate: Predicate{Modifiers: []uint8{5}}, Layer: Layer{ID: "never"}},
	}
	_, ok := ActiveLayer(conds, map[uint8]struct{}{}, nil, nil)
	if ok {
		t.Fatalf("expected no match when predicate's aliases are inactive")
	}
}

func TestLookupFallsThroughActiveThenBaseThenPassthrough(t *testing.T) {
	base := Layer{Mapping: map[keycode.Code]action.Action{
		keycode.J: action.Simple(keycode.J),
	}}
	active := &Layer{Mapping: map[keycode.Code]action.Action{
		keycode.J: action.Simple(keycode.Left),
	}}

	if got := Lookup(active, base, keycode.J); got.SimpleTarget != keycode.Left {
		t.Fatalf("active layer should win: got %v", got)
	}
	if got := Lookup(active, base, keycode.K); !reflect.DeepEqual(got, action.Passthrough) {
		t.Fatalf("unmapped key in both layers must fall back to Passthrough, got %v", got)
	}
	if got := Lookup(nil, base, keycode.J); got.SimpleTarget != keycode.J {
		t.Fatalf("nil active layer should use base: got %v", got)
	}
}
