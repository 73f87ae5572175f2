package filters

import (
	"testing"
)

func flatten(t *testing.T, fs []Filter, blockEnd bool) []string {
	t.Helper()
	var out []string
	for _, f := range Iterate(fs, blockEnd) {
		if f == BlockEnd {
			out = append(out, "<end>")
			continue
		}
		out = append(out, f.Type())
	}
	return out
}

func TestIterateFlatList(t *testing.T) {
	got := flatten(t, []Filter{keep("f1"), keep("f2")}, false)
	if !equalIDs(got, "f1", "f2") {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestIterateCombinatorChildrenReversed(t *testing.T) {
	and := newBoolean(KindAnd, []Filter{keep("f1"), keep("f2")}, nil)

	got := flatten(t, []Filter{and}, false)
	if !equalIDs(got, "and", "f2", "f1") {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestIterateBlockEnd(t *testing.T) {
	and := newBoolean(KindAnd, []Filter{keep("f1"), keep("f2")}, nil)

	got := flatten(t, []Filter{and}, true)
	if !equalIDs(got, "and", "f2", "f1", "<end>") {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestIterateNested(t *testing.T) {
	inner := newBoolean(KindNot, []Filter{keep("f3")}, nil)
	outer := newBoolean(KindOr, []Filter{keep("f1"), inner, keep("f2")}, nil)

	// Children expand last-declared-first at the queue front; the nested
	// combinator expands where it is popped.
	got := flatten(t, []Filter{outer, keep("tail")}, false)
	if !equalIDs(got, "or", "f2", "not", "f3", "f1", "tail") {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestIterateNestedBlockEnds(t *testing.T) {
	inner := newBoolean(KindAnd, []Filter{keep("f2")}, nil)
	outer := newBoolean(KindOr, []Filter{keep("f1"), inner}, nil)

	got := flatten(t, []Filter{outer}, true)
	if !equalIDs(got, "or", "and", "f2", "<end>", "f1", "<end>") {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestIterateEmpty(t *testing.T) {
	if out := Iterate(nil, true); len(out) != 0 {
		t.Errorf("expected empty traversal, got %d entries", len(out))
	}
}

func TestIterateDoesNotMutateInput(t *testing.T) {
	and := newBoolean(KindAnd, []Filter{keep("f1")}, nil)
	in := []Filter{and, keep("f2")}

	Iterate(in, true)

	if in[0] != and || in[1].Type() != "f2" {
		t.Error("input slice was mutated")
	}
}
