package cycle

import (
	"reflect"
	"testing"
)

func TestNextCyclesThroughGroup(t *testing.T) {
	t.Parallel()

	groups := []Group{
		{"true", "false"},
		{"development", "staging", "production"},
		{"a", "b", "c", "d"},
	}

	for _, g := range groups {
		for i, v := range g {
			want := g[(i+1)%len(g)]
			got, ok := Next(v, g)
			if !ok {
				t.Fatalf("Next(%q, %v): unexpected failure", v, g)
			}
			if got != want {
				t.Errorf("Next(%q, %v) = %q, want %q", v, g, got, want)
			}
		}

		// Cyclic closure: |G| steps return to the start.
		v := g[0]
		for range g {
			v, _ = Next(v, g)
		}
		if v != g[0] {
			t.Errorf("cycling %v %d times ended at %q, want %q", g, len(g), v, g[0])
		}
	}
}

func TestNextPreservesQuoteStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current string
		group   Group
		want    string
	}{
		{"double_quoted", `"true"`, Group{"true", "false"}, `"false"`},
		{"single_quoted", "'ON'", Group{"ON", "OFF"}, "'OFF'"},
		{"unquoted_stays_unquoted", "true", Group{"true", "false"}, "false"},
		{"quoted_case_insensitive", `"True"`, Group{"true", "false"}, `"false"`},
		{"mismatched_quotes_not_stripped", `"true'`, Group{`"true'`, "x"}, "x"},
		{"lone_quote_char", `"`, Group{`"`, "y"}, "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Next(tt.current, tt.group)
			if !ok {
				t.Fatalf("Next(%q, %v): unexpected failure", tt.current, tt.group)
			}
			if got != tt.want {
				t.Errorf("Next(%q, %v) = %q, want %q", tt.current, tt.group, got, tt.want)
			}
		})
	}
}

func TestNextUnknownValueReturnsInputUnchanged(t *testing.T) {
	t.Parallel()

	got, ok := Next("maybe", Group{"true", "false"})
	if ok {
		t.Fatal("expected ok=false for a value outside the group")
	}
	if got != "maybe" {
		t.Errorf("input must be returned unchanged, got %q", got)
	}
}

func TestMatchReturnsCanonicalCasing(t *testing.T) {
	t.Parallel()

	table := NewTable([][]string{{"YES", "NO"}})

	g, ok := table.Match("yes")
	if !ok {
		t.Fatal("expected lenient match for lowercase value")
	}
	if !reflect.DeepEqual([]string(g), []string{"YES", "NO"}) {
		t.Errorf("matched group must keep configured casing, got %v", g)
	}
}

func TestMatchTableOrderPrecedence(t *testing.T) {
	t.Parallel()

	table := NewTable([][]string{
		{"1", "0"},
		{"on", "off"},
	})

	g, ok := table.Match("1")
	if !ok {
		t.Fatal("expected match")
	}
	if g[0] != "1" {
		t.Errorf("expected first configured group, got %v", g)
	}

	// A value present in two groups resolves to the earlier group, even
	// when the later group holds it with exact casing.
	overlap := NewTable([][]string{
		{"true", "false"},
		{"TRUE", "FALSE"},
	})
	g, ok = overlap.Match("TRUE")
	if !ok {
		t.Fatal("expected match")
	}
	if g[0] != "true" {
		t.Errorf("first group in table order must win, got %v", g)
	}
}

func TestNewTableSkipsDegenerateGroups(t *testing.T) {
	t.Parallel()

	table := NewTable([][]string{
		{"alone"},
		{},
		{"on", "off"},
	})
	if len(table.Groups()) != 1 {
		t.Fatalf("groups with fewer than two members must be dropped, got %d groups", len(table.Groups()))
	}
	if _, ok := table.Match("alone"); ok {
		t.Error("single-member group must never match")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{`"true"`, "true"},
		{"'off'", "off"},
		{"  plain  ", "plain"},
		{`""`, ""},
		{`"nested'`, `"nested'`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
