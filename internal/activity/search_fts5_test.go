//go:build sqlite_fts5

package activity

import (
	"context"
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	l := testLog(t)
	var count int
	if err := l.conn.QueryRow(`SELECT count(*) FROM activity_fts`).Scan(&count); err != nil {
		t.Fatalf("activity_fts table missing: %v", err)
	}
}

func TestFTS5_SearchMatchesTokens(t *testing.T) {
	l := testLog(t)
	ctx := context.Background()
	_ = l.Record(ctx, "u1", KindChat, "surface area of a sphere", nil)
	_ = l.Record(ctx, "u1", KindChat, "volume of a cone", nil)

	results, err := l.Search(ctx, "sphere", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Summary != "surface area of a sphere" {
		t.Errorf("results = %+v", results)
	}
}

func TestFTS5_SearchTreatsSyntaxAsText(t *testing.T) {
	l := testLog(t)
	ctx := context.Background()
	_ = l.Record(ctx, "u1", KindChat, "what is the volume of a cube", nil)
	_ = l.Record(ctx, "u1", KindChat, "side-by-side prisms", nil)

	for _, q := range []string{"cube?", `"cube`, "volume OR", "side-by-side", "cube*", "NEAR(cube)"} {
		if _, err := l.Search(ctx, q, 10); err != nil {
			t.Errorf("Search(%q): %v", q, err)
		}
	}

	results, err := l.Search(ctx, "cube?", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Summary != "what is the volume of a cube" {
		t.Errorf("results = %+v", results)
	}

	blank, err := l.Search(ctx, "   ", 10)
	if err != nil || len(blank) != 0 {
		t.Errorf("blank query = %v, %v", blank, err)
	}
}

func TestMatchExpr(t *testing.T) {
	tests := map[string]string{
		"cube":          `"cube"`,
		"cube volume":   `"cube" "volume"`,
		`say "hi"`:      `"say" """hi"""`,
		"  ":            "",
		"area OR cube*": `"area" "OR" "cube*"`,
	}
	for in, want := range tests {
		if got := matchExpr(in); got != want {
			t.Errorf("matchExpr(%q) = %q, want %q", in, got, want)
		}
	}
}
