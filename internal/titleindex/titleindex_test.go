package titleindex

import (
	"testing"

	"github.com/trotybot/wikirag/internal/chunker"
)

func testChunks() []chunker.Chunk {
	return []chunker.Chunk{
		{Title: "S.T.F.R.", Content: "reactor part one", DocID: "stfr", Index: 0},
		{Title: "S.T.F.R.", Content: "reactor part two", DocID: "stfr", Index: 1},
		{Title: "Arc Furnace", Content: "furnace text", DocID: "arc", Index: 0},
		{Title: "Turbine", Content: "turbine text", DocID: "turbine", Index: 0},
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"S.T.F.R.", "stfr"},
		{"Arc Furnace", "arcfurnace"},
		{"multi-block_machine", "multiblockmachine"},
		{"  Spaced\tOut \n", "spacedout"},
		{"already", "already"},
	}
	for _, c := range cases {
		if got := NormalizeKey(c.in); got != c.want {
			t.Errorf("NormalizeKey(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLookupExact(t *testing.T) {
	idx := Build(testChunks())

	pos, ok := idx.LookupExact("stfr")
	if !ok || pos != 0 {
		t.Errorf("LookupExact(stfr): got (%d, %v), want (0, true)", pos, ok)
	}

	// Raw lowercase title is also a key.
	pos, ok = idx.LookupExact("s.t.f.r.")
	if !ok || pos != 0 {
		t.Errorf("LookupExact(s.t.f.r.): got (%d, %v), want (0, true)", pos, ok)
	}

	pos, ok = idx.LookupExact("arcfurnace")
	if !ok || pos != 2 {
		t.Errorf("LookupExact(arcfurnace): got (%d, %v), want (2, true)", pos, ok)
	}

	if _, ok := idx.LookupExact("nosuchpage"); ok {
		t.Error("LookupExact matched a missing title")
	}
}

func TestLookupWord(t *testing.T) {
	idx := Build(testChunks())

	pos, ok := idx.LookupWord("turbine")
	if !ok || pos != 3 {
		t.Errorf("LookupWord(turbine): got (%d, %v), want (3, true)", pos, ok)
	}

	// Words under three normalized characters never match.
	if _, ok := idx.LookupWord("a-"); ok {
		t.Error("LookupWord matched a two-character word")
	}
}

func TestFirstChunkPerTitleWins(t *testing.T) {
	idx := Build(testChunks())

	pos, ok := idx.LookupExact("stfr")
	if !ok || pos != 0 {
		t.Fatalf("canonical position for split document: got (%d, %v), want (0, true)", pos, ok)
	}

	sib := idx.Positions("S.T.F.R.")
	if len(sib) != 2 || sib[0] != 0 || sib[1] != 1 {
		t.Errorf("Positions: got %v, want [0 1]", sib)
	}
}

func TestDuplicateNormalizedTitlesFirstWins(t *testing.T) {
	chunks := []chunker.Chunk{
		{Title: "D.E.M.", Content: "first", DocID: "a", Index: 0},
		{Title: "DEM", Content: "second", DocID: "b", Index: 0},
	}
	idx := Build(chunks)

	pos, ok := idx.LookupExact("dem")
	if !ok || pos != 0 {
		t.Errorf("colliding keys: got (%d, %v), want first document (0, true)", pos, ok)
	}
}
