package normalize

import "testing"

func TestLinesUnifiesEndings(t *testing.T) {
	lines := Lines("a\r\nb\rc\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %+v", len(lines), lines)
	}
	if lines[0].Text != "a" || lines[1].Text != "b" || lines[2].Text != "c" {
		t.Fatalf("unexpected text: %+v", lines)
	}
}

func TestLinesStripsANSI(t *testing.T) {
	lines := Lines("\x1b[31mred\x1b[0m text")
	if lines[0].Text != "red text" {
		t.Fatalf("expected ANSI stripped, got %q", lines[0].Text)
	}
}

func TestLinesExpandsLeadingTabs(t *testing.T) {
	lines := Lines("\tindented")
	if lines[0].Text != "        indented" {
		t.Fatalf("expected tab expanded to 8 spaces, got %q", lines[0].Text)
	}
}

func TestLinesPreservesIndex(t *testing.T) {
	lines := Lines("one\ntwo\nthree")
	for i, l := range lines {
		if l.Index != i {
			t.Fatalf("expected index %d, got %d", i, l.Index)
		}
	}
}
