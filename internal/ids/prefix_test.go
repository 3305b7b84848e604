package ids

import "testing"

func TestUniquePrefixLengths(t *testing.T) {
	ids := []string{"2u3iutfd", "2a9k1111", "abc12345"}
	lengths := UniquePrefixLengths(ids)

	if got := lengths["2u3iutfd"]; got != 2 {
		t.Fatalf("expected 2u3iutfd prefix length 2, got %d", got)
	}
	if got := lengths["2a9k1111"]; got != 2 {
		t.Fatalf("expected 2a9k1111 prefix length 2, got %d", got)
	}
	if got := lengths["abc12345"]; got != 1 {
		t.Fatalf("expected abc12345 prefix length 1, got %d", got)
	}
}

func TestUniquePrefixLengthsIsCaseInsensitive(t *testing.T) {
	ids := []string{"Abc", "aBD"}
	lengths := UniquePrefixLengths(ids)

	if got := lengths["abc"]; got != 3 {
		t.Fatalf("expected abc prefix length 3, got %d", got)
	}
	if got := lengths["abd"]; got != 3 {
		t.Fatalf("expected abd prefix length 3, got %d", got)
	}
}

func TestUniquePrefixLengthsSkipsDuplicatesAndEmpty(t *testing.T) {
	ids := []string{"abc", "", "ABC"}
	lengths := UniquePrefixLengths(ids)

	if len(lengths) != 1 {
		t.Fatalf("expected 1 unique ID, got %d", len(lengths))
	}
	if got := lengths["abc"]; got != 1 {
		t.Fatalf("expected abc prefix length 1, got %d", got)
	}
}

func TestMatchPrefixExact(t *testing.T) {
	ids := []string{"architecture", "arch-notes"}
	match, matched, ambiguous := MatchPrefix(ids, "architecture")
	if !matched || ambiguous || match != "architecture" {
		t.Fatalf("expected exact match, got %q matched=%v ambiguous=%v", match, matched, ambiguous)
	}
}

func TestMatchPrefixUnique(t *testing.T) {
	ids := []string{"diagram", "documentation"}
	match, matched, ambiguous := MatchPrefix(ids, "di")
	if !matched || ambiguous || match != "diagram" {
		t.Fatalf("expected diagram, got %q matched=%v ambiguous=%v", match, matched, ambiguous)
	}
}

func TestMatchPrefixAmbiguous(t *testing.T) {
	ids := []string{"cdk-typescript", "cdk-python"}
	_, matched, ambiguous := MatchPrefix(ids, "cdk-")
	if matched || !ambiguous {
		t.Fatalf("expected ambiguous, got matched=%v ambiguous=%v", matched, ambiguous)
	}
}

func TestMatchPrefixNoMatch(t *testing.T) {
	ids := []string{"diagram"}
	for _, input := range []string{"", "x", "diagrams"} {
		if _, matched, ambiguous := MatchPrefix(ids, input); matched || ambiguous {
			t.Errorf("MatchPrefix(%q): expected no match, got matched=%v ambiguous=%v", input, matched, ambiguous)
		}
	}
}

func TestMatchPrefixCaseInsensitive(t *testing.T) {
	ids := []string{"Architecture"}
	match, matched, _ := MatchPrefix(ids, "ARCH")
	if !matched || match != "Architecture" {
		t.Fatalf("expected case-insensitive match, got %q matched=%v", match, matched)
	}
}
