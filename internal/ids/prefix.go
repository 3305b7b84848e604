package ids

import "strings"

// UniquePrefixLengths returns the shortest unique prefix length for each ID.
func UniquePrefixLengths(ids []string) map[string]int {
	uniqueIDs := make([]string, 0, len(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		idLower := strings.ToLower(id)
		if idLower == "" || seen[idLower] {
			continue
		}
		seen[idLower] = true
		uniqueIDs = append(uniqueIDs, idLower)
	}

	lengths := make(map[string]int, len(uniqueIDs))
	for _, id := range uniqueIDs {
		lengths[id] = uniquePrefixLength(id, uniqueIDs)
	}

	return lengths
}

// MatchPrefix resolves input against ids, preferring an exact match and
// falling back to a unique prefix. Matching is case-insensitive.
func MatchPrefix(ids []string, input string) (match string, matched bool, ambiguous bool) {
	inputLower := strings.ToLower(input)
	if inputLower == "" {
		return "", false, false
	}

	var prefixMatches []string
	for _, id := range ids {
		idLower := strings.ToLower(id)
		if idLower == inputLower {
			return id, true, false
		}
		if strings.HasPrefix(idLower, inputLower) {
			prefixMatches = append(prefixMatches, id)
		}
	}

	switch len(prefixMatches) {
	case 0:
		return "", false, false
	case 1:
		return prefixMatches[0], true, false
	default:
		return "", false, true
	}
}

func uniquePrefixLength(id string, ids []string) int {
	for length := 1; length <= len(id); length++ {
		prefix := id[:length]
		unique := true
		for _, other := range ids {
			if other == id {
				continue
			}
			if strings.HasPrefix(other, prefix) {
				unique = false
				break
			}
		}
		if unique {
			return length
		}
	}

	return len(id)
}
