// Package strutil provides string similarity scoring for fuzzy catalog
// matching. Scores follow the Gestalt pattern-matching approach: the
// ratio of matched characters to total characters across both strings.
package strutil

import "sort"

// Ratio scores the similarity of two strings in [0, 1]. A score of 1
// means the strings are identical; 0 means they share no characters in
// any common ordering. Comparison is case-sensitive, so callers should
// normalize case first.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(totalMatchSize(ra, rb)) / float64(total)
}

// Match pairs a candidate string with its similarity score.
type Match struct {
	Value string
	Score float64
}

// CloseMatches returns up to n candidates scoring at least cutoff
// against word, best first. Ties preserve the order of possibilities.
func CloseMatches(word string, possibilities []string, n int, cutoff float64) []Match {
	if n <= 0 {
		return nil
	}

	matches := make([]Match, 0, len(possibilities))
	for _, p := range possibilities {
		if score := Ratio(word, p); score >= cutoff {
			matches = append(matches, Match{Value: p, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

// totalMatchSize sums the sizes of the maximal matching blocks between
// a and b, found by repeatedly locating the longest common substring
// and recursing into the unmatched segments on either side.
func totalMatchSize(a, b []rune) int {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	matched := 0

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, size := longestMatch(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if size == 0 {
			continue
		}
		matched += size
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+size < s.ahi && j+size < s.bhi {
			queue = append(queue, span{i + size, s.ahi, j + size, s.bhi})
		}
	}
	return matched
}

func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := map[int]int{}

	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
