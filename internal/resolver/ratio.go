// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package resolver maps free-form user queries onto catalog titles:
// fuzzy close-match resolution for submitted queries and substring
// suggestions for live typing.
package resolver

// Ratio returns a similarity measure for two strings in [0,1]: twice
// the number of matching characters over the total length. Matches are
// found greedily, longest common substring first, then recursively to
// the left and right of it, so the measure rewards long contiguous
// runs rather than scattered character overlap. Two empty strings are
// identical (ratio 1). Comparison is case-sensitive.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}

	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}

	matched := 0
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(ra), 0, len(rb)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(ra, s.alo, s.ahi, s.blo, s.bhi, b2j)
		if k == 0 {
			continue
		}
		matched += k
		queue = append(queue,
			span{s.alo, i, s.blo, j},
			span{i + k, s.ahi, j + k, s.bhi},
		)
	}

	return 2 * float64(matched) / float64(total)
}

// longestMatch finds the longest block of a[alo:ahi] that also occurs
// in b[blo:bhi], preferring the earliest such block in a. j2len carries
// run lengths ending at each b position for the previous a position.
func longestMatch(a []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
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
