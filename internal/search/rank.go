package search

import (
	"strings"
	"unicode"
)

// minMatchScore is the lowest score BestMatch accepts. Anything below it
// means no result resembled the requested track.
const minMatchScore = 0.4

// BestMatch picks the result most likely to be the requested track, or nil
// when nothing scores above the acceptance threshold.
func BestMatch(results []Result, trackName, artist string) *Result {
	var best *Result
	bestScore := 0.0

	for i := range results {
		score := matchScore(&results[i], trackName, artist)
		if score > bestScore {
			bestScore = score
			best = &results[i]
		}
	}

	if bestScore < minMatchScore {
		return nil
	}
	return best
}

// matchScore combines title token overlap with an uploader bonus. Titles
// often embed the artist ("Artist - Track"), so artist tokens found in the
// title count toward the match as well.
func matchScore(r *Result, trackName, artist string) float64 {
	titleTokens := tokenize(r.Title)
	wantTitle := tokenize(trackName)
	wantArtist := tokenize(artist)

	if len(wantTitle) == 0 {
		return 0
	}

	score := overlap(wantTitle, titleTokens)

	artistInTitle := overlap(wantArtist, titleTokens)
	artistInUploader := overlap(wantArtist, tokenize(r.Artist))
	if artistInTitle > artistInUploader {
		score += 0.3 * artistInTitle
	} else {
		score += 0.3 * artistInUploader
	}

	if score > 1 {
		score = 1
	}
	return score
}

// overlap returns the fraction of want tokens present in have.
func overlap(want, have []string) float64 {
	if len(want) == 0 {
		return 0
	}
	haveSet := make(map[string]struct{}, len(have))
	for _, tok := range have {
		haveSet[tok] = struct{}{}
	}
	matched := 0
	for _, tok := range want {
		if _, ok := haveSet[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(want))
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
