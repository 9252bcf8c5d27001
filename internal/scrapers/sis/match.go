package sis

import (
	"sisassist-backend/pkg/textutil"

	"github.com/antzucaro/matchr"
)

const matchThreshold = 0.7

// MatchClass resolves something a person typed (a course code or part of a class name) to a
// class. Exact matches on the normalized course code or name win, then a class whose name
// uniquely contains the query, then the most similar name above a threshold.
func MatchClass(classes []ClassSummary, query string) (ClassSummary, bool) {
	target := textutil.NormalizeName(query)
	if target == "" {
		return ClassSummary{}, false
	}

	for _, class := range classes {
		if textutil.NormalizeName(class.CourseCode) == target ||
			textutil.NormalizeName(class.Name) == target {
			return class, true
		}
	}

	var contains []ClassSummary
	for _, class := range classes {
		if textutil.MatchName(class.Name, []string{target}) {
			contains = append(contains, class)
		}
	}
	if len(contains) == 1 {
		return contains[0], true
	}

	var mostSimilarity float64
	var mostSimilar ClassSummary
	for _, class := range classes {
		similarity := matchr.JaroWinkler(target, textutil.NormalizeName(class.Name), false)
		if similarity > mostSimilarity {
			mostSimilarity = similarity
			mostSimilar = class
		}
	}
	if mostSimilarity > matchThreshold {
		return mostSimilar, true
	}
	return ClassSummary{}, false
}
