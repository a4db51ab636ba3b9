// Package search matches and ranks movie titles.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/movienight/movienight/internal/domain"
	sfuzzy "github.com/sahilm/fuzzy"
)

// FilterResult is a list item that matched a filter query
type FilterResult struct {
	Item           domain.ListItem
	MatchedIndexes []int // rune positions in the title, for highlighting
	Score          int   // higher is better
}

// titleSource implements sahilm/fuzzy.Source over list item titles
type titleSource []domain.ListItem

func (s titleSource) String(i int) string { return s[i].GetTitle() }
func (s titleSource) Len() int            { return len(s) }

// Filter returns the items whose titles fuzzy-match query, best first.
// An empty query matches everything in the original order.
func Filter(query string, items []domain.ListItem) []FilterResult {
	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]FilterResult, len(items))
		for i, item := range items {
			results[i] = FilterResult{Item: item}
		}
		return results
	}

	matches := sfuzzy.FindFrom(query, titleSource(items))
	results := make([]FilterResult, len(matches))
	for i, m := range matches {
		results[i] = FilterResult{
			Item:           items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// Rank reorders server search results so the closest title matches come
// first. Results the server returned that do not fuzzy-match the title (for
// example a hit on the original title) keep their relative order at the end.
func Rank(query string, movies []domain.MovieSummary) []domain.MovieSummary {
	query = strings.TrimSpace(query)
	if query == "" || len(movies) < 2 {
		return movies
	}

	ranks := fuzzy.RankFindNormalizedFold(query, titles(movies))
	sort.SliceStable(ranks, func(i, j int) bool {
		return better(ranks[i], ranks[j])
	})

	out := make([]domain.MovieSummary, 0, len(movies))
	used := make([]bool, len(movies))
	for _, r := range ranks {
		out = append(out, movies[r.OriginalIndex])
		used[r.OriginalIndex] = true
	}
	for i, m := range movies {
		if !used[i] {
			out = append(out, m)
		}
	}
	return out
}

// Local returns only the movies whose titles fuzzy-match query, best first.
func Local(query string, movies []domain.MovieSummary) []domain.MovieSummary {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.MovieSummary{}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, titles(movies))
	sort.SliceStable(ranks, func(i, j int) bool {
		return better(ranks[i], ranks[j])
	})

	out := make([]domain.MovieSummary, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, movies[r.OriginalIndex])
	}
	return out
}

// better orders prefix matches first, then by edit distance, then by the
// original position.
func better(a, b fuzzy.Rank) bool {
	ap := hasPrefixFold(a.Target, a.Source)
	bp := hasPrefixFold(b.Target, b.Source)
	if ap != bp {
		return ap
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.OriginalIndex < b.OriginalIndex
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func titles(movies []domain.MovieSummary) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Title
	}
	return out
}
