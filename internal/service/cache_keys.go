package service

import (
	"strconv"
	"strings"

	"github.com/movienight/movienight/internal/domain"
)

// Cache key prefixes for catalog content
const (
	// PrefixPopular is the prefix for popular pages (popular:{page})
	PrefixPopular = "popular:"

	// PrefixDetails is the prefix for movie details (details:{id})
	PrefixDetails = "details:"

	// PrefixSearch is the prefix for search results (search:{query}:{page})
	PrefixSearch = "search:"
)

func popularKey(page int) string {
	return PrefixPopular + strconv.Itoa(page)
}

func detailsKey(id domain.MovieID) string {
	return PrefixDetails + id.String()
}

// searchKey normalizes the query so "Inception " and "inception" share an entry.
func searchKey(query string, page int) string {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return PrefixSearch + q + ":" + strconv.Itoa(page)
}
