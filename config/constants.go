package config

import (
	"os"
	"strconv"
	"time"

	"content-search/domain"
)

// Service constants with env var override support.
var (
	ReindexInterval = durationEnv("REINDEX_INTERVAL", 2*time.Second)
	ReindexPageSize = intEnv("REINDEX_PAGE_SIZE", 500)
	HTTPAddr        = stringEnv("HTTP_ADDR", ":9400")
	DBTimeout       = durationEnv("DB_TIMEOUT", 10*time.Second)
	IndexTimeout    = durationEnv("INDEX_TIMEOUT", 15*time.Second)
	IndexMaxTries   = intEnv("INDEX_MAX_TRIES", 4)
)

// DefaultFacets is the facet set search pages render when no custom
// configuration is supplied: tags, categories, content type and a monthly
// archive histogram.
func DefaultFacets() map[string]domain.FacetDefinition {
	return map[string]domain.FacetDefinition{
		"Tags":       domain.TaxonomyFacet{Taxonomy: "post_tag", Count: 10},
		"Categories": domain.TaxonomyFacet{Taxonomy: "category", Count: 10},
		"Type":       domain.PostTypeFacet{Count: 10},
		"Archive":    domain.DateHistogramFacet{Interval: domain.IntervalMonth, Count: 12},
	}
}

func stringEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func intEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func boolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return defaultVal
}

func durationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
