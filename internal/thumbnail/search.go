package thumbnail

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/updaun/postkit/internal/cache"
	"github.com/updaun/postkit/internal/hasher"
)

// cachedPerKeyword caps how many cached candidates one keyword contributes.
const cachedPerKeyword = 2

// Candidate is an image URL to try for a post.
type Candidate struct {
	URL     string `json:"url"`
	Keyword string `json:"keyword"`
}

// Searcher turns keywords into candidate image URLs.
type Searcher struct {
	// Template contains a {query} placeholder.
	Template      string
	MaxKeywords   int
	MaxCandidates int
	Cache         *cache.Cache[[]Candidate]
	Logger        *slog.Logger
}

// SearchURL fills the template for keyword. Spaces become commas.
func SearchURL(template, keyword string) string {
	q := url.QueryEscape(strings.ReplaceAll(keyword, " ", ","))
	return strings.ReplaceAll(template, "{query}", q)
}

// Candidates returns up to MaxCandidates URLs for the first MaxKeywords
// keywords, reusing cached results younger than the cache TTL.
func (s *Searcher) Candidates(keywords []string) []Candidate {
	if s.Template == "" {
		return nil
	}
	if len(keywords) > s.MaxKeywords {
		keywords = keywords[:s.MaxKeywords]
	}

	var out []Candidate
	for _, kw := range keywords {
		key := hasher.CacheKey("search", kw)
		if s.Cache != nil {
			if cached, ok := s.Cache.Fresh(key); ok {
				if len(cached) > cachedPerKeyword {
					cached = cached[:cachedPerKeyword]
				}
				if s.Logger != nil {
					s.Logger.Debug("search cache hit", slog.String("keyword", kw), slog.String("key", key))
				}
				out = append(out, cached...)
				continue
			}
		}

		c := Candidate{URL: SearchURL(s.Template, kw), Keyword: kw}
		out = append(out, c)
		if s.Cache != nil {
			s.Cache.Put(key, []Candidate{c})
		}
		if len(out) >= s.MaxCandidates {
			break
		}
	}
	if len(out) > s.MaxCandidates {
		out = out[:s.MaxCandidates]
	}
	return out
}
