package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	twitter "github.com/anatolykoptev/go-twitter"

	"github.com/anatolykoptev/go_reels/internal/discovery"
	"github.com/anatolykoptev/go_reels/internal/engine"
)

// siteQuery restricts a web query to the social domain.
func siteQuery(domain, query string) string {
	return "site:" + domain + " " + query
}

func toHits(results []engine.SearxngResult, limit int) []discovery.SearchHit {
	hits := make([]discovery.SearchHit, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		hits = append(hits, discovery.SearchHit{Title: r.Title, URL: r.URL, Snippet: engine.CleanHTML(r.Content)})
		if limit > 0 && len(hits) >= limit {
			break
		}
	}
	return hits
}

// SearxngSearcher searches the social domain through a SearXNG instance.
type SearxngSearcher struct {
	Client *engine.Searxng
	Domain string
}

func (s *SearxngSearcher) Search(ctx context.Context, query string, limit int) ([]discovery.SearchHit, error) {
	results, err := s.Client.Search(ctx, siteQuery(s.Domain, query), "en", "")
	if err != nil {
		return nil, err
	}
	return toHits(results, limit), nil
}

// DDGSearcher searches the social domain through DuckDuckGo's HTML endpoint.
type DDGSearcher struct {
	Browser *engine.BrowserClient
	Domain  string
	Region  string
}

func (s *DDGSearcher) Search(ctx context.Context, query string, limit int) ([]discovery.SearchHit, error) {
	results, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, func() ([]engine.SearxngResult, error) {
		return engine.SearchDDGDirect(ctx, s.Browser, siteQuery(s.Domain, query), s.Region)
	})
	if err != nil {
		return nil, err
	}
	return toHits(results, limit), nil
}

// StartpageSearcher searches the social domain through Startpage.
type StartpageSearcher struct {
	Browser *engine.BrowserClient
	Domain  string
}

func (s *StartpageSearcher) Search(ctx context.Context, query string, limit int) ([]discovery.SearchHit, error) {
	results, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, func() ([]engine.SearxngResult, error) {
		return engine.SearchStartpageDirect(ctx, s.Browser, siteQuery(s.Domain, query), "english")
	})
	if err != nil {
		return nil, err
	}
	return toHits(results, limit), nil
}

// FallbackSearcher tries each searcher in order until one returns hits.
// It fails only when every searcher failed.
type FallbackSearcher []discovery.KeywordSearcher

func (f FallbackSearcher) Search(ctx context.Context, query string, limit int) ([]discovery.SearchHit, error) {
	var errs []error
	for _, s := range f {
		hits, err := s.Search(ctx, query, limit)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(hits) > 0 {
			return hits, nil
		}
	}
	if len(errs) == len(f) && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}

// TwitterSearcher finds social profile links shared in tweets about the query.
type TwitterSearcher struct {
	Client *twitter.Client
	Domain string
}

func (s *TwitterSearcher) Search(ctx context.Context, query string, limit int) ([]discovery.SearchHit, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("twitter client not configured")
	}
	engine.IncrTwitterSearch()
	tweets, err := s.Client.SearchTimeline(ctx, query+" "+s.Domain, max(limit*3, 20))
	if err != nil {
		return nil, fmt.Errorf("twitter search: %w", err)
	}

	posts := make([]tweetText, 0, len(tweets))
	for _, t := range tweets {
		posts = append(posts, tweetText{ID: t.ID, Text: t.Text})
	}
	hits := linkHits(posts, s.Domain, limit)
	slog.Debug("twitter handle search", slog.String("query", query), slog.Int("tweets", len(tweets)), slog.Int("links", len(hits)))
	return hits, nil
}

type tweetText struct {
	ID   string
	Text string
}

// linkHits extracts unique links to domain from tweet texts, in tweet order.
func linkHits(posts []tweetText, domain string, limit int) []discovery.SearchHit {
	linkRe := domainLinkRe(domain)
	var hits []discovery.SearchHit
	seen := make(map[string]bool)
	for _, p := range posts {
		for _, link := range linkRe.FindAllString(p.Text, -1) {
			key := strings.ToLower(link)
			if seen[key] {
				continue
			}
			seen[key] = true
			hits = append(hits, discovery.SearchHit{
				Title:   engine.TruncateRunes(strings.TrimSpace(p.Text), 120, "..."),
				URL:     "https://" + link,
				Snippet: "https://x.com/i/status/" + p.ID,
			})
			if limit > 0 && len(hits) >= limit {
				return hits
			}
		}
	}
	return hits
}

// domainLinkRe matches links to domain and its subdomains, without the scheme.
func domainLinkRe(domain string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:[a-z0-9-]+\.)*` + regexp.QuoteMeta(domain) + `/[^\s"'<>)]+`)
}
