package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const startpageEndpoint = "https://www.startpage.com/sp/search"

// SearchStartpageDirect queries Startpage with the browser TLS client.
func SearchStartpageDirect(ctx context.Context, bc *BrowserClient, query, language string) ([]SearxngResult, error) {
	if bc == nil {
		return nil, fmt.Errorf("startpage: browser client not configured")
	}
	if language == "" {
		language = "english"
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.DirectStartpageRequests.Add(1)

	form := url.Values{"query": {query}, "cat": {"web"}, "language": {language}}

	headers := ChromeHeaders()
	headers["referer"] = "https://www.startpage.com/"
	headers["content-type"] = "application/x-www-form-urlencoded"

	data, _, status, err := bc.Do("POST", startpageEndpoint, headers, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("startpage request: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("startpage status %d", status)
	}

	results, err := parseStartpageHTML(data)
	if err != nil {
		return nil, err
	}
	slog.Debug("startpage direct results", slog.String("query", query), slog.Int("count", len(results)))
	return results, nil
}

// parseStartpageHTML extracts organic results; startpage.com/do/ links are ads.
func parseStartpageHTML(data []byte) ([]SearxngResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}

	var results []SearxngResult
	doc.Find(".w-gl__result, .result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.w-gl__result-title, h3 a, a.result-link").First()
		href, _ := link.Attr("href")
		if !strings.HasPrefix(href, "http") || strings.Contains(href, "startpage.com/do/") {
			return
		}
		results = append(results, SearxngResult{
			Title:   strings.TrimSpace(link.Text()),
			Content: strings.TrimSpace(s.Find(".w-gl__description, p.result-description").First().Text()),
			URL:     href,
			Score:   1.0,
		})
	})
	return results, nil
}
