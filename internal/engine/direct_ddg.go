package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const ddgHTMLEndpoint = "https://html.duckduckgo.com/html/"

// SearchDDGDirect queries the DuckDuckGo HTML lite endpoint using the browser TLS client.
func SearchDDGDirect(ctx context.Context, bc *BrowserClient, query, region string) ([]SearxngResult, error) {
	if bc == nil {
		return nil, fmt.Errorf("ddg: browser client not configured")
	}
	if region == "" {
		region = "us-en"
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.DirectDDGRequests.Add(1)

	formBody := fmt.Sprintf("q=%s&kl=%s&df=", url.QueryEscape(query), url.QueryEscape(region))

	headers := ChromeHeaders()
	headers["referer"] = "https://html.duckduckgo.com/"
	headers["content-type"] = "application/x-www-form-urlencoded"

	data, _, status, err := bc.Do("POST", ddgHTMLEndpoint, headers, strings.NewReader(formBody))
	if err != nil {
		return nil, fmt.Errorf("ddg request: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("ddg html status %d", status)
	}

	results, err := parseDDGHTML(data)
	if err != nil {
		return nil, err
	}
	slog.Debug("ddg direct results", slog.String("query", query), slog.Int("count", len(results)))
	return results, nil
}

// parseDDGHTML extracts search results from a DDG HTML lite page.
func parseDDGHTML(data []byte) ([]SearxngResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}

	var results []SearxngResult
	doc.Find(".result, .web-result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.result__a, .result__title a, a.result-link").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		href = ddgUnwrapURL(href)
		if href == "" {
			return
		}
		results = append(results, SearxngResult{
			Title:   strings.TrimSpace(link.Text()),
			Content: strings.TrimSpace(s.Find(".result__snippet, .result__body").First().Text()),
			URL:     href,
			Score:   1.0,
		})
	})
	return results, nil
}

// ddgUnwrapURL extracts the target from DDG redirect links
// (//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com&rut=...).
func ddgUnwrapURL(href string) string {
	if strings.Contains(href, "duckduckgo.com/l/") || strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if uddg := u.Query().Get("uddg"); uddg != "" {
				return uddg
			}
		}
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}
