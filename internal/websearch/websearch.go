// Package websearch grounds queries in live web results, either through
// the Google Custom Search JSON API or a scraping fallback whose raw
// page text is filtered sentence by sentence against the query
// embedding.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ragchat/internal/domain"
	"ragchat/internal/ranker"
)

// Scraped sentences are noisier than pre-chunked document text, hence
// the looser threshold than document search uses.
const (
	defaultThreshold    = 0.5
	defaultMaxResults   = 2
	defaultMaxSentences = 50
)

var sentenceSplitRe = regexp.MustCompile(`(?m)(?U)([^.!?؟]+[.!?؟])`)

// Searcher implements domain.WebSearcher.
type Searcher struct {
	apiKey       string
	cx           string
	provider     domain.EmbeddingProvider
	client       *http.Client
	apiBase      string
	scrapeBase   string
	maxResults   int
	threshold    float64
	maxSentences int
}

// Config configures the searcher. APIKey and CX enable API mode; when
// either is empty the searcher scrapes result pages instead, using
// provider to keep only sentences relevant to the query.
type Config struct {
	APIKey     string
	CX         string
	Provider   domain.EmbeddingProvider
	Timeout    time.Duration
	MaxResults int

	// Overridable endpoints.
	APIBase    string
	ScrapeBase string
}

func New(cfg Config) *Searcher {
	t := cfg.Timeout
	if t == 0 {
		t = 10 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.APIBase == "" {
		cfg.APIBase = "https://www.googleapis.com/customsearch/v1"
	}
	if cfg.ScrapeBase == "" {
		cfg.ScrapeBase = "https://www.google.com/search"
	}
	return &Searcher{
		apiKey:       cfg.APIKey,
		cx:           cfg.CX,
		provider:     cfg.Provider,
		client:       &http.Client{Timeout: t},
		apiBase:      cfg.APIBase,
		scrapeBase:   cfg.ScrapeBase,
		maxResults:   cfg.MaxResults,
		threshold:    defaultThreshold,
		maxSentences: defaultMaxSentences,
	}
}

// Search returns relevant snippets for query, or "" when nothing
// relevant was found.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	if s.apiKey != "" && s.cx != "" {
		return s.searchAPI(ctx, query)
	}
	return s.searchScrape(ctx, query)
}

func (s *Searcher) searchAPI(ctx context.Context, query string) (string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("key", s.apiKey)
	q.Set("cx", s.cx)
	q.Set("num", fmt.Sprint(s.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("custom search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("custom search returned %s", resp.Status)
	}

	var out struct {
		Items []struct {
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("custom search: %w", err)
	}
	if len(out.Items) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for i, item := range out.Items {
		snippet := item.Snippet
		if runes := []rune(snippet); len(runes) > 500 {
			snippet = string(runes[:500]) + "..."
		}
		fmt.Fprintf(&sb, "نتیجه %d:\nمحتوا: %s\n\n", i+1, snippet)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (s *Searcher) searchScrape(ctx context.Context, query string) (string, error) {
	links, err := s.resultLinks(ctx, query)
	if err != nil {
		return "", err
	}
	if len(links) == 0 {
		return "", nil
	}
	var sb strings.Builder
	n := 0
	for _, link := range links {
		text, err := s.pageText(ctx, link)
		if err != nil {
			log.Printf("websearch: skipping %s: %v", link, err)
			continue
		}
		relevant, err := s.filterRelevant(ctx, text, query)
		if err != nil {
			return "", err
		}
		if relevant == "" {
			continue
		}
		n++
		fmt.Fprintf(&sb, "نتیجه %d:\nمحتوا: %s\n\n", n, relevant)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (s *Searcher) resultLinks(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("num", fmt.Sprint(s.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.scrapeBase+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("result page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("result page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	var links []string
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, "/url?q=") {
			return true
		}
		target := strings.SplitN(strings.SplitN(href, "/url?q=", 2)[1], "&", 2)[0]
		if decoded, err := url.QueryUnescape(target); err == nil {
			target = decoded
		}
		links = append(links, target)
		return len(links) < s.maxResults
	})
	return links, nil
}

func (s *Searcher) pageText(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// filterRelevant keeps sentences whose embedding lands within the
// relevance threshold of the query embedding, capped at maxSentences.
func (s *Searcher) filterRelevant(ctx context.Context, text, query string) (string, error) {
	if s.provider == nil {
		return text, nil
	}
	queryVec, err := s.provider.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}
	sentences := sentenceSplitRe.FindAllString(text, -1)
	var kept []string
	for _, sentence := range sentences {
		if len(kept) >= s.maxSentences {
			break
		}
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		vec, err := s.provider.Embed(ctx, sentence)
		if err != nil || len(vec) == 0 {
			continue
		}
		sim, err := ranker.Cosine(queryVec, vec)
		if err != nil {
			return "", err
		}
		if sim >= s.threshold {
			kept = append(kept, sentence)
		}
	}
	return strings.Join(kept, " "), nil
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
