package fakeapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

const (
	defaultFetchTimeout   = 10 * time.Second
	defaultMaxContentSize = 5 << 20
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

var wordPattern = regexp.MustCompile(`\b[a-z]{3,}\b`)

// skippedElements never contribute text to an analysis.
var skippedElements = map[string]bool{
	"script": true, "style": true, "meta": true, "link": true,
	"noscript": true, "header": true, "footer": true, "nav": true,
}

var stopWords = func() map[string]bool {
	words := strings.Fields(`
		i me my myself we our ours ourselves you you're you've you'll you'd your yours
		yourself yourselves he him his himself she she's her hers herself it it's its
		itself they them their theirs themselves what which who whom this that that'll
		these those am is are was were be been being have has had having do does did
		doing a an the and but if or because as until while of at by for with about
		against between into through during before after above below to from up down
		in out on off over under again further then once here there when where why how
		all any both each few more most other some such no nor not only own same so
		than too very s t can will just don don't should should've now d ll m o re ve
		y ain aren aren't couldn couldn't didn didn't doesn doesn't hadn hadn't hasn
		hasn't haven haven't isn isn't ma mightn mightn't mustn mustn't needn needn't
		shan shan't shouldn shouldn't wasn wasn't weren weren't won won't wouldn wouldn't
		com www http https html php asp htm`)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}()

// Analyzer produces the most frequent words of the page at a URL.
type Analyzer interface {
	Analyze(ctx context.Context, url string) ([]WordCount, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, url string) ([]WordCount, error)

func (f AnalyzerFunc) Analyze(ctx context.Context, url string) ([]WordCount, error) {
	return f(ctx, url)
}

// StaticAnalyzer answers every URL by analysing the same HTML document.
func StaticAnalyzer(document string, topN int) Analyzer {
	return AnalyzerFunc(func(_ context.Context, _ string) ([]WordCount, error) {
		text, err := extractText(strings.NewReader(document))
		if err != nil {
			return nil, err
		}
		return topWords(text, topN)
	})
}

// HTTPAnalyzer fetches pages over HTTP and counts their visible words.
type HTTPAnalyzer struct {
	client         *http.Client
	topN           int
	maxContentSize int64
	userAgent      string
}

// NewHTTPAnalyzer creates an analyzer returning the topN most frequent
// words. A nil client gets a 10 second timeout.
func NewHTTPAnalyzer(client *http.Client, topN int) *HTTPAnalyzer {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &HTTPAnalyzer{
		client:         client,
		topN:           topN,
		maxContentSize: defaultMaxContentSize,
		userAgent:      defaultUserAgent,
	}
}

func (a *HTTPAnalyzer) Analyze(ctx context.Context, url string) ([]WordCount, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("HTTP error %d while fetching URL: %s", resp.StatusCode, url)
	}
	if resp.ContentLength > a.maxContentSize {
		return nil, fmt.Errorf("content size (%d bytes) exceeds maximum allowed size (%d bytes)", resp.ContentLength, a.maxContentSize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxContentSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if int64(len(body)) > a.maxContentSize {
		return nil, fmt.Errorf("content size exceeds maximum allowed size (%d bytes)", a.maxContentSize)
	}

	text, err := extractText(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	return topWords(text, a.topN)
}

// extractText returns the visible text of an HTML document.
func extractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", errors.Wrap(err, "parse html")
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	text := strings.Join(strings.Fields(sb.String()), " ")
	if text == "" {
		return "", errors.New("no readable text content found in the webpage")
	}
	return text, nil
}

// topWords counts lower-cased words of three or more letters that are not
// stop words. Ties keep the order of first appearance.
func topWords(text string, topN int) ([]WordCount, error) {
	if topN <= 0 {
		return nil, errors.New("top_n must be a positive integer")
	}

	counts := make(map[string]int)
	var order []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if stopWords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	if len(order) == 0 {
		return nil, errors.New("no meaningful words found for analysis after filtering")
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topN {
		order = order[:topN]
	}

	result := make([]WordCount, 0, len(order))
	for _, w := range order {
		result = append(result, WordCount{Word: w, Count: counts[w]})
	}
	return result, nil
}
