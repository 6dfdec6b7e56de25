package fakeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopWords(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		topN    int
		want    []WordCount
		wantErr string
	}{
		{
			name: "counts and orders by frequency then first appearance",
			text: "Beta alpha beta gamma ALPHA beta delta",
			topN: 3,
			want: []WordCount{{"beta", 3}, {"alpha", 2}, {"gamma", 1}},
		},
		{
			name: "drops stop words, web words and short words",
			text: "the www com is an ox golang https",
			topN: 5,
			want: []WordCount{{"golang", 1}},
		},
		{
			name: "ignores words glued to digits",
			text: "abc123 golang",
			topN: 5,
			want: []WordCount{{"golang", 1}},
		},
		{
			name:    "nothing left",
			text:    "the and of",
			topN:    5,
			wantErr: "no meaningful words",
		},
		{
			name:    "invalid top n",
			text:    "golang",
			topN:    0,
			wantErr: "positive integer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := topWords(tt.text, tt.topN)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTextSkipsNonContent(t *testing.T) {
	text, err := extractText(strings.NewReader(testPage))
	require.NoError(t, err)
	assert.NotContains(t, text, "gopher")
	assert.NotContains(t, text, "var golang")
	assert.Contains(t, text, "Golang channels and golang goroutines.")

	_, err = extractText(strings.NewReader("<html><script>x</script></html>"))
	assert.Error(t, err)
}

func TestHTTPAnalyzer(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(testPage))
	}))
	defer site.Close()

	a := NewHTTPAnalyzer(site.Client(), 1)
	words, err := a.Analyze(context.Background(), site.URL)
	require.NoError(t, err)
	assert.Equal(t, []WordCount{{"golang", 3}}, words)

	_, err = a.Analyze(context.Background(), site.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error 404")
}

func TestHTTPAnalyzerContentLimit(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("golang ", 100)))
	}))
	defer site.Close()

	a := NewHTTPAnalyzer(site.Client(), 5)
	a.maxContentSize = 64
	_, err := a.Analyze(context.Background(), site.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum allowed size")
}
