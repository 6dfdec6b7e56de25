package urls

import (
	"github.com/jrsteele09/web-analyzer-client/internal/utils"
	"github.com/jrsteele09/web-analyzer-client/sessions"
)

// WordCount is one entry of an analysis, ordered as the server ranked it.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// AnalysisResult is one analyzed URL. AnalyzedAt is kept as the server sent it.
type AnalysisResult struct {
	ID         utils.FlexString       `json:"id"`
	URL        string                 `json:"url"`
	TopWords   []WordCount            `json:"top_words"`
	AnalyzedAt string                 `json:"analyzed_at"`
	User       *sessions.UserIdentity `json:"user,omitempty"`
}

// HistoryPage is one page of past analyses, exactly as paginated by the server.
type HistoryPage struct {
	Items []AnalysisResult `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
	Pages int              `json:"pages"`
}

type analyzeRequest struct {
	URL string `json:"url"`
}
