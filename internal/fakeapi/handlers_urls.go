package fakeapi

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

type analyzeRequest struct {
	URL string `json:"url"`
}

func (s *Server) AnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, ok := currentUser(r)
		if !ok {
			writeError(w, http.StatusForbidden, "Not authenticated")
			return
		}

		var req analyzeRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, validationIssue{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"})
			return
		}
		if !validHTTPURL(req.URL) {
			writeValidationError(w, validationIssue{
				Loc:  []string{"body", "url"},
				Msg:  "Input should be a valid URL",
				Type: "url_parsing",
			})
			return
		}

		words, err := s.analyzer.Analyze(r.Context(), req.URL)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to analyze URL: "+err.Error())
			return
		}

		saved := s.db.addAnalysis(analysis{
			URL:        req.URL,
			TopWords:   words,
			AnalyzedAt: s.nowTime(),
			UserID:     current.ID,
		})
		writeJSON(w, http.StatusCreated, s.analysisResponse(saved))
	}
}

// HistoryHandler serves a page of analyses, newest first. With all set every
// user's analyses are listed and no token is needed.
func (s *Server) HistoryHandler(all bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, size, issues := pageParams(r.URL.Query())
		if len(issues) > 0 {
			writeValidationError(w, issues...)
			return
		}

		userID := 0
		if !all {
			current, ok := currentUser(r)
			if !ok {
				writeError(w, http.StatusForbidden, "Not authenticated")
				return
			}
			userID = current.ID
		}

		found, total := s.db.historyPage(userID, page, size)
		items := make([]analysisResponse, 0, len(found))
		for _, a := range found {
			items = append(items, s.analysisResponse(a))
		}

		pages := 1
		if total > 0 {
			pages = (total + size - 1) / size
		}
		writeJSON(w, http.StatusOK, historyResponse{Items: items, Total: total, Page: page, Size: size, Pages: pages})
	}
}

func (s *Server) analysisResponse(a analysis) analysisResponse {
	resp := analysisResponse{
		ID:         a.ID,
		URL:        a.URL,
		TopWords:   a.TopWords,
		AnalyzedAt: formatTime(a.AnalyzedAt),
	}
	if resp.TopWords == nil {
		resp.TopWords = []WordCount{}
	}
	if u, ok := s.db.userByID(a.UserID); ok {
		owner := newUserResponse(u)
		resp.User = &owner
	}
	return resp
}

func pageParams(q url.Values) (int, int, []validationIssue) {
	var issues []validationIssue
	page := queryInt(q, "page", defaultPage, 1, 0, &issues)
	size := queryInt(q, "size", defaultPageSize, 1, maxPageSize, &issues)
	return page, size, issues
}

// queryInt reads an integer query parameter bounded by lo and, when non-zero, hi.
func queryInt(q url.Values, name string, def, lo, hi int, issues *[]validationIssue) int {
	raw := q.Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		*issues = append(*issues, validationIssue{Loc: []string{"query", name}, Msg: "Input should be a valid integer", Type: "int_parsing"})
	case v < lo:
		*issues = append(*issues, validationIssue{Loc: []string{"query", name}, Msg: "Input should be greater than or equal to " + strconv.Itoa(lo), Type: "greater_than_equal"})
	case hi > 0 && v > hi:
		*issues = append(*issues, validationIssue{Loc: []string{"query", name}, Msg: "Input should be less than or equal to " + strconv.Itoa(hi), Type: "less_than_equal"})
	}
	return v
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
