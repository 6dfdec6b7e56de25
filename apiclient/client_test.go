package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/web-analyzer-client/apiclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) AccessToken(context.Context) string { return string(s) }

type echo struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Query       string            `json:"query"`
	Auth        string            `json:"auth"`
	ContentType string            `json:"content_type"`
	Body        string            `json:"body"`
	Form        map[string]string `json:"form"`
	Headers     map[string]string `json:"headers"`
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e := echo{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.RawQuery,
			Auth:        r.Header.Get("Authorization"),
			ContentType: r.Header.Get("Content-Type"),
			Headers:     map[string]string{"accept": r.Header.Get("Accept"), "x-request-id": r.Header.Get("X-Request-ID")},
		}
		if strings.HasPrefix(e.ContentType, "multipart/form-data") {
			_ = r.ParseMultipartForm(1 << 20)
			e.Form = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				e.Form[k] = v[0]
			}
		} else {
			b, _ := io.ReadAll(r.Body)
			e.Body = string(b)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(e)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func statusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPostJSONWithBearerToken(t *testing.T) {
	srv := echoServer(t)
	c, err := apiclient.New(srv.URL+"/api/v1", apiclient.WithTokenSource(staticToken("tok1")))
	require.NoError(t, err)

	got, err := apiclient.Post[echo](context.Background(), c, "/urls/analyze", map[string]string{"url": "https://example.com"}, &apiclient.RequestConfig{
		Headers: map[string]string{"accept": "application/json"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/v1/urls/analyze", got.Path)
	assert.Equal(t, "Bearer tok1", got.Auth)
	assert.Equal(t, "application/json", got.ContentType)
	assert.JSONEq(t, `{"url":"https://example.com"}`, got.Body)
	assert.Equal(t, "application/json", got.Headers["accept"])
	assert.NotEmpty(t, got.Headers["x-request-id"])
}

func TestNoTokenProceedsUnauthenticated(t *testing.T) {
	srv := echoServer(t)
	for name, opts := range map[string][]apiclient.ClientOption{
		"no source":    nil,
		"empty source": {apiclient.WithTokenSource(staticToken(""))},
	} {
		t.Run(name, func(t *testing.T) {
			c, err := apiclient.New(srv.URL, opts...)
			require.NoError(t, err)
			got, err := apiclient.Get[echo](context.Background(), c, "/urls/history", nil)
			require.NoError(t, err)
			assert.Empty(t, got.Auth)
		})
	}
}

func TestGetAndDeleteNeverSendBody(t *testing.T) {
	srv := echoServer(t)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		got, err := apiclient.Do[echo](context.Background(), c, method, "/x", map[string]string{"a": "b"}, nil)
		require.NoError(t, err)
		assert.Equal(t, method, got.Method)
		assert.Empty(t, got.Body)
	}
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
		got, err := apiclient.Do[echo](context.Background(), c, method, "/x", map[string]string{"a": "b"}, nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":"b"}`, got.Body)
	}
}

func TestFormEncoding(t *testing.T) {
	srv := echoServer(t)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	var missing *string
	got, err := apiclient.Post[echo](context.Background(), c, "/upload", map[string]any{
		"name":    "report",
		"count":   3,
		"skip":    nil,
		"pointer": missing,
	}, &apiclient.RequestConfig{UseFormData: true})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got.ContentType, "multipart/form-data; boundary="))
	assert.Equal(t, map[string]string{"name": "report", "count": "3"}, got.Form)
}

func TestFormEncodingFromStruct(t *testing.T) {
	srv := echoServer(t)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	payload := struct {
		Username string `json:"username"`
		Email    string `json:"email,omitempty"`
	}{Username: "alice"}

	got, err := apiclient.Put[echo](context.Background(), c, "/profile", payload, &apiclient.RequestConfig{UseFormData: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"username": "alice"}, got.Form)
}

func TestHTTPErrorPrefersServerMessage(t *testing.T) {
	srv := statusServer(t, http.StatusUnauthorized, `{"message":"bad credentials"}`)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	_, err = apiclient.Post[map[string]any](context.Background(), c, "/auth/login", map[string]string{}, nil)
	require.Error(t, err)

	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, "bad credentials", apiErr.Message)
	assert.Equal(t, map[string]any{"message": "bad credentials"}, apiErr.RawBody)
	assert.True(t, apiErr.IsUnauthorized())
}

func TestHTTPErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		raw     any
	}{
		{name: "detail field", status: 400, body: `{"detail":"Username already registered"}`, message: "Username already registered", raw: map[string]any{"detail": "Username already registered"}},
		{name: "non string detail", status: 422, body: `{"detail":[{"msg":"field required"}]}`, message: "HTTP 422"},
		{name: "unparsable body", status: 500, body: `<html>oops</html>`, message: "HTTP 500", raw: map[string]any{}},
		{name: "empty body", status: 404, body: ``, message: "HTTP 404", raw: map[string]any{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := statusServer(t, tc.status, tc.body)
			c, err := apiclient.New(srv.URL)
			require.NoError(t, err)

			_, err = apiclient.Get[map[string]any](context.Background(), c, "/x", nil)
			apiErr, ok := apiclient.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.message, apiErr.Message)
			if tc.raw != nil {
				assert.Equal(t, tc.raw, apiErr.RawBody)
			}
		})
	}
}

func TestNetworkErrorIsNormalized(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := apiclient.New(url)
	require.NoError(t, err)

	_, err = apiclient.Get[map[string]any](context.Background(), c, "/urls/history", nil)
	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, apiclient.NetworkErrorMessage, apiErr.Message)
	assert.True(t, apiErr.IsNetwork())
	assert.NotNil(t, errors.Unwrap(apiErr))
}

func TestTimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c, err := apiclient.New(srv.URL, apiclient.WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	require.NoError(t, err)

	_, err = apiclient.Get[map[string]any](context.Background(), c, "/slow", nil)
	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 0, apiErr.StatusCode)
}

func TestSerializationFailureIsNetworkError(t *testing.T) {
	srv := echoServer(t)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	_, err = apiclient.Post[echo](context.Background(), c, "/x", map[string]any{"bad": make(chan int)}, nil)
	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 0, apiErr.StatusCode)
}

func TestUndecodableSuccessBodyIsNetworkError(t *testing.T) {
	srv := statusServer(t, http.StatusOK, `not json`)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	_, err = apiclient.Get[map[string]any](context.Background(), c, "/x", nil)
	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 0, apiErr.StatusCode)
}

func TestEmptySuccessBodyYieldsZeroValue(t *testing.T) {
	srv := statusServer(t, http.StatusNoContent, ``)
	c, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	got, err := apiclient.Delete[map[string]any](context.Background(), c, "/x", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMetricsRecorded(t *testing.T) {
	srv := statusServer(t, http.StatusOK, `{}`)
	reg := prometheus.NewRegistry()
	c, err := apiclient.New(srv.URL, apiclient.WithMetrics(reg))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := apiclient.Get[map[string]any](context.Background(), c, "/urls/history", nil)
		require.NoError(t, err)
	}

	count, err := testutil.GatherAndCount(reg, "web_analyzer_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = apiclient.New(srv.URL, apiclient.WithMetrics(reg))
	require.Error(t, err, "registering twice on one registry must fail")
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := apiclient.New("")
	require.Error(t, err)
}
