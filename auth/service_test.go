package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/web-analyzer-client/apiclient"
	"github.com/jrsteele09/web-analyzer-client/auth"
	"github.com/jrsteele09/web-analyzer-client/kvstore/repofake"
	"github.com/jrsteele09/web-analyzer-client/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

// stubAPI answers each path with a fixed status and body and records requests.
type stubAPI struct {
	responses map[string]stubResponse
	requests  []recordedRequest
	mu        sync.Mutex
}

type stubResponse struct {
	status int
	body   string
}

func newStubAPI(t *testing.T, responses map[string]stubResponse) (*stubAPI, *httptest.Server) {
	t.Helper()
	s := &stubAPI{responses: responses}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.Body)
		}
		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()

		resp, ok := s.responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = io.WriteString(w, resp.body)
	}))
	t.Cleanup(srv.Close)
	return s, srv
}

func newService(t *testing.T, baseURL string, options ...apiclient.ClientOption) *auth.Service {
	t.Helper()
	c, err := apiclient.New(baseURL, options...)
	require.NoError(t, err)
	s, err := auth.NewService(c)
	require.NoError(t, err)
	return s
}

func TestServiceLogin(t *testing.T) {
	api, srv := newStubAPI(t, map[string]stubResponse{
		"/api/v1/auth/login": {status: 200, body: `{"access_token":"tok1","refresh_token":"r1","token_type":"bearer","user":{"id":1,"username":"alice","email":"a@x.com","created_at":"2025-07-27T15:41:48"}}`},
	})
	s := newService(t, srv.URL+"/api/v1")

	resp, err := s.Login(context.Background(), auth.LoginRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok1", resp.AccessToken)
	assert.Equal(t, "r1", resp.RefreshToken)
	assert.Equal(t, "1", resp.User.ID.String())

	require.Len(t, api.requests, 1)
	assert.Equal(t, http.MethodPost, api.requests[0].Method)
	assert.Equal(t, map[string]any{"username": "alice", "password": "secret"}, api.requests[0].Body)
}

func TestServiceRegister(t *testing.T) {
	api, srv := newStubAPI(t, map[string]stubResponse{
		"/auth/register": {status: 201, body: `{"id":7,"username":"alice","email":"a@x.com","created_at":"2025-07-27T15:41:48"}`},
	})
	s := newService(t, srv.URL)

	resp, err := s.Register(context.Background(), auth.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "7", resp.ID.String())
	assert.Equal(t, "2025-07-27T15:41:48", resp.CreatedAt)
	assert.Equal(t, map[string]any{"username": "alice", "email": "a@x.com", "password": "secret"}, api.requests[0].Body)
}

func TestServiceRegisterRejected(t *testing.T) {
	_, srv := newStubAPI(t, map[string]stubResponse{
		"/auth/register": {status: 400, body: `{"detail":"Email already registered"}`},
	})
	s := newService(t, srv.URL)

	_, err := s.Register(context.Background(), auth.RegisterRequest{})
	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "Email already registered", apiErr.Message)
}

func TestServiceLogoutIsBestEffort(t *testing.T) {
	api, srv := newStubAPI(t, map[string]stubResponse{
		"/auth/logout": {status: 400, body: `{"detail":"Invalid refresh token"}`},
	})
	s := newService(t, srv.URL)

	require.NotPanics(t, func() { s.Logout(context.Background(), "") })
	s.Logout(context.Background(), "r1")

	require.Len(t, api.requests, 2)
	assert.Empty(t, api.requests[0].Body, "empty refresh token sends {}")
	assert.Equal(t, "r1", api.requests[1].Body["refresh_token"])
}

func TestServiceRefresh(t *testing.T) {
	api, srv := newStubAPI(t, map[string]stubResponse{
		"/auth/refresh": {status: 200, body: `{"access_token":"tok2","refresh_token":"r2","token_type":"bearer"}`},
	})
	s := newService(t, srv.URL)

	resp, err := s.Refresh(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "tok2", resp.AccessToken)
	assert.Equal(t, "r1", api.requests[0].Body["refresh_token"])
}

func TestNewServiceRequiresClient(t *testing.T) {
	_, err := auth.NewService(nil)
	require.Error(t, err)
}

// Login as alice against a stub service, then check that the stored token is
// attached to the next request.
func TestLoginEndToEnd(t *testing.T) {
	ctx := context.Background()
	api, srv := newStubAPI(t, map[string]stubResponse{
		"/auth/login":   {status: 200, body: `{"access_token":"tok1","token_type":"Bearer","user":{"id":"1","username":"alice","email":"a@x.com"}}`},
		"/urls/history": {status: 200, body: `{"items":[],"total":0,"page":1,"size":10,"pages":1}`},
	})

	store, err := sessions.NewStore(repofake.NewFakeStorage(), storageKey)
	require.NoError(t, err)
	client, err := apiclient.New(srv.URL, apiclient.WithTokenSource(store))
	require.NoError(t, err)
	service, err := auth.NewService(client)
	require.NoError(t, err)
	manager, err := auth.NewManager(service, store)
	require.NoError(t, err)
	manager.Start(ctx)

	_, err = manager.Login(ctx, auth.LoginRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, auth.Authenticated, manager.State())
	assert.Equal(t, "alice", manager.User().Username)

	record, ok := store.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "tok1", record.AccessToken)

	_, err = apiclient.Get[map[string]any](ctx, client, "/urls/history", nil)
	require.NoError(t, err)
	assert.Empty(t, api.requests[0].Auth, "login itself goes out without a token")
	assert.Equal(t, "Bearer tok1", api.requests[1].Auth)
}

func TestLoginEndToEndRejected(t *testing.T) {
	ctx := context.Background()
	_, srv := newStubAPI(t, map[string]stubResponse{
		"/auth/login": {status: 401, body: `{"message":"bad credentials"}`},
	})
	store, err := sessions.NewStore(repofake.NewFakeStorage(), storageKey)
	require.NoError(t, err)
	service := newService(t, srv.URL, apiclient.WithTokenSource(store))
	manager, err := auth.NewManager(service, store)
	require.NoError(t, err)

	_, err = manager.Login(ctx, auth.LoginRequest{Username: "alice", Password: "nope"})
	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, "bad credentials", manager.Err())
	assert.Equal(t, auth.Unauthenticated, manager.State())
}
