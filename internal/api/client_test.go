package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() (string, bool) {
	return string(s), s != ""
}

type recorded struct {
	mu      sync.Mutex
	headers []http.Header
	paths   []string
	bodies  []string
}

func (r *recorded) last() (http.Header, string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.headers) - 1
	return r.headers[n], r.paths[n], r.bodies[n]
}

// newTestServer records each request and replies with status and body
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)

		rec.mu.Lock()
		rec.headers = append(rec.headers, r.Header.Clone())
		rec.paths = append(rec.paths, r.Method+" "+r.URL.RequestURI())
		rec.bodies = append(rec.bodies, string(raw))
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

type user struct {
	ID    int64  `json:"id" validate:"required"`
	Email string `json:"email" validate:"required"`
}

func TestClient_GetDecodesAndInjectsBearer(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `[{"id":1,"email":"a@odg.test"},{"id":2,"email":"b@odg.test"}]`)

	c := New(srv.URL)
	c.SetTokenSource(staticToken("tok-123"))

	users, err := Get[[]user](context.Background(), c, "admin/users")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "b@odg.test", users[1].Email)

	header, path, _ := rec.last()
	assert.Equal(t, "GET /admin/users", path)
	assert.Equal(t, "Bearer tok-123", header.Get("Authorization"))
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.NotEmpty(t, header.Get("X-Request-ID"))
}

func TestClient_CallerAuthorizationWins(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{}`)

	c := New(srv.URL)
	c.SetTokenSource(staticToken("persisted"))

	_, err := Get[map[string]any](context.Background(), c, "/auth/me", WithHeader("Authorization", "Bearer caller"))
	require.NoError(t, err)

	header, _, _ := rec.last()
	assert.Equal(t, "Bearer caller", header.Get("Authorization"))
}

func TestClient_CallerContentTypeWins(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{}`)

	c := New(srv.URL)
	_, err := Post[map[string]any](context.Background(), c, "/admin/settings", map[string]string{"key": "k"},
		WithHeader("Content-Type", "application/merge-patch+json"))
	require.NoError(t, err)

	header, _, body := rec.last()
	assert.Equal(t, "application/merge-patch+json", header.Get("Content-Type"))
	assert.JSONEq(t, `{"key":"k"}`, body)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{}`)

	c := New(srv.URL)
	c.SetTokenSource(staticToken(""))

	_, err := Get[map[string]any](context.Background(), c, "/vendors")
	require.NoError(t, err)

	header, _, _ := rec.last()
	assert.Empty(t, header.Get("Authorization"))
}

func TestClient_WithoutAuth(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{}`)

	c := New(srv.URL)
	c.SetTokenSource(staticToken("stale"))

	_, err := Post[map[string]any](context.Background(), c, "/auth/login", map[string]string{}, WithoutAuth())
	require.NoError(t, err)

	header, _, _ := rec.last()
	assert.Empty(t, header.Get("Authorization"))
}

func TestClient_RequestErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantBody    bool
	}{
		{"message field", http.StatusNotFound, `{"message":"Not found"}`, "Not found", true},
		{"errors array", http.StatusUnprocessableEntity, `{"errors":[{"msg":"Email required"},{"msg":"Password too short"}]}`, "Email required, Password too short", true},
		{"message beats errors", http.StatusBadRequest, `{"message":"Bad","errors":[{"msg":"x"}]}`, "Bad", true},
		{"unparseable body", http.StatusInternalServerError, `<html>oops</html>`, "Request failed", false},
		{"empty body", http.StatusBadGateway, ``, "Request failed", false},
		{"json null body", http.StatusInternalServerError, `null`, "Request failed", false},
		{"object without fields", http.StatusUnauthorized, `{"error":"invalid credentials"}`, "Request failed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.status, tt.body)
			c := New(srv.URL)

			_, err := Get[map[string]any](context.Background(), c, "/x")
			require.Error(t, err)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, tt.wantMessage, reqErr.Message)
			if tt.wantBody {
				assert.JSONEq(t, tt.body, string(reqErr.Body))
			} else {
				assert.Nil(t, reqErr.Body)
			}
		})
	}
}

func TestClient_ShapeError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `[{"id":1}]`)
	c := New(srv.URL)

	_, err := Get[[]user](context.Background(), c, "/admin/users")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedShape))

	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr), "shape errors are not request errors")

	srv2, _ := newTestServer(t, http.StatusOK, `{"id":"one"}`)
	_, err = Get[user](context.Background(), New(srv2.URL), "/me")
	assert.True(t, errors.Is(err, ErrUnexpectedShape))
}

func TestClient_NoContent(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusNoContent, ``)
	c := New(srv.URL)

	out, err := Delete[*user](context.Background(), c, "/vendors/1/menu/9")
	require.NoError(t, err)
	assert.Nil(t, out)

	_, path, _ := rec.last()
	assert.Equal(t, "DELETE /vendors/1/menu/9", path)
}

func TestClient_RelativeUsesOrigin(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK, `{"id":5,"email":"v@odg.test"}`)
	origin, err := url.Parse(srv.URL)
	require.NoError(t, err)

	c := New("", WithOrigin(origin))
	got, err := Put[user](context.Background(), c, "/vendors/profile", map[string]string{"name": "Grill"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)

	_, path, _ := rec.last()
	assert.Equal(t, "PUT /vendors/profile", path)
}

func TestClient_RelativeWithoutOrigin(t *testing.T) {
	c := New("")
	_, err := Get[map[string]any](context.Background(), c, "/orders")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs an origin")
}

func TestClient_TransportErrorIsNotRequestError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{}`)
	srv.Close()

	_, err := Get[map[string]any](context.Background(), New(srv.URL), "/orders")
	require.Error(t, err)

	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
	assert.Contains(t, err.Error(), "failed to send request")
}

func TestClient_SendsCookies(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "s-1", Path: "/"})
		} else if c, err := r.Cookie("sid"); err == nil {
			gotCookie = c.Value
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := Post[map[string]any](context.Background(), c, "/auth/login", map[string]string{})
	require.NoError(t, err)
	_, err = Get[map[string]any](context.Background(), c, "/vendors")
	require.NoError(t, err)

	assert.Equal(t, "s-1", gotCookie)
}

func TestRequestError_Error(t *testing.T) {
	err := &RequestError{StatusCode: 404, Message: "Not found"}
	assert.Equal(t, "Not found (status 404)", err.Error())
}
