package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/hungrybot/internal/domain"
	"github.com/ashureev/hungrybot/internal/store"
)

func newRepo(t *testing.T) *store.SQLiteStore {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "identity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestMiddlewareIssuesIdentity(t *testing.T) {
	repo := newRepo(t)

	var gotUser, gotName, gotSession string
	h := Middleware(repo, true)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotName = UsernameFromContext(r.Context())
		gotSession = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/ws/chat?session_id=tab-1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, isValidAnonID(gotUser))
	assert.Equal(t, DeriveUsername(gotUser), gotName)
	assert.Equal(t, "tab-1", gotSession)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, AnonCookieName, cookies[0].Name)
	assert.Equal(t, gotUser, cookies[0].Value)

	user, err := repo.GetUser(context.Background(), gotUser)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, domain.UserSourceWebchat, user.Source)
	assert.Equal(t, gotName, user.Username)
}

func TestMiddlewareReusesCookie(t *testing.T) {
	repo := newRepo(t)
	id, err := generateAnonID()
	require.NoError(t, err)

	var gotUser string
	h := Middleware(repo, true)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AnonCookieName, Value: id})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, id, gotUser)
}

func TestSanitizeSessionID(t *testing.T) {
	assert.Equal(t, "tab-1", sanitizeSessionID(" tab-1 "))
	assert.Equal(t, DefaultSessionIDValue, sanitizeSessionID(""))
	assert.Equal(t, DefaultSessionIDValue, sanitizeSessionID("a:b"))
	assert.Equal(t, DefaultSessionIDValue, sanitizeSessionID("has space"))
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, UserIDFromContext(ctx))
	assert.Empty(t, UsernameFromContext(ctx))
	assert.Equal(t, DefaultSessionIDValue, SessionIDFromContext(ctx))
}
