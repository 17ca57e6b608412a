package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventboard/backend/internal/models"
	"github.com/eventboard/backend/pkg/response"
	"github.com/eventboard/backend/pkg/utils"
)

// fakeStore is an in-memory auth.Store for handler tests.
type fakeStore struct {
	users  map[int64]*models.User
	tokens map[string]*models.RefreshToken
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[int64]*models.User),
		tokens: make(map[string]*models.RefreshToken),
		nextID: 1,
	}
}

func (f *fakeStore) addUser(email, password, orgID string, roles ...models.Role) *models.User {
	hash, _ := utils.HashPassword(password)
	u := &models.User{ID: f.nextID, Email: email, PasswordHash: hash, OrgID: orgID, Roles: roles}
	f.users[u.ID] = u
	f.nextID++
	return u
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (f *fakeStore) CreateUser(_ context.Context, email, passwordHash, orgID string, role models.Role) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return nil, ErrEmailTaken
		}
	}
	u := &models.User{ID: f.nextID, Email: email, PasswordHash: passwordHash, OrgID: orgID, Roles: []models.Role{role}}
	f.users[u.ID] = u
	f.nextID++
	return u, nil
}

func (f *fakeStore) SaveRefreshToken(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	f.tokens[token] = &models.RefreshToken{ID: int64(len(f.tokens) + 1), UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeStore) GetRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := f.tokens[token]; ok {
		return t, nil
	}
	return nil, ErrTokenNotFound
}

func setupAuthTest(t *testing.T) (*fakeStore, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := newFakeStore()
	handler := NewHandler(store, NewJWTService(testJWTConfig()), zap.NewNop())

	router := gin.New()
	router.POST("/auth/login", handler.Login)
	router.POST("/auth/refresh", handler.Refresh)
	router.POST("/auth/register", handler.Register)
	return store, router
}

func doJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeTokens(t *testing.T, w *httptest.ResponseRecorder) TokenResponse {
	t.Helper()
	var body struct {
		Success bool          `json:"success"`
		Data    TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	return body.Data
}

func TestLogin(t *testing.T) {
	store, router := setupAuthTest(t)
	store.addUser("user1@orga.com", "Password1!", "orgA", models.RoleUser)

	w := doJSON(t, router, "/auth/login", LoginRequest{Email: "user1@orga.com", Password: "Password1!"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeTokens(t, w)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "orgA", resp.OrgID)
	assert.Equal(t, []string{"User"}, resp.Roles)

	// the refresh token was persisted
	_, ok := store.tokens[resp.RefreshToken]
	assert.True(t, ok)
}

func TestLoginInvalidCredentials(t *testing.T) {
	store, router := setupAuthTest(t)
	store.addUser("user1@orga.com", "Password1!", "orgA", models.RoleUser)

	// wrong password and unknown email are indistinguishable
	w := doJSON(t, router, "/auth/login", LoginRequest{Email: "user1@orga.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, "/auth/login", LoginRequest{Email: "nobody@orga.com", Password: "Password1!"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshReusesTokenString(t *testing.T) {
	store, router := setupAuthTest(t)
	store.addUser("user1@orga.com", "Password1!", "orgA", models.RoleUser)

	login := decodeTokens(t, doJSON(t, router, "/auth/login",
		LoginRequest{Email: "user1@orga.com", Password: "Password1!"}))

	first := doJSON(t, router, "/auth/refresh", RefreshRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, http.StatusOK, first.Code)
	second := doJSON(t, router, "/auth/refresh", RefreshRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, http.StatusOK, second.Code)

	r1, r2 := decodeTokens(t, first), decodeTokens(t, second)
	// new access tokens each time, same still-valid refresh token string
	assert.NotEqual(t, r1.AccessToken, r2.AccessToken)
	assert.Equal(t, login.RefreshToken, r1.RefreshToken)
	assert.Equal(t, login.RefreshToken, r2.RefreshToken)
	assert.Len(t, store.tokens, 1)
}

func TestRefreshRejectsExpiredAndRevoked(t *testing.T) {
	store, router := setupAuthTest(t)
	u := store.addUser("user1@orga.com", "Password1!", "orgA", models.RoleUser)

	store.tokens["expired"] = &models.RefreshToken{
		UserID: u.ID, Token: "expired", ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	revokedAt := time.Now().UTC()
	store.tokens["revoked"] = &models.RefreshToken{
		UserID: u.ID, Token: "revoked", ExpiresAt: time.Now().UTC().Add(time.Hour), RevokedAt: &revokedAt,
	}

	for _, token := range []string{"expired", "revoked", "never-existed"} {
		w := doJSON(t, router, "/auth/refresh", RefreshRequest{RefreshToken: token})
		assert.Equal(t, http.StatusUnauthorized, w.Code, token)

		var body response.Body
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "invalid or expired refresh token", body.Error)
	}
}

func TestRegister(t *testing.T) {
	store, router := setupAuthTest(t)

	w := doJSON(t, router, "/auth/register",
		RegisterRequest{Email: "new@orga.com", Password: "Password1!", OrgID: "orgA"})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeTokens(t, w)
	assert.Equal(t, []string{"User"}, resp.Roles)

	u, err := store.GetUserByEmail(context.Background(), "new@orga.com")
	require.NoError(t, err)
	assert.Equal(t, "orgA", u.OrgID)
	assert.True(t, utils.CheckPassword("Password1!", u.PasswordHash))

	// duplicate registration conflicts
	w = doJSON(t, router, "/auth/register",
		RegisterRequest{Email: "new@orga.com", Password: "Password1!", OrgID: "orgA"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
