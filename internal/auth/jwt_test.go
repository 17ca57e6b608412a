package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventboard/backend/config"
	"github.com/eventboard/backend/internal/models"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret",
		Issuer:             "EventBoardPro",
		Audience:           "EventBoardProClient",
		AccessTokenMinutes: 15,
		RefreshTokenDays:   7,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	user := &models.User{
		ID:    42,
		Email: "mod@orga.com",
		OrgID: "orgA",
		Roles: []models.Role{models.RoleModerator, models.RoleUser},
	}

	token, err := svc.NewAccessToken(user)
	require.NoError(t, err)

	p, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, "mod@orga.com", p.Email)
	assert.Equal(t, "orgA", p.OrgID)
	assert.ElementsMatch(t, []models.Role{models.RoleModerator, models.RoleUser}, p.Roles)
	assert.True(t, p.IsModerator())
	assert.False(t, p.IsAdmin())
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	for _, tok := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		_, err := svc.Validate(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuerCfg := testJWTConfig()
	other := issuerCfg
	other.Secret = "different-secret"

	token, err := NewJWTService(issuerCfg).NewAccessToken(&models.User{ID: 1, OrgID: "orgA"})
	require.NoError(t, err)

	_, err = NewJWTService(other).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongAudience(t *testing.T) {
	cfg := testJWTConfig()
	other := cfg
	other.Audience = "SomeOtherClient"

	token, err := NewJWTService(other).NewAccessToken(&models.User{ID: 1, OrgID: "orgA"})
	require.NoError(t, err)

	_, err = NewJWTService(cfg).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPrincipalFromClaims(t *testing.T) {
	t.Run("roles read from both claims and deduplicated", func(t *testing.T) {
		p := PrincipalFromClaims(jwt.MapClaims{
			"sub":   "7",
			"orgId": "orgB",
			"role":  []interface{}{"Moderator", "User"},
			"roles": []interface{}{"Moderator", "Admin"},
		})
		assert.Equal(t, int64(7), p.UserID)
		assert.Equal(t, "orgB", p.OrgID)
		assert.ElementsMatch(t, []models.Role{models.RoleModerator, models.RoleUser, models.RoleAdmin}, p.Roles)
	})

	t.Run("single string role claim", func(t *testing.T) {
		p := PrincipalFromClaims(jwt.MapClaims{"sub": "7", "role": "Admin"})
		assert.Equal(t, []models.Role{models.RoleAdmin}, p.Roles)
	})

	t.Run("unknown role values dropped silently", func(t *testing.T) {
		p := PrincipalFromClaims(jwt.MapClaims{
			"sub":   "7",
			"roles": []interface{}{"Admin", "Wizard", 12},
		})
		assert.Equal(t, []models.Role{models.RoleAdmin}, p.Roles)
	})

	t.Run("missing or unparseable subject means unauthenticated", func(t *testing.T) {
		p := PrincipalFromClaims(jwt.MapClaims{"orgId": "orgA"})
		assert.Equal(t, int64(0), p.UserID)
		assert.False(t, p.IsAuthenticated())

		p = PrincipalFromClaims(jwt.MapClaims{"sub": "abc"})
		assert.Equal(t, int64(0), p.UserID)
	})

	t.Run("missing orgId means empty string", func(t *testing.T) {
		p := PrincipalFromClaims(jwt.MapClaims{"sub": "7"})
		assert.Equal(t, "", p.OrgID)
	})
}

func TestNewRefreshToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	seen := make(map[string]struct{})
	for i := 0; i < 32; i++ {
		raw, exp := svc.NewRefreshToken()
		assert.Len(t, raw, 32)
		assert.NotContains(t, raw, "-")
		assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 7), exp, time.Minute)
		_, dup := seen[raw]
		assert.False(t, dup, "refresh tokens must be unique")
		seen[raw] = struct{}{}
	}
}
