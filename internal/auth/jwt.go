package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/eventboard/backend/config"
	"github.com/eventboard/backend/internal/models"
)

var (
	// ErrInvalidToken is returned for any access token that fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

// JWTService mints and validates HS256 access tokens and generates opaque
// refresh token strings.
type JWTService struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService creates a JWT service from config.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  time.Duration(cfg.AccessTokenMinutes) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshTokenDays) * 24 * time.Hour,
	}
}

// NewAccessToken mints a signed access token for the user. Role names are
// emitted under both the "role" and the "roles" claims so that clients using
// either convention can read them.
func (s *JWTService) NewAccessToken(u *models.User) (string, error) {
	now := time.Now().UTC()
	roles := u.RoleStrings()
	claims := jwt.MapClaims{
		"iss":   s.issuer,
		"aud":   s.audience,
		"jti":   uuid.New().String(),
		"sub":   strconv.FormatInt(u.ID, 10),
		"email": u.Email,
		"orgId": u.OrgID,
		"role":  roles,
		"roles": roles,
		"nbf":   now.Unix(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// NewRefreshToken returns a fresh opaque refresh token string and its expiry.
func (s *JWTService) NewRefreshToken() (string, time.Time) {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return raw, time.Now().UTC().Add(s.refreshTTL)
}

// Validate parses and validates an access token and returns the principal
// carried in its claims.
func (s *JWTService) Validate(tokenString string) (Principal, error) {
	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return s.secret, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithLeeway(time.Minute),
	)
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	return PrincipalFromClaims(claims), nil
}
