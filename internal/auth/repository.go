package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventboard/backend/internal/models"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an already-used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrTokenNotFound is returned for refresh tokens that do not exist.
	// Expired and revoked tokens are reported the same way so callers cannot
	// distinguish a token that never existed from one that lapsed.
	ErrTokenNotFound = errors.New("refresh token not found")
)

// Store is the persistence surface the auth handlers need.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, email, passwordHash, orgID string, role models.Role) (*models.User, error)
	SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
}

// Repository handles user, role and refresh-token persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `u.id, u.email, u.password_hash, u.org_id, u.created_at,
	COALESCE(array_agg(ur.role) FILTER (WHERE ur.role IS NOT NULL), '{}')`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var roleNames []string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.OrgID, &u.CreatedAt, &roleNames); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	for _, name := range roleNames {
		if r, ok := models.ParseRole(name); ok {
			u.Roles = append(u.Roles, r)
		}
	}
	return &u, nil
}

// GetUserByEmail returns a user with their role set.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + `
		FROM users u LEFT JOIN user_roles ur ON ur.user_id = u.id
		WHERE u.email = $1 GROUP BY u.id`
	return scanUser(r.pool.QueryRow(ctx, q, email))
}

// GetUserByID returns a user with their role set.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const q = `SELECT ` + userColumns + `
		FROM users u LEFT JOIN user_roles ur ON ur.user_id = u.id
		WHERE u.id = $1 GROUP BY u.id`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

// CreateUser inserts a user and their initial role in one transaction.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash, orgID string, role models.Role) (*models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var u models.User
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, org_id) VALUES ($1, $2, $3)
		 RETURNING id, email, password_hash, org_id, created_at`,
		email, passwordHash, orgID).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.OrgID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, u.ID, string(role)); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	u.Roles = []models.Role{role}
	return &u, nil
}

// SaveRefreshToken persists a newly issued refresh token.
func (r *Repository) SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`,
		userID, token, expiresAt)
	return err
}

// GetRefreshToken looks up a refresh token by exact string match.
func (r *Repository) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, token, expires_at, revoked_at FROM refresh_tokens WHERE token = $1`,
		token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}
