package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/eventboard/backend/internal/models"
	"github.com/eventboard/backend/pkg/utils"
)

// SeedDemo inserts demo users and events for local development. It is a no-op
// when any user already exists.
func SeedDemo(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	type seedUser struct {
		email string
		org   string
		role  models.Role
	}
	seedUsers := []seedUser{
		{"admin@orga.com", "orgA", models.RoleAdmin},
		{"mod@orga.com", "orgA", models.RoleModerator},
		{"user1@orga.com", "orgA", models.RoleUser},
		{"user2@orga.com", "orgA", models.RoleUser},
		{"user3@orgb.com", "orgB", models.RoleUser},
		{"mod@orgb.com", "orgB", models.RoleModerator},
	}

	hash, err := utils.HashPassword("Password1!")
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	type created struct {
		id  int64
		org string
	}
	var users []created
	for _, su := range seedUsers {
		var id int64
		err := pool.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, org_id) VALUES ($1, $2, $3) RETURNING id`,
			su.email, hash, su.org).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.email, err)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, id, string(su.role)); err != nil {
			return fmt.Errorf("seed role for %s: %w", su.email, err)
		}
		users = append(users, created{id: id, org: su.org})
	}

	categories := []string{"Conference", "Meetup", "Workshop", "Webinar"}
	statuses := []models.EventStatus{models.StatusPending, models.StatusApproved, models.StatusRejected}
	now := time.Now().UTC()
	rnd := rand.New(rand.NewSource(now.UnixNano()))

	for i := 1; i <= 40; i++ {
		u := users[rnd.Intn(len(users))]
		start := now.AddDate(0, 0, rnd.Intn(60)-30)
		_, err := pool.Exec(ctx,
			`INSERT INTO events (org_id, creator_id, title, category, status, is_featured, tags, start_date, end_date, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			u.org, u.id,
			fmt.Sprintf("Seed Event %d for %s", i, u.org),
			categories[rnd.Intn(len(categories))],
			string(statuses[rnd.Intn(len(statuses))]),
			rnd.Float64() < 0.25,
			"sample,seed",
			start, start.AddDate(0, 0, 1),
			start.AddDate(0, 0, -1), start)
		if err != nil {
			return fmt.Errorf("seed event %d: %w", i, err)
		}
	}

	logger.Info("demo data seeded", zap.Int("users", len(users)), zap.Int("events", 40))
	return nil
}
