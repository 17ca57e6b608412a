package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventboard/backend/internal/models"
)

// ErrNotFound is returned when no event matches the given id.
var ErrNotFound = errors.New("event not found")

// ListQuery is a fully resolved listing request: visibility filter, optional
// field filters and the pagination window.
type ListQuery struct {
	Filter   Filter
	Category string              // exact match; "" = no filter
	Status   *models.EventStatus // nil = no filter
	Search   string              // case-sensitive substring on title; "" = no filter
	Cursor   *CursorKey          // nil = first page
	Limit    int                 // page size; the store returns up to Limit+1 rows
}

// Store is the persistence surface the event handlers need.
type Store interface {
	List(ctx context.Context, q ListQuery) ([]models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Event, error)
	Create(ctx context.Context, ev *models.Event) error
	Update(ctx context.Context, ev *models.Event) error
	Delete(ctx context.Context, id int64) error
	UpdateBatch(ctx context.Context, evs []*models.Event) error
}

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, org_id, creator_id, title, category, status, is_featured, tags, start_date, end_date, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var ev models.Event
	var status, tags string
	err := row.Scan(&ev.ID, &ev.OrgID, &ev.CreatorID, &ev.Title, &ev.Category, &status,
		&ev.IsFeatured, &tags, &ev.StartDate, &ev.EndDate, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ev.Status = models.EventStatus(status)
	ev.Tags = models.SplitTags(tags)
	return &ev, nil
}

// List returns up to q.Limit+1 events matching the query, ordered by
// (updated_at DESC, id DESC). The extra row lets the caller decide whether a
// next page exists.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.Event, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) int {
		args = append(args, v)
		return len(args)
	}

	if q.Filter.CreatorID != nil {
		conds = append(conds, fmt.Sprintf("creator_id = $%d", arg(*q.Filter.CreatorID)))
	}
	if q.Filter.OrgID != nil {
		conds = append(conds, fmt.Sprintf("org_id = $%d", arg(*q.Filter.OrgID)))
	}
	if q.Category != "" {
		conds = append(conds, fmt.Sprintf("category = $%d", arg(q.Category)))
	}
	if q.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", arg(string(*q.Status))))
	}
	if q.Search != "" {
		conds = append(conds, fmt.Sprintf("strpos(title, $%d) > 0", arg(q.Search)))
	}
	if q.Cursor != nil {
		t := arg(q.Cursor.UpdatedAt)
		id := arg(q.Cursor.ID)
		conds = append(conds, fmt.Sprintf("(updated_at < $%d OR (updated_at = $%d AND id < $%d))", t, t, id))
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY updated_at DESC, id DESC LIMIT $%d", arg(q.Limit+1))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *ev)
	}
	return list, rows.Err()
}

// GetByID returns an event by id, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	ev, err := scanEvent(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

// GetByIDs returns the events whose ids exist; missing ids are simply absent
// from the result.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *ev)
	}
	return list, rows.Err()
}

// Create inserts a new event and fills in its store-assigned id.
func (r *Repository) Create(ctx context.Context, ev *models.Event) error {
	const q = `INSERT INTO events (org_id, creator_id, title, category, status, is_featured, tags, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	return r.pool.QueryRow(ctx, q,
		ev.OrgID, ev.CreatorID, ev.Title, ev.Category, string(ev.Status), ev.IsFeatured,
		models.JoinTags(ev.Tags), ev.StartDate, ev.EndDate, ev.CreatedAt, ev.UpdatedAt).
		Scan(&ev.ID)
}

// Update persists the mutable fields of an event.
func (r *Repository) Update(ctx context.Context, ev *models.Event) error {
	const q = `UPDATE events SET title = $1, category = $2, status = $3, is_featured = $4,
		tags = $5, start_date = $6, end_date = $7, updated_at = $8 WHERE id = $9`
	tag, err := r.pool.Exec(ctx, q,
		ev.Title, ev.Category, string(ev.Status), ev.IsFeatured,
		models.JoinTags(ev.Tags), ev.StartDate, ev.EndDate, ev.UpdatedAt, ev.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateBatch persists status/featured changes for many events in a single
// transaction so a crash cannot leave a half-applied batch.
func (r *Repository) UpdateBatch(ctx context.Context, evs []*models.Event) error {
	if len(evs) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, ev := range evs {
		_, err := tx.Exec(ctx,
			`UPDATE events SET status = $1, is_featured = $2, updated_at = $3 WHERE id = $4`,
			string(ev.Status), ev.IsFeatured, ev.UpdatedAt, ev.ID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
