package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdusco/linkhub/internal"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const linksTable = "links"

type linkRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	URL         string         `db:"url"`
	Description sql.NullString `db:"description"`
	Icon        sql.NullString `db:"icon"`
	IsActive    bool           `db:"is_active"`
	Order       int            `db:"sort_order"`
	Category    string         `db:"category"`
	CreatedAt   Date           `db:"created_at"`
	UpdatedAt   Date           `db:"updated_at"`
}

// querier is satisfied by both *goqu.Database and *goqu.TxDatabase.
type querier interface {
	From(from ...any) *goqu.SelectDataset
	Insert(table any) *goqu.InsertDataset
	Update(table any) *goqu.UpdateDataset
}

type LinksRepo struct {
	db  *goqu.Database
	ids *idGenerator
}

func NewLinksRepo(db *sql.DB) *LinksRepo {
	return &LinksRepo{
		db:  goqu.New("sqlite3", db),
		ids: newIDGenerator(),
	}
}

// ListAll returns every link ordered by category, order and creation time.
func (r *LinksRepo) ListAll(ctx context.Context) ([]*internal.Link, error) {
	return r.list(ctx, nil, true)
}

// ListByCategory returns the active links of one category.
func (r *LinksRepo) ListByCategory(ctx context.Context, category internal.Category) ([]*internal.Link, error) {
	return r.list(ctx, goqu.Ex{"category": string(category), "is_active": true}, false)
}

func (r *LinksRepo) ListActive(ctx context.Context) ([]*internal.Link, error) {
	return r.list(ctx, goqu.Ex{"is_active": true}, true)
}

func (r *LinksRepo) list(ctx context.Context, where exp.Expression, byCategory bool) ([]*internal.Link, error) {
	query := r.db.From(linksTable)
	if where != nil {
		query = query.Where(where)
	}

	order := []exp.OrderedExpression{goqu.C("sort_order").Asc(), goqu.C("created_at").Asc()}
	if byCategory {
		order = append([]exp.OrderedExpression{goqu.C("category").Asc()}, order...)
	}

	var rows []linkRow
	if err := query.Order(order...).ScanStructsContext(ctx, &rows); err != nil {
		log.Error().Err(err).Msg("failed to list links")
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	log.Debug().Int("count", len(rows)).Msg("links fetched")

	return lo.Map(rows, func(row linkRow, _ int) *internal.Link {
		return row.toDomain()
	}), nil
}

func (r *LinksRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.db.From(linksTable).CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return n, nil
}

// Add inserts a link at the end of its category.
func (r *LinksRepo) Add(ctx context.Context, in internal.LinkInput) (*internal.Link, error) {
	if !in.Category.Valid() {
		return nil, internal.ErrInvalidCategory
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var link *internal.Link
	err = tx.Wrap(func() error {
		var err error
		link, err = r.insert(ctx, tx, in)
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("title", in.Title).Msg("failed to create link")
		return nil, err
	}

	log.Info().
		Str("id", link.ID).
		Str("category", string(link.Category)).
		Int("order", link.Order).
		Msg("link created")

	return link, nil
}

func (r *LinksRepo) insert(ctx context.Context, q querier, in internal.LinkInput) (*internal.Link, error) {
	var maxOrder sql.NullInt64
	_, err := q.From(linksTable).
		Select(goqu.MAX("sort_order")).
		Where(goqu.C("category").Eq(string(in.Category))).
		ScanValContext(ctx, &maxOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to read max order: %w", err)
	}

	order := 0
	if maxOrder.Valid {
		order = int(maxOrder.Int64) + 1
	}

	now := Now()
	row := linkRow{
		ID:          r.ids.Next(),
		Title:       in.Title,
		URL:         in.URL,
		Description: nullString(in.Description),
		Icon:        nullString(in.Icon),
		IsActive:    in.IsActive,
		Order:       order,
		Category:    string(in.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = q.Insert(linksTable).Rows(goqu.Record{
		"id":          row.ID,
		"title":       row.Title,
		"url":         row.URL,
		"description": nullable(row.Description),
		"icon":        nullable(row.Icon),
		"is_active":   row.IsActive,
		"sort_order":  row.Order,
		"category":    row.Category,
		"created_at":  row.CreatedAt,
		"updated_at":  row.UpdatedAt,
	}).Executor().ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to insert link: %w", err)
	}

	return row.toDomain(), nil
}

// Update applies the non-nil fields of patch and reports whether the link exists.
func (r *LinksRepo) Update(ctx context.Context, id string, patch internal.LinkPatch) (bool, error) {
	rec := goqu.Record{"updated_at": Now()}
	if patch.Title != nil {
		rec["title"] = *patch.Title
	}
	if patch.URL != nil {
		rec["url"] = *patch.URL
	}
	if patch.Description != nil {
		rec["description"] = nullable(nullString(*patch.Description))
	}
	if patch.Icon != nil {
		rec["icon"] = nullable(nullString(*patch.Icon))
	}
	if patch.IsActive != nil {
		rec["is_active"] = *patch.IsActive
	}
	if patch.Order != nil {
		rec["sort_order"] = *patch.Order
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return false, internal.ErrInvalidCategory
		}
		rec["category"] = string(*patch.Category)
	}

	res, err := r.db.Update(linksTable).
		Set(rec).
		Where(goqu.C("id").Eq(id)).
		Executor().
		ExecContext(ctx)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update link")
		return false, fmt.Errorf("failed to update link: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	log.Info().Str("id", id).Bool("found", n > 0).Msg("link updated")
	return n > 0, nil
}

// Delete removes a link. The remaining order values of its category are kept as is.
func (r *LinksRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.Delete(linksTable).
		Where(goqu.C("id").Eq(id)).
		Executor().
		ExecContext(ctx)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete link")
		return false, fmt.Errorf("failed to delete link: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	log.Info().Str("id", id).Bool("found", n > 0).Msg("link deleted")
	return n > 0, nil
}

// Reorder sets each link's order to its index in ids, all or nothing.
// Unknown ids are skipped; links not listed keep their order.
func (r *LinksRepo) Reorder(ctx context.Context, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	now := Now()
	err = tx.Wrap(func() error {
		for i, id := range ids {
			_, err := tx.Update(linksTable).
				Set(goqu.Record{"sort_order": i, "updated_at": now}).
				Where(goqu.C("id").Eq(id)).
				Executor().
				ExecContext(ctx)
			if err != nil {
				return fmt.Errorf("failed to set order of link %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int("count", len(ids)).Msg("failed to reorder links")
		return err
	}

	log.Info().Int("count", len(ids)).Msg("links reordered")
	return nil
}

var starterLinks = []internal.LinkInput{
	{
		Title:       "GitHub",
		URL:         "https://github.com",
		Description: "My GitHub profile",
		Icon:        "🐙",
		IsActive:    true,
		Category:    internal.CategoryLink,
	},
	{
		Title:       "Portfolio",
		URL:         "https://example.com",
		Description: "My personal website",
		Icon:        "🌐",
		IsActive:    true,
		Category:    internal.CategoryLink,
	},
	{
		Title:       "E-commerce App",
		URL:         "https://myapp.com",
		Description: "Full-stack shopping application",
		Icon:        "🛒",
		IsActive:    true,
		Category:    internal.CategoryProject,
	},
}

// SeedIfEmpty inserts the starter links when the table has no rows and
// reports whether it did.
func (r *LinksRepo) SeedIfEmpty(ctx context.Context) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	seeded := false
	err = tx.Wrap(func() error {
		n, err := tx.From(linksTable).CountContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to count links: %w", err)
		}
		if n > 0 {
			return nil
		}

		for _, in := range starterLinks {
			if _, err := r.insert(ctx, tx, in); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to seed links")
		return false, err
	}

	if seeded {
		log.Info().Int("count", len(starterLinks)).Msg("seeded starter links")
	}
	return seeded, nil
}

func (r *linkRow) toDomain() *internal.Link {
	return &internal.Link{
		ID:          r.ID,
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description.String,
		Icon:        r.Icon.String,
		IsActive:    r.IsActive,
		Order:       r.Order,
		Category:    internal.Category(r.Category),
		CreatedAt:   r.CreatedAt.Time(),
		UpdatedAt:   r.UpdatedAt.Time(),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullable(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}
