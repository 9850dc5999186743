package identities

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/idscan/pkg/pagination"
	"github.com/JaimeStill/idscan/pkg/query"
	"github.com/JaimeStill/idscan/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an identity repository implementing System.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "identities"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "IdentityNumber", "Surname", "Name")

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)

	records, total, err := repository.QueryPage(ctx, r.db,
		repository.Statement{SQL: countSQL, Args: countArgs},
		repository.Statement{SQL: pageSQL, Args: pageArgs},
		scanRecord,
	)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

// Create inserts cmd. The database assigns created_at as the current date.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Record, error) {
	q := `
		INSERT INTO turkish_identity_cards (identity_number, surname, name, birth_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, identity_number, surname, name, birth_date, created_at`

	args := []any{cmd.IdentityNumber, cmd.Surname, cmd.Name, cmd.BirthDate}

	rec, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Record, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRecord)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("identity saved", "id", rec.ID)
	return &rec, nil
}
