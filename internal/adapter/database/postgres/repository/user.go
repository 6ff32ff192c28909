package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	database "userapp/internal/adapter/database/postgres"
	"userapp/internal/core/domain"
	"userapp/internal/core/port"
	tel "userapp/internal/core/telemetry"
)

const (
	usersTable = "users"

	// SQLSTATE unique_violation
	uniqueViolation = "23505"
)

var userColumns = []string{"id", "name", "email", "created_at", "updated_at"}

type UserRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *database.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (ur *UserRepository) observe(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, operation, usersTable, map[string]any{"db.system": "postgresql"})
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	ur.telemetry.RecordRepositoryOperation(ctx, operation, usersTable, time.Since(start), err)

	return err
}

func scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (ur *UserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	query := ur.db.QueryBuilder.Select(userColumns...).
		From(usersTable).
		OrderBy("id")

	sql, args, err := query.ToSql()

	if err != nil {
		return nil, err
	}

	var users []domain.User

	err = ur.observe(ctx, "get_all", func(ctx context.Context) error {
		rows, err := ur.db.Query(ctx, sql, args...)

		if err != nil {
			return err
		}

		users, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.User, error) {
			return scanUser(row)
		})

		return err
	})

	if err != nil {
		slog.Error("Error listing users", "error", err)
		return nil, err
	}

	return users, nil
}

func (ur *UserRepository) getOne(ctx context.Context, operation string, where sq.Eq) (domain.User, error) {
	query := ur.db.QueryBuilder.Select(userColumns...).
		From(usersTable).
		Where(where).
		Limit(1)

	sql, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	var user domain.User

	err = ur.observe(ctx, operation, func(ctx context.Context) error {
		user, err = scanUser(ur.db.QueryRow(ctx, sql, args...))
		return err
	})

	return user, err
}

func (ur *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	user, err := ur.getOne(ctx, "get_by_id", sq.Eq{"id": id})

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.NotFound(id)
	}

	if err != nil {
		slog.Error("Error getting user by id", "id", id, "error", err)
		return domain.User{}, err
	}

	return user, nil
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := ur.getOne(ctx, "get_by_email", sq.Eq{"email": email})

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}

	if err != nil {
		slog.Error("Error getting user by email", "error", err)
		return domain.User{}, err
	}

	return user, nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	query := ur.db.QueryBuilder.Insert(usersTable).
		Columns("name", "email").
		Values(user.Name, user.Email).
		Suffix("RETURNING id, name, email, created_at, updated_at")

	sql, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	var saved domain.User

	err = ur.observe(ctx, "create", func(ctx context.Context) error {
		saved, err = scanUser(ur.db.QueryRow(ctx, sql, args...))
		return translateError(err)
	})

	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			slog.Error("Error creating user", "error", err)
		}
		return domain.User{}, err
	}

	return saved, nil
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	query := ur.db.QueryBuilder.Update(usersTable).
		Set("name", user.Name).
		Set("email", user.Email).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": user.ID}).
		Suffix("RETURNING id, name, email, created_at, updated_at")

	sql, args, err := query.ToSql()

	if err != nil {
		return domain.User{}, err
	}

	var saved domain.User

	err = ur.observe(ctx, "update", func(ctx context.Context) error {
		saved, err = scanUser(ur.db.QueryRow(ctx, sql, args...))

		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFound(user.ID)
		}

		return translateError(err)
	})

	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) && !errors.Is(err, domain.ErrUserNotFound) {
			slog.Error("Error updating user", "id", user.ID, "error", err)
		}
		return domain.User{}, err
	}

	return saved, nil
}

func (ur *UserRepository) Delete(ctx context.Context, id int64) error {
	query := ur.db.QueryBuilder.Delete(usersTable).
		Where(sq.Eq{"id": id})

	sql, args, err := query.ToSql()

	if err != nil {
		return err
	}

	return ur.observe(ctx, "delete", func(ctx context.Context) error {
		tag, err := ur.db.Exec(ctx, sql, args...)

		if err != nil {
			slog.Error("Error deleting user", "id", id, "error", err)
			return err
		}

		if tag.RowsAffected() == 0 {
			return domain.NotFound(id)
		}

		return nil
	})
}

func (ur *UserRepository) Count(ctx context.Context) (int64, error) {
	sql, args, err := ur.db.QueryBuilder.Select("count(*)").From(usersTable).ToSql()

	if err != nil {
		return 0, err
	}

	var count int64

	err = ur.observe(ctx, "count", func(ctx context.Context) error {
		return ur.db.QueryRow(ctx, sql, args...).Scan(&count)
	})

	return count, err
}

func translateError(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateEmail
	}

	return err
}
