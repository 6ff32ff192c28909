package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"userapp/internal/adapter/database/sqlite"
	"userapp/internal/core/domain"
	"userapp/internal/core/port"
	tel "userapp/internal/core/telemetry"
)

const usersTable = "users"

type userRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null;uniqueIndex:idx_users_email"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRecord) TableName() string {
	return usersTable
}

func (r userRecord) toDomain() domain.User {
	return domain.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type UserRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (ur *UserRepository) observe(ctx context.Context, operation string, attrs map[string]any, fn func(ctx context.Context) error) error {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, operation, usersTable, attrs)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	if err != nil && !isDomainError(err) {
		span.RecordError(err)
	}

	ur.telemetry.RecordRepositoryOperation(ctx, operation, usersTable, time.Since(start), err)

	return err
}

func (ur *UserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	var records []userRecord

	err := ur.observe(ctx, "get_all", nil, func(ctx context.Context) error {
		return ur.db.ORM.WithContext(ctx).Order("id").Find(&records).Error
	})

	if err != nil {
		slog.Error("Error listing users", "error", err)
		return nil, err
	}

	users := make([]domain.User, 0, len(records))

	for _, record := range records {
		users = append(users, record.toDomain())
	}

	return users, nil
}

func (ur *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	var record userRecord

	err := ur.observe(ctx, "get_by_id", map[string]any{"user.id": id}, func(ctx context.Context) error {
		return ur.db.ORM.WithContext(ctx).First(&record, id).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFound(id)
	}

	if err != nil {
		slog.Error("Error getting user by id", "id", id, "error", err)
		return domain.User{}, err
	}

	return record.toDomain(), nil
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var record userRecord

	err := ur.observe(ctx, "get_by_email", nil, func(ctx context.Context) error {
		return ur.db.ORM.WithContext(ctx).Where("email = ?", email).First(&record).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.ErrUserNotFound
	}

	if err != nil {
		slog.Error("Error getting user by email", "error", err)
		return domain.User{}, err
	}

	return record.toDomain(), nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	record := userRecord{
		Name:  user.Name,
		Email: user.Email,
	}

	err := ur.observe(ctx, "create", nil, func(ctx context.Context) error {
		return translateError(ur.db.ORM.WithContext(ctx).Create(&record).Error)
	})

	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			slog.Error("Error creating user", "error", err)
		}
		return domain.User{}, err
	}

	return record.toDomain(), nil
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	var record userRecord

	err := ur.observe(ctx, "update", map[string]any{"user.id": user.ID}, func(ctx context.Context) error {
		return ur.db.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&userRecord{}).
				Where("id = ?", user.ID).
				Updates(map[string]any{
					"name":  user.Name,
					"email": user.Email,
				})

			if result.Error != nil {
				return translateError(result.Error)
			}

			if result.RowsAffected == 0 {
				return domain.NotFound(user.ID)
			}

			return tx.First(&record, user.ID).Error
		})
	})

	if err != nil {
		if !isDomainError(err) {
			slog.Error("Error updating user", "id", user.ID, "error", err)
		}
		return domain.User{}, err
	}

	return record.toDomain(), nil
}

func (ur *UserRepository) Delete(ctx context.Context, id int64) error {
	err := ur.observe(ctx, "delete", map[string]any{"user.id": id}, func(ctx context.Context) error {
		result := ur.db.ORM.WithContext(ctx).Delete(&userRecord{}, id)

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return domain.NotFound(id)
		}

		return nil
	})

	if err != nil && !isDomainError(err) {
		slog.Error("Error deleting user", "id", id, "error", err)
	}

	return err
}

func (ur *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	err := ur.observe(ctx, "count", nil, func(ctx context.Context) error {
		return ur.db.ORM.WithContext(ctx).Model(&userRecord{}).Count(&count).Error
	})

	return count, err
}

// translateError maps the unique index violation on email to the domain error.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateEmail
	}

	var sqliteErr sqlite3.Error

	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return domain.ErrDuplicateEmail
	}

	return err
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrDuplicateEmail)
}
