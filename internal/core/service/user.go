package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"userapp/internal/core/domain"
	"userapp/internal/core/port"
	tel "userapp/internal/core/telemetry"
)

const serviceName = "user"

type UserService struct {
	repo      port.UserRepository
	telemetry port.Telemetry
	delay     time.Duration
}

type Option func(*UserService)

// WithMutationDelay makes Create and Delete wait d before touching the store.
func WithMutationDelay(d time.Duration) Option {
	return func(s *UserService) {
		s.delay = d
	}
}

func WithTelemetry(telemetry port.Telemetry) Option {
	return func(s *UserService) {
		if telemetry != nil {
			s.telemetry = telemetry
		}
	}
}

func NewUserService(repo port.UserRepository, opts ...Option) *UserService {
	s := &UserService{
		repo:      repo,
		telemetry: tel.NewNoOpProbe(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (us *UserService) observe(ctx context.Context, operation string, attrs map[string]any, fn func(ctx context.Context) error) error {
	ctx, span := us.telemetry.StartServiceSpan(ctx, serviceName, operation, attrs)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	us.telemetry.RecordServiceOperation(ctx, serviceName, operation, time.Since(start), err)

	return err
}

func (us *UserService) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	err := us.observe(ctx, "list", nil, func(ctx context.Context) (err error) {
		users, err = us.repo.GetAll(ctx)
		return err
	})

	return users, err
}

// Get returns nil without error when no user has this id.
func (us *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User

	err := us.observe(ctx, "get", map[string]any{"user.id": id}, func(ctx context.Context) error {
		found, err := us.repo.GetByID(ctx, id)

		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}

		if err != nil {
			return err
		}

		user = &found
		return nil
	})

	return user, err
}

// Create checks the email first, but the store's unique index has the final word:
// a concurrent insert of the same email still surfaces as ErrDuplicateEmail.
func (us *UserService) Create(ctx context.Context, user domain.User) (domain.User, error) {
	var saved domain.User

	err := us.observe(ctx, "create", nil, func(ctx context.Context) error {
		if err := us.wait(ctx); err != nil {
			return err
		}

		_, err := us.repo.GetByEmail(ctx, user.Email)

		if err == nil {
			return domain.ErrDuplicateEmail
		}

		if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}

		saved, err = us.repo.Create(ctx, domain.User{
			Name:  user.Name,
			Email: user.Email,
		})

		if err != nil {
			return err
		}

		us.telemetry.RecordBusinessEvent(ctx, "user.created", serviceName, strconv.FormatInt(saved.ID, 10), nil)
		return nil
	})

	return saved, err
}

func (us *UserService) Update(ctx context.Context, user domain.User) (domain.User, error) {
	var saved domain.User

	err := us.observe(ctx, "update", map[string]any{"user.id": user.ID}, func(ctx context.Context) (err error) {
		saved, err = us.repo.Update(ctx, user)

		if err == nil {
			us.telemetry.RecordBusinessEvent(ctx, "user.updated", serviceName, strconv.FormatInt(saved.ID, 10), nil)
		}

		return err
	})

	return saved, err
}

func (us *UserService) Delete(ctx context.Context, id int64) error {
	return us.observe(ctx, "delete", map[string]any{"user.id": id}, func(ctx context.Context) error {
		if err := us.wait(ctx); err != nil {
			return err
		}

		if err := us.repo.Delete(ctx, id); err != nil {
			return err
		}

		us.telemetry.RecordBusinessEvent(ctx, "user.deleted", serviceName, strconv.FormatInt(id, 10), nil)
		return nil
	})
}

func (us *UserService) Count(ctx context.Context) (int64, error) {
	return us.repo.Count(ctx)
}

func (us *UserService) wait(ctx context.Context) error {
	if us.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(us.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
