package domain

import (
	"strconv"
	"strings"
	"time"
)

// NewUserID is the route identifier that stands for a user not stored yet.
const NewUserID = "new"

type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) IsNew() bool {
	return u.ID == 0
}

func IsNewUserID(id string) bool {
	return id == NewUserID
}

// ParseUserID converts a route or form identifier into the store's numeric key.
func ParseUserID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)

	if err != nil || id <= 0 {
		return 0, NewValidationError(FieldError{
			Field:   field,
			Message: "identifiant invalide: " + strconv.Quote(raw),
		})
	}

	return id, nil
}
