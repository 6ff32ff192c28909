package response

import (
	"strconv"

	"userapp/internal/core/domain"
)

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserFormResponse feeds the detail form; ID is empty for a new user.
type UserFormResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

type UserDetailResponse struct {
	User *UserFormResponse `json:"user"`
}

type ActionResponse struct {
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Users  int64  `json:"users"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}

func NewUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

func NewUsersResponse(users []domain.User) UsersResponse {
	data := make([]UserResponse, 0, len(users))

	for _, user := range users {
		data = append(data, NewUserResponse(user))
	}

	return UsersResponse{Users: data}
}

func NewUserFormResponse(user *domain.User) *UserFormResponse {
	if user == nil {
		return nil
	}

	data := &UserFormResponse{
		Name:  user.Name,
		Email: user.Email,
	}

	if !user.IsNew() {
		data.ID = strconv.FormatInt(user.ID, 10)
	}

	return data
}
