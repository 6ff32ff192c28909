package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	. "userapp/internal/adapter/http/helper"
	"userapp/internal/core/domain"
	"userapp/internal/core/model/request"
	"userapp/internal/core/model/response"
	"userapp/internal/core/port"
)

const (
	UsersTemplate      = "users.html"
	UserDetailTemplate = "user_detail.html"

	UserCreatedMessage    = "L'utilisateur a été ajouté"
	UserUpdatedMessage    = "L'utilisateur a été modifié"
	DuplicateEmailMessage = "Cet email est déjà utilisé"

	usersPageTitle = "Utilisateurs"
)

type UserHandler struct {
	svc       port.UserService
	validator port.Validator
}

func NewUserHandler(svc port.UserService, validator port.Validator) *UserHandler {
	return &UserHandler{
		svc:       svc,
		validator: validator,
	}
}

// ListUsers serves GET /users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())

	if err != nil {
		c.Error(err)
		return
	}

	payload := response.NewUsersResponse(users)

	Render(c, http.StatusOK, UsersTemplate, gin.H{
		"Title": usersPageTitle,
		"Users": payload.Users,
	}, payload)
}

// DeleteUser serves POST /users with the form field userId.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	values, err := FormValues(c)

	if err != nil {
		c.Error(err)
		return
	}

	form := request.NewDeleteUserForm(values)

	if err := h.validator.ValidateStruct(form); err != nil {
		c.Error(err)
		return
	}

	id, err := domain.ParseUserID("userId", form.UserID)

	if err != nil {
		c.Error(err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	if WantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/users")
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// GetUser serves GET /users/:userId, where userId may be the "new" sentinel.
func (h *UserHandler) GetUser(c *gin.Context) {
	routeID := c.Param("userId")

	user, err := h.loadUser(c, routeID)

	if err != nil {
		c.Error(err)
		return
	}

	h.renderDetail(c, http.StatusOK, routeID, response.NewUserFormResponse(user), nil)
}

// SaveUser serves POST /users/:userId, creating for "new" and updating otherwise.
func (h *UserHandler) SaveUser(c *gin.Context) {
	ctx := c.Request.Context()
	routeID := c.Param("userId")

	values, err := FormValues(c)

	if err != nil {
		c.Error(err)
		return
	}

	form := request.NewUserForm(values)

	if err := h.validator.ValidateStruct(form); err != nil {
		c.Error(err)
		return
	}

	user := domain.User{
		Name:  form.Name,
		Email: form.Email,
	}

	message := UserCreatedMessage

	if domain.IsNewUserID(routeID) {
		_, err = h.svc.Create(ctx, user)
	} else {
		user.ID, err = domain.ParseUserID("userId", routeID)

		if err == nil {
			message = UserUpdatedMessage
			_, err = h.svc.Update(ctx, user)
		}
	}

	result := response.ActionResponse{Message: message}

	if errors.Is(err, domain.ErrDuplicateEmail) {
		result = response.ActionResponse{Message: DuplicateEmailMessage, Error: true}
	} else if err != nil {
		c.Error(err)
		return
	}

	if WantsHTML(c) {
		h.renderDetail(c, http.StatusOK, routeID, response.NewUserFormResponse(&user), &result)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *UserHandler) loadUser(c *gin.Context, routeID string) (*domain.User, error) {
	if domain.IsNewUserID(routeID) {
		return &domain.User{}, nil
	}

	id, err := domain.ParseUserID("userId", routeID)

	if err != nil {
		return nil, err
	}

	return h.svc.Get(c.Request.Context(), id)
}

func (h *UserHandler) renderDetail(c *gin.Context, statusCode int, routeID string, user *response.UserFormResponse, result *response.ActionResponse) {
	payload := response.UserDetailResponse{User: user}

	Render(c, statusCode, UserDetailTemplate, gin.H{
		"Title":   usersPageTitle,
		"RouteID": routeID,
		"IsNew":   domain.IsNewUserID(routeID),
		"User":    user,
		"Result":  result,
	}, payload)
}
