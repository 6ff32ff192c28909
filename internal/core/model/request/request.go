package request

// UserForm is the create/update submission of the detail page.
type UserForm struct {
	Name  string `form:"name" json:"name" validate:"required"`
	Email string `form:"email" json:"email" validate:"required,email"`
}

// DeleteUserForm is the per-row delete submission of the users page.
type DeleteUserForm struct {
	UserID string `form:"userId" json:"userId" validate:"required"`
}

func NewUserForm(values map[string]string) UserForm {
	return UserForm{
		Name:  values["name"],
		Email: values["email"],
	}
}

func NewDeleteUserForm(values map[string]string) DeleteUserForm {
	return DeleteUserForm{
		UserID: values["userId"],
	}
}
