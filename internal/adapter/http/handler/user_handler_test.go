package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"userapp/internal/adapter/database/sqlite"
	"userapp/internal/adapter/database/sqlite/repository"
	"userapp/internal/adapter/http/handler"
	"userapp/internal/adapter/http/helper"
	"userapp/internal/adapter/http/routes"
	"userapp/internal/adapter/http/validation"
	"userapp/internal/core/domain"
	"userapp/internal/core/model/response"
	"userapp/internal/core/service"
	"userapp/internal/core/telemetry"
	. "userapp/pkg/test"
	"userapp/pkg/test/factory"
)

type UserHandlerTestSuite struct {
	suite.Suite
	db      *sqlite.DB
	service *service.UserService
	router  *gin.Engine
}

func (s *UserHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.db = InitTestDB()
	repo := repository.NewUserRepository(s.db, telemetry.NewNoOpProbe())
	s.service = service.NewUserService(repo)

	s.router = routes.SetupRouterForTests(routes.HandlersConfig{
		UserHandler:   handler.NewUserHandler(s.service, validation.NewValidator()),
		HealthHandler: handler.NewHealthHandler(s.service),
	})
}

func (s *UserHandlerTestSuite) TearDownTest() {
	s.db.Close()
}

func TestUserHandlerTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(UserHandlerTestSuite))
}

func (s *UserHandlerTestSuite) request(method, path string, form url.Values, accept string) *httptest.ResponseRecorder {
	var req *http.Request

	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

func (s *UserHandlerTestSuite) requestJSON(method, path string, form url.Values, out any) *httptest.ResponseRecorder {
	w := s.request(method, path, form, "application/json")

	if out != nil {
		Expect(json.Unmarshal(w.Body.Bytes(), out)).To(Succeed(), w.Body.String())
	}

	return w
}

func (s *UserHandlerTestSuite) createUser(name, email string) domain.User {
	user, err := s.service.Create(context.Background(), domain.User{Name: name, Email: email})
	Expect(err).To(BeNil())
	return user
}

func (s *UserHandlerTestSuite) TestListUsers_Empty() {
	var body map[string]any
	w := s.requestJSON(http.MethodGet, "/users", nil, &body)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(body).To(HaveKeyWithValue("users", BeEmpty()))
	Expect(w.Body.String()).To(Equal(`{"users":[]}`))
}

func (s *UserHandlerTestSuite) TestListUsers_ReturnsPersistedUsers() {
	alice := s.createUser("Alice", "a@x.com")
	bob := s.createUser("Bob", "b@x.com")

	var body response.UsersResponse
	w := s.requestJSON(http.MethodGet, "/users", nil, &body)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(body.Users).To(Equal([]response.UserResponse{
		{ID: alice.ID, Name: "Alice", Email: "a@x.com"},
		{ID: bob.ID, Name: "Bob", Email: "b@x.com"},
	}))
}

func (s *UserHandlerTestSuite) TestListUsers_RendersHTMLByDefault() {
	s.createUser("Alice", "a@x.com")

	w := s.request(http.MethodGet, "/users", nil, "")

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Header().Get("Content-Type")).To(ContainSubstring("text/html"))
	Expect(w.Body.String()).To(ContainSubstring(`href="/users/new"`))
	Expect(w.Body.String()).To(ContainSubstring("Alice"))
	Expect(w.Body.String()).To(ContainSubstring(`name="userId"`))
}

func (s *UserHandlerTestSuite) TestGetUser_NewSentinel() {
	var body map[string]map[string]any
	w := s.requestJSON(http.MethodGet, "/users/new", nil, &body)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(body["user"]).To(Equal(map[string]any{"id": "", "name": "", "email": ""}))
}

func (s *UserHandlerTestSuite) TestGetUser_Existing() {
	user := s.createUser("Alice", "a@x.com")

	var body response.UserDetailResponse
	w := s.requestJSON(http.MethodGet, "/users/"+idString(user.ID), nil, &body)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(body.User).To(Equal(&response.UserFormResponse{ID: idString(user.ID), Name: "Alice", Email: "a@x.com"}))
}

func (s *UserHandlerTestSuite) TestGetUser_AbsentIsNull() {
	w := s.request(http.MethodGet, "/users/999", nil, "application/json")

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(Equal(`{"user":null}`))
}

func (s *UserHandlerTestSuite) TestGetUser_InvalidID() {
	var body response.ErrorResponse
	w := s.requestJSON(http.MethodGet, "/users/abc", nil, &body)

	Expect(w.Code).To(Equal(http.StatusBadRequest))
	Expect(body.Error.Code).To(Equal("VALIDATION_ERROR"))
}

func (s *UserHandlerTestSuite) TestGetUser_RendersForm() {
	user := s.createUser("Alice", "a@x.com")

	w := s.request(http.MethodGet, "/users/"+idString(user.ID), nil, "text/html")

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(ContainSubstring(`value="Alice"`))
	Expect(w.Body.String()).To(ContainSubstring("Sauvegarder"))

	w = s.request(http.MethodGet, "/users/new", nil, "text/html")

	Expect(w.Body.String()).To(ContainSubstring("Ajouter"))
	Expect(w.Body.String()).To(ContainSubstring(`action="/users/new"`))
}

func (s *UserHandlerTestSuite) TestSaveUser_Create() {
	var body response.ActionResponse
	w := s.requestJSON(http.MethodPost, "/users/new", url.Values{"name": {"Alice"}, "email": {"a@x.com"}}, &body)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(body).To(Equal(response.ActionResponse{Message: handler.UserCreatedMessage}))
	Expect(CountRows(s.db, "users")).To(Equal(1))
}

func (s *UserHandlerTestSuite) TestSaveUser_DuplicateEmail() {
	var body response.ActionResponse

	s.requestJSON(http.MethodPost, "/users/new", url.Values{"name": {"Alice"}, "email": {"a@x.com"}}, &body)
	Expect(body.Error).To(BeFalse())

	w := s.requestJSON(http.MethodPost, "/users/new", url.Values{"name": {"Bob"}, "email": {"a@x.com"}}, &body)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(body).To(Equal(response.ActionResponse{Message: "Cet email est déjà utilisé", Error: true}))
	Expect(CountRows(s.db, "users")).To(Equal(1))
}

func (s *UserHandlerTestSuite) TestSaveUser_Update() {
	user := s.createUser("Alice", "a@x.com")
	path := "/users/" + idString(user.ID)

	var body response.ActionResponse
	w := s.requestJSON(http.MethodPost, path, url.Values{"name": {"Alicia"}, "email": {"alicia@x.com"}}, &body)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(body).To(Equal(response.ActionResponse{Message: handler.UserUpdatedMessage}))

	var detail response.UserDetailResponse
	s.requestJSON(http.MethodGet, path, nil, &detail)

	Expect(detail.User.Name).To(Equal("Alicia"))
	Expect(detail.User.Email).To(Equal("alicia@x.com"))
}

func (s *UserHandlerTestSuite) TestSaveUser_UpdateToTakenEmail() {
	s.createUser("Alice", "a@x.com")
	bob := s.createUser("Bob", "b@x.com")

	var body response.ActionResponse
	w := s.requestJSON(http.MethodPost, "/users/"+idString(bob.ID), url.Values{"name": {"Bob"}, "email": {"a@x.com"}}, &body)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(body.Error).To(BeTrue())
	Expect(body.Message).To(Equal(handler.DuplicateEmailMessage))
}

func (s *UserHandlerTestSuite) TestSaveUser_UpdateMissing() {
	var body response.ErrorResponse
	w := s.requestJSON(http.MethodPost, "/users/999", url.Values{"name": {"Ghost"}, "email": {"g@x.com"}}, &body)

	Expect(w.Code).To(Equal(http.StatusNotFound))
	Expect(body.Error.Code).To(Equal("NOT_FOUND"))
	Expect(CountRows(s.db, "users")).To(Equal(0))
}

func (s *UserHandlerTestSuite) TestSaveUser_ValidationFailure() {
	cases := []url.Values{
		{"name": {"Alice"}, "email": {"not-an-email"}},
		{"name": {"Alice"}, "email": {"a@"}},
		{"name": {""}, "email": {"a@x.com"}},
		{"email": {"a@x.com"}},
	}

	for _, form := range cases {
		var body response.ErrorResponse
		w := s.requestJSON(http.MethodPost, "/users/new", form, &body)

		Expect(w.Code).To(Equal(http.StatusBadRequest), form.Encode())
		Expect(body.Error.Code).To(Equal("VALIDATION_ERROR"))
		Expect(body.Error.Errors).NotTo(BeEmpty())
	}

	Expect(CountRows(s.db, "users")).To(Equal(0))
}

func (s *UserHandlerTestSuite) TestSaveUser_LastValueWins() {
	form := url.Values{"name": {"First", "Last"}, "email": {"first@x.com", "last@x.com"}}

	s.requestJSON(http.MethodPost, "/users/new", form, nil)

	var body response.UsersResponse
	s.requestJSON(http.MethodGet, "/users", nil, &body)

	Expect(body.Users).To(HaveLen(1))
	Expect(body.Users[0].Name).To(Equal("Last"))
	Expect(body.Users[0].Email).To(Equal("last@x.com"))
}

func (s *UserHandlerTestSuite) TestSaveUser_RendersResultHTML() {
	w := s.request(http.MethodPost, "/users/new", url.Values{"name": {"Alice"}, "email": {"a@x.com"}}, "")

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(ContainSubstring(`role="alert"`))
	Expect(w.Body.String()).To(ContainSubstring("ajouté"))
}

func (s *UserHandlerTestSuite) TestSaveUser_ValidationRendersErrorBoundary() {
	w := s.request(http.MethodPost, "/users/new", url.Values{"name": {"Alice"}, "email": {"nope"}}, "text/html")

	Expect(w.Code).To(Equal(http.StatusBadRequest))
	Expect(w.Body.String()).To(ContainSubstring(helper.ErrorBoundaryMessage))
	Expect(w.Body.String()).To(ContainSubstring("Votre email n&#39;est pas valide"))
}

func (s *UserHandlerTestSuite) TestDeleteUser() {
	user := factory.NewUser[domain.User]()
	user = s.createUser(user.Name, user.Email)

	w := s.requestJSON(http.MethodPost, "/users", url.Values{"userId": {idString(user.ID)}}, nil)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(Equal(`{}`))

	var detail response.UserDetailResponse
	s.requestJSON(http.MethodGet, "/users/"+idString(user.ID), nil, &detail)

	Expect(detail.User).To(BeNil())
}

func (s *UserHandlerTestSuite) TestDeleteUser_RedirectsHTMLClients() {
	user := s.createUser("Alice", "a@x.com")

	w := s.request(http.MethodPost, "/users", url.Values{"userId": {idString(user.ID)}}, "")

	Expect(w.Code).To(Equal(http.StatusSeeOther))
	Expect(w.Header().Get("Location")).To(Equal("/users"))
	Expect(CountRows(s.db, "users")).To(Equal(0))
}

func (s *UserHandlerTestSuite) TestDeleteUser_Missing() {
	s.createUser("Alice", "a@x.com")

	var body response.ErrorResponse
	w := s.requestJSON(http.MethodPost, "/users", url.Values{"userId": {"999"}}, &body)

	Expect(w.Code).To(Equal(http.StatusNotFound))
	Expect(CountRows(s.db, "users")).To(Equal(1))
}

func (s *UserHandlerTestSuite) TestDeleteUser_MissingField() {
	var body response.ErrorResponse
	w := s.requestJSON(http.MethodPost, "/users", url.Values{}, &body)

	Expect(w.Code).To(Equal(http.StatusBadRequest))
	Expect(body.Error.Errors).To(ContainElement(HaveField("Field", "userId")))
}

func (s *UserHandlerTestSuite) TestRootRedirects() {
	w := s.request(http.MethodGet, "/", nil, "")

	Expect(w.Code).To(Equal(http.StatusFound))
	Expect(w.Header().Get("Location")).To(Equal("/users"))
}

func (s *UserHandlerTestSuite) TestHealth() {
	s.createUser("Alice", "a@x.com")

	var body response.HealthResponse
	w := s.requestJSON(http.MethodGet, "/healthz", nil, &body)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(body).To(Equal(response.HealthResponse{Status: "ok", Users: 1}))
}

func (s *UserHandlerTestSuite) TestHealth_StoreUnavailable() {
	s.db.Close()

	w := s.request(http.MethodGet, "/healthz", nil, "")

	Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
