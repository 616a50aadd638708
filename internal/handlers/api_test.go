package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"todoTracker/internal/auth"
	"todoTracker/internal/handlers"
	"todoTracker/internal/handlers/jsonapi"
	"todoTracker/internal/repository/inmemory"
	"todoTracker/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type resource struct {
	Type          string                     `json:"type"`
	ID            string                     `json:"id"`
	Attributes    map[string]any             `json:"attributes"`
	Relationships map[string]json.RawMessage `json:"relationships"`
}

type listDocument struct {
	Data     []resource     `json:"data"`
	Included []resource     `json:"included"`
	Meta     map[string]any `json:"meta"`
}

type singleDocument struct {
	Data resource `json:"data"`
}

// APITestSuite drives the router with real services over the in-memory store.
type APITestSuite struct {
	suite.Suite
	server *httptest.Server
	token  string
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupTest() {
	store := inmemory.NewStorage()
	hasher := auth.NewPasswordHasher(4)
	tokens := auth.NewTokenManager(auth.TokenConfig{Secret: "test-secret", Issuer: "todo-tracker"})

	router := handlers.NewRouter(handlers.Handlers{
		Todos:      handlers.NewTodoHandler(service.NewTodoService(store, store)),
		Categories: handlers.NewCategoryHandler(service.NewCategoryService(store)),
		Users: handlers.NewUserHandler(
			service.NewUserService(store, hasher),
			service.NewTokenService(store, hasher, tokens),
		),
		Health: handlers.NewHealthHandler(store),
	}, tokens, handlers.RouterConfig{})

	s.server = httptest.NewServer(router)
	s.token = s.signUpAndLogin("owner@example.com", "secret")
}

func (s *APITestSuite) TearDownTest() {
	s.server.Close()
}

func (s *APITestSuite) request(method, path, token, body string) (*http.Response, []byte) {
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	if body != "" {
		req.Header.Set("Content-Type", jsonapi.MediaType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, raw
}

func (s *APITestSuite) signUpAndLogin(email, password string) string {
	resp, _ := s.request(http.MethodPost, "/users", "",
		fmt.Sprintf(`{"data":{"type":"users","attributes":{"email":%q,"password":%q}}}`, email, password))
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	form := url.Values{"grant_type": {"password"}, "username": {email}, "password": {password}}
	tokenResp, err := s.server.Client().PostForm(s.server.URL+"/oauth/token", form)
	s.Require().NoError(err)
	defer tokenResp.Body.Close()
	s.Require().Equal(http.StatusOK, tokenResp.StatusCode)

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	s.Require().NoError(json.NewDecoder(tokenResp.Body).Decode(&body))
	s.Require().Equal("Bearer", body.TokenType)
	return body.AccessToken
}

func (s *APITestSuite) createTodo(attributes string, relationships string) resource {
	body := `{"data":{"type":"todos","attributes":` + attributes
	if relationships != "" {
		body += `,"relationships":` + relationships
	}
	body += `}}`

	resp, raw := s.request(http.MethodPost, "/todos", s.token, body)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(raw))

	var doc singleDocument
	s.Require().NoError(json.Unmarshal(raw, &doc))
	return doc.Data
}

func (s *APITestSuite) createCategory(attributes string) resource {
	resp, raw := s.request(http.MethodPost, "/categories", s.token,
		`{"data":{"type":"categories","attributes":`+attributes+`}}`)
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(raw))

	var doc singleDocument
	s.Require().NoError(json.Unmarshal(raw, &doc))
	return doc.Data
}

func (s *APITestSuite) list(path string) listDocument {
	resp, raw := s.request(http.MethodGet, path, s.token, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(raw))

	var doc listDocument
	s.Require().NoError(json.Unmarshal(raw, &doc))
	return doc
}

func names(resources []resource) []string {
	res := make([]string, 0, len(resources))
	for _, r := range resources {
		res = append(res, r.Attributes["name"].(string))
	}
	return res
}

func (s *APITestSuite) TestTodoRoundTrip() {
	created := s.createTodo(`{"name":"Pay rent","notes":"before friday"}`, "")

	resp, raw := s.request(http.MethodGet, "/todos/"+created.ID, s.token, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal(jsonapi.MediaType, resp.Header.Get("Content-Type"))

	var doc singleDocument
	s.Require().NoError(json.Unmarshal(raw, &doc))
	s.Equal(created, doc.Data)
	s.Equal("Pay rent", doc.Data.Attributes["name"])
	s.Equal("before friday", doc.Data.Attributes["notes"])
	s.Nil(doc.Data.Attributes["completed-at"])
	s.JSONEq(`{"data":null}`, string(doc.Data.Relationships["category"]))
	s.Regexp(`^\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d\.\d{3}Z$`, doc.Data.Attributes["created-at"])
}

func (s *APITestSuite) TestStatusFiltersAreUnions() {
	now := time.Now().UTC()
	s.createTodo(`{"name":"plain"}`, "")
	s.createTodo(fmt.Sprintf(`{"name":"was deferred","deferred-until":%q}`, now.Add(-24*time.Hour).Format(time.RFC3339)), "")
	s.createTodo(fmt.Sprintf(`{"name":"soon","deferred-until":%q}`, now.Add(20*time.Hour).Format(time.RFC3339)), "")
	s.createTodo(fmt.Sprintf(`{"name":"later","deferred-until":%q}`, now.Add(48*time.Hour).Format(time.RFC3339)), "")
	s.createTodo(fmt.Sprintf(`{"name":"finished","completed-at":%q}`, now.Format(time.RFC3339)), "")

	s.ElementsMatch([]string{"plain", "was deferred"}, names(s.list("/todos?filter[status]=available").Data))
	s.ElementsMatch([]string{"soon"}, names(s.list("/todos?filter[status]=tomorrow").Data))
	s.ElementsMatch([]string{"soon", "later"}, names(s.list("/todos?filter[status]=future").Data))
	s.ElementsMatch([]string{"plain", "was deferred", "soon"}, names(s.list("/todos?filter[status]=available,tomorrow").Data))
	s.ElementsMatch([]string{"plain", "was deferred", "soon", "later"}, names(s.list("/todos?filter[status]=open").Data))
	s.Len(s.list("/todos?filter[status]=bogus").Data, 5)

	s.Equal([]string{"finished", "later", "plain", "soon", "was deferred"}, names(s.list("/todos?sort=name").Data))
	s.Equal([]string{"soon"}, names(s.list("/todos?filter[status]=open&filter[search]=OO").Data))
}

func (s *APITestSuite) TestCompletedListingIsPaginated() {
	done := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	for i := 0; i < 12; i++ {
		s.createTodo(fmt.Sprintf(`{"name":"done %02d","completed-at":%q}`, i, done), "")
	}
	s.createTodo(`{"name":"still open"}`, "")

	first := s.list("/todos?filter[status]=completed&sort=name")
	s.Len(first.Data, 10)
	s.Equal(map[string]any{"page-count": float64(2)}, first.Meta)

	second := s.list("/todos?filter[status]=completed&sort=name&page[number]=2")
	s.Equal([]string{"done 10", "done 11"}, names(second.Data))

	past := s.list("/todos?filter[status]=completed&page[number]=5")
	s.Empty(past.Data)
	s.Equal(map[string]any{"page-count": float64(2)}, past.Meta)

	unpaged := s.list("/todos?filter[status]=completed,open")
	s.Len(unpaged.Data, 13)
	s.Nil(unpaged.Meta)
}

func (s *APITestSuite) TestIncludedCategories() {
	work := s.createCategory(`{"name":"Work"}`)
	home := s.createCategory(`{"name":"Home"}`)
	s.Equal(float64(1), work.Attributes["sort-order"])
	s.Equal(float64(2), home.Attributes["sort-order"])

	rel := func(id string) string { return `{"category":{"data":{"type":"categories","id":"` + id + `"}}}` }
	s.createTodo(`{"name":"a"}`, rel(work.ID))
	s.createTodo(`{"name":"b"}`, rel(work.ID))
	s.createTodo(`{"name":"c"}`, "")

	doc := s.list("/todos?include=category&sort=name")
	s.Require().Len(doc.Included, 1)
	s.Equal(work.ID, doc.Included[0].ID)

	s.Nil(s.list("/todos").Included)

	resp, raw := s.request(http.MethodDelete, "/categories/"+work.ID, s.token, "")
	s.Require().Equal(http.StatusNoContent, resp.StatusCode, string(raw))

	doc = s.list("/todos?include=category")
	s.Nil(doc.Included)
	for _, r := range doc.Data {
		s.JSONEq(`{"data":null}`, string(r.Relationships["category"]))
	}
}

func (s *APITestSuite) TestValidationAndEnvelopeErrors() {
	resp, raw := s.request(http.MethodPost, "/todos", s.token, `{"data":{"type":"todos","attributes":{"name":"  "}}}`)
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.JSONEq(`{"errors":[{"code":"422","title":"Name can't be blank","detail":"Name can't be blank"}]}`, string(raw))

	resp, _ = s.request(http.MethodPost, "/todos", s.token, `not json`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp, raw = s.request(http.MethodPost, "/users", "", `{"data":{"type":"users","attributes":{"email":"OWNER@example.com","password":"x"}}}`)
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Contains(string(raw), "Email has already been taken")
}

func (s *APITestSuite) TestOwnershipIsolation() {
	mine := s.createTodo(`{"name":"private"}`, "")
	category := s.createCategory(`{"name":"Mine"}`)

	other := s.signUpAndLogin("other@example.com", "secret")

	resp, _ := s.request(http.MethodGet, "/todos/"+mine.ID, other, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.request(http.MethodPatch, "/todos/"+mine.ID, other,
		`{"data":{"type":"todos","id":"`+mine.ID+`","attributes":{"name":"stolen"}}}`)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.request(http.MethodDelete, "/categories/"+category.ID, other, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, raw := s.request(http.MethodPost, "/todos", other,
		`{"data":{"type":"todos","attributes":{"name":"x"},"relationships":{"category":{"data":{"type":"categories","id":"`+category.ID+`"}}}}}`)
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Contains(string(raw), "Category must exist")

	s.Empty(names(s.listAs(other, "/todos")))
}

func (s *APITestSuite) listAs(token, path string) []resource {
	resp, raw := s.request(http.MethodGet, path, token, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var doc listDocument
	s.Require().NoError(json.Unmarshal(raw, &doc))
	return doc.Data
}

func (s *APITestSuite) TestDeleteIsSoftAndPurgeIsHard() {
	item := s.createTodo(`{"name":"temporary"}`, "")

	resp, _ := s.request(http.MethodDelete, "/todos/"+item.ID, s.token, "")
	s.Equal(http.StatusNoContent, resp.StatusCode)

	deleted := s.list("/todos?filter[status]=deleted")
	s.Equal([]string{"temporary"}, names(deleted.Data))
	s.NotNil(deleted.Data[0].Attributes["deleted-at"])

	resp, _ = s.request(http.MethodDelete, "/todos/"+item.ID+"/purge", s.token, "")
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp, _ = s.request(http.MethodGet, "/todos/"+item.ID, s.token, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestAPI_InvalidTokenIsRejected(t *testing.T) {
	tokens := auth.NewTokenManager(auth.TokenConfig{Secret: "one", Issuer: "todo-tracker"})
	forged, err := auth.NewTokenManager(auth.TokenConfig{Secret: "two", Issuer: "todo-tracker"}).
		IssueAccessToken(uuid.New())
	require.NoError(t, err)

	store := inmemory.NewStorage()
	router := handlers.NewRouter(handlers.Handlers{
		Todos:  handlers.NewTodoHandler(service.NewTodoService(store, store)),
		Health: handlers.NewHealthHandler(store),
	}, tokens, handlers.RouterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer "+forged.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Body.String())
}
