package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innofeed/innofeed/internal/metrics"
	"github.com/innofeed/innofeed/internal/model"
	"github.com/innofeed/innofeed/internal/service"
)

var errDB = errors.New("connection reset")

type fakeAccounts struct {
	registered []service.RegisterInput
	registerFn func(service.RegisterInput) (int64, error)
	user       *model.User
	loginErr   error
}

func (f *fakeAccounts) Register(_ context.Context, input service.RegisterInput) (int64, error) {
	f.registered = append(f.registered, input)
	if f.registerFn != nil {
		return f.registerFn(input)
	}
	return 1, nil
}

func (f *fakeAccounts) Login(context.Context, string, string) (*model.User, error) {
	return f.user, f.loginErr
}

type fakeCatalog struct {
	domains []model.Domain
	err     error
}

func (f *fakeCatalog) Domains(context.Context) ([]model.Domain, error) {
	return f.domains, f.err
}

type fakeFeeds struct {
	feed    *service.Feed
	feedErr error
	saved   map[int64][]int64
	saveErr error
}

func (f *fakeFeeds) Feed(_ context.Context, userID int64) (*service.Feed, error) {
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	feed := *f.feed
	feed.UserID = userID
	return &feed, nil
}

func (f *fakeFeeds) SetPreferences(_ context.Context, userID int64, ids []int64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[userID] = ids
	return nil
}

type testAPI struct {
	router   http.Handler
	contract routers.Router
	accounts *fakeAccounts
	catalog  *fakeCatalog
	feeds    *fakeFeeds
	metrics  *metrics.InMemoryRecorder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(filepath.Join("..", "..", "docs", "api", "openapi.yaml"))
	require.NoError(t, err)
	contract, err := gorillamux.NewRouter(doc)
	require.NoError(t, err)

	api := &testAPI{
		contract: contract,
		accounts: &fakeAccounts{},
		catalog:  &fakeCatalog{},
		feeds:    &fakeFeeds{feed: &service.Feed{Items: []model.Item{}}, saved: map[int64][]int64{}},
		metrics:  metrics.NewInMemory(),
	}

	h := New(Deps{
		Accounts: api.accounts,
		Catalog:  api.catalog,
		Feeds:    api.feeds,
		Metrics:  api.metrics,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	r := chi.NewRouter()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	h.Routes(r)
	api.router = r

	return api
}

// do serves one request and checks 200 responses against the API contract.
func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		a.validateResponse(t, method, path, body, rec)
	}
	return rec
}

func (a *testAPI) validateResponse(t *testing.T, method, path, body string, rec *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	route, params, err := a.contract.FindRoute(req)
	require.NoError(t, err)

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{Request: req, PathParams: params, Route: route},
		Status:                 rec.Code,
		Header:                 rec.Header(),
		Body:                   io.NopCloser(bytes.NewReader(rec.Body.Bytes())),
	}
	assert.NoError(t, openapi3filter.ValidateResponse(context.Background(), input), "response violates contract")
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func ptr[T any](v T) *T { return &v }

func TestRoot(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "InnoFeed backend running", decodeBody(t, rec)["message"])
}

func TestRegister(t *testing.T) {
	api := newTestAPI(t)
	api.accounts.registerFn = func(service.RegisterInput) (int64, error) { return 42, nil }

	rec := api.do(t, http.MethodPost, "/register", `{"name":"Ann","email":"ann@example.com","password":"pw"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "User registered successfully", body["message"])
	assert.Equal(t, float64(42), body["user_id"])
	assert.Equal(t, []service.RegisterInput{{Name: "Ann", Email: "ann@example.com", Password: "pw"}}, api.accounts.registered)
}

func TestRegister_Duplicate(t *testing.T) {
	api := newTestAPI(t)
	api.accounts.registerFn = func(service.RegisterInput) (int64, error) { return 0, service.ErrEmailRegistered }

	rec := api.do(t, http.MethodPost, "/register", `{"name":"Ann","email":"ann@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decodeBody(t, rec)["detail"])
}

func TestRegister_MissingField(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/register", `{"email":"ann@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["detail"], "name is required")
	assert.Empty(t, api.accounts.registered)
}

func TestRegister_InvalidJSON(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/register", `{`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Invalid request body", decodeBody(t, rec)["detail"])
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		user     *model.User
		wantName string
	}{
		{"stored name", &model.User{ID: 5, Email: "bob@example.com", Name: ptr("Robert")}, "Robert"},
		{"email local part", &model.User{ID: 5, Email: "bob@example.com"}, "bob"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := newTestAPI(t)
			api.accounts.user = tc.user

			rec := api.do(t, http.MethodPost, "/login", `{"email":"bob@example.com","password":"pw"}`)

			require.Equal(t, http.StatusOK, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "Login successful", body["message"])
			assert.Equal(t, float64(5), body["user_id"])
			assert.Equal(t, tc.wantName, body["name"])
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	api.accounts.loginErr = service.ErrInvalidCredentials

	rec := api.do(t, http.MethodPost, "/login", `{"email":"bob@example.com","password":"bad"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, rec)["detail"])
}

func TestLogin_InternalError(t *testing.T) {
	api := newTestAPI(t)
	api.accounts.loginErr = errDB

	rec := api.do(t, http.MethodPost, "/login", `{"email":"bob@example.com","password":"pw"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), errDB.Error())
}

func TestDomains(t *testing.T) {
	api := newTestAPI(t)
	api.catalog.domains = []model.Domain{{ID: 1, Name: "AI"}, {ID: 2, Name: "Robotics"}}

	rec := api.do(t, http.MethodGet, "/domains", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"AI"},{"id":2,"name":"Robotics"}]`, rec.Body.String())
}

func TestDomains_Failure(t *testing.T) {
	api := newTestAPI(t)
	api.catalog.err = errDB

	rec := api.do(t, http.MethodGet, "/domains", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["detail"])
}

func TestFeed_NoPreferences(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/feed/0", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":0,"feed":[],"message":"No domain preferences found for this user."}`, rec.Body.String())
}

func TestFeed_VariantFields(t *testing.T) {
	api := newTestAPI(t)
	date := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	api.feeds.feed = &service.Feed{
		HasPreferences: true,
		Items: []model.Item{
			{ID: 2, Type: model.ItemTypePatent, Title: "Gripper", Assignee: ptr("N/A"), ApplicationNumber: ptr("X123"), CitedByCount: ptr(4)},
			{ID: 1, Type: model.ItemTypePaper, Title: "Attention", Date: &date, DOI: ptr("10.1/abc"), DomainID: ptr(int64(3))},
		},
	}

	rec := api.do(t, http.MethodGet, "/feed/9", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		UserID  int64            `json:"user_id"`
		Feed    []map[string]any `json:"feed"`
		Message *string          `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(9), resp.UserID)
	assert.Nil(t, resp.Message)
	require.Len(t, resp.Feed, 2)

	patent, paper := resp.Feed[0], resp.Feed[1]
	assert.Equal(t, "N/A", patent["assignee"])
	assert.Equal(t, "X123", patent["application_number"])
	assert.Equal(t, float64(4), patent["cited_by_count"])
	assert.NotContains(t, patent, "doi")
	assert.Contains(t, patent, "abstract", "shared keys are always present")
	assert.Nil(t, patent["abstract"])

	assert.Equal(t, "10.1/abc", paper["doi"])
	assert.Equal(t, "2024-03-09T14:30:00", paper["date"])
	assert.Equal(t, float64(3), paper["domain_id"])
	assert.Contains(t, paper, "journal_ref")
	assert.NotContains(t, paper, "assignee")

	snap := api.metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.FeedsServed)
	assert.Equal(t, uint64(2), snap.FeedItemsServed)
}

func TestFeed_QueryFailure(t *testing.T) {
	api := newTestAPI(t)
	api.feeds.feedErr = errDB

	rec := api.do(t, http.MethodGet, "/feed/3", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "DB query failed: connection reset", decodeBody(t, rec)["detail"])
}

func TestFeed_InvalidUserID(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/feed/abc", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSetPreferences(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/set-preferences/7", `{"domain_ids":[1,3]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Preferences saved successfully", decodeBody(t, rec)["message"])
	assert.Equal(t, []int64{1, 3}, api.feeds.saved[7])
}

func TestSetPreferences_Empty(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/set-preferences/7", `{"domain_ids":[]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{}, api.feeds.saved[7])
}

func TestSetPreferences_MissingIDs(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/set-preferences/7", `{}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotContains(t, api.feeds.saved, int64(7))
}

func TestSetPreferences_Failure(t *testing.T) {
	api := newTestAPI(t)
	api.feeds.saveErr = errDB

	rec := api.do(t, http.MethodPost, "/set-preferences/7", `{"domain_ids":[1]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to save preferences", decodeBody(t, rec)["detail"])
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeBody(t, rec)["detail"])

	rec = api.do(t, http.MethodDelete, "/domains", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method Not Allowed", decodeBody(t, rec)["detail"])
}
