package router

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"news-quiz/dto"
	"news-quiz/ingestion"
	"news-quiz/models"
	"news-quiz/repositories"
	"news-quiz/services"
)

type memQA struct {
	mu    sync.Mutex
	items []*models.NewsQA
}

func (m *memQA) Create(ctx context.Context, q *models.NewsQA) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.URI != nil {
		for _, it := range m.items {
			if it.URI != nil && *it.URI == *q.URI {
				return repositories.ErrDuplicateURI
			}
		}
	}
	q.ID = primitive.NewObjectID()
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	cp := *q
	m.items = append(m.items, &cp)
	return nil
}

func (m *memQA) live() []*models.NewsQA {
	var out []*models.NewsQA
	for _, it := range m.items {
		if !it.IsDeleted {
			out = append(out, it)
		}
	}
	return out
}

func (m *memQA) Get(ctx context.Context, id primitive.ObjectID) (*models.NewsQA, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.live() {
		if it.ID == id {
			cp := *it
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memQA) Update(ctx context.Context, id primitive.ObjectID, u repositories.UpdateNewsQA) (*models.NewsQA, error) {
	m.mu.Lock()
	for _, it := range m.live() {
		if it.ID != id {
			continue
		}
		if u.CategoryID != nil {
			it.CategoryID = *u.CategoryID
		}
		if u.Question != nil {
			it.Question = *u.Question
		}
		if u.Answer != nil {
			it.Answer = *u.Answer
		}
		if u.Options != nil {
			it.Options = u.Options
		}
		m.mu.Unlock()
		return m.Get(ctx, id)
	}
	m.mu.Unlock()
	return nil, repositories.ErrNotFound
}

func (m *memQA) SoftDelete(ctx context.Context, id primitive.ObjectID, by string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.live() {
		if it.ID == id {
			it.IsDeleted = true
			it.DeletedBy = by
			return nil
		}
	}
	return repositories.ErrNotFound
}

func inIDs(ids []int64, id int64) bool {
	if len(ids) == 0 {
		return true
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (m *memQA) List(ctx context.Context, opt repositories.ListNewsQAOptions) ([]models.NewsQA, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.NewsQA
	for _, it := range m.live() {
		if !inIDs(opt.CategoryIDs, it.CategoryID) {
			continue
		}
		if opt.Search != "" && !strings.Contains(strings.ToLower(it.Question), strings.ToLower(opt.Search)) {
			continue
		}
		out = append(out, *it)
	}
	return out, int64(len(out)), nil
}

func (m *memQA) Random(ctx context.Context, ids []int64) (*models.NewsQA, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pool []*models.NewsQA
	for _, it := range m.live() {
		if inIDs(ids, it.CategoryID) {
			pool = append(pool, it)
		}
	}
	if len(pool) == 0 {
		return nil, repositories.ErrNotFound
	}
	cp := *pool[rand.Intn(len(pool))]
	return &cp, nil
}

func (m *memQA) ByCategory(ctx context.Context, id int64, limit int64) ([]models.NewsQA, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.NewsQA{}
	for _, it := range m.live() {
		if it.CategoryID == id && (limit <= 0 || int64(len(out)) < limit) {
			out = append(out, *it)
		}
	}
	return out, nil
}

type memCategories struct {
	items []models.Category
}

func (m *memCategories) List(ctx context.Context, search string) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range m.items {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCategories) FindByIDs(ctx context.Context, ids []int64) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range m.items {
		if inIDs(ids, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCategories) Get(ctx context.Context, id int64) (*models.Category, error) {
	for _, c := range m.items {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memCategories) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if _, err := m.Get(ctx, id); err != nil {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

type memUsers struct {
	byID map[string]*models.UserDetail
}

func (m *memUsers) Get(ctx context.Context, userID string) (*models.UserDetail, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(ctx context.Context, userID string) (*models.UserDetail, error) {
	if _, ok := m.byID[userID]; ok {
		return nil, repositories.ErrAlreadyExists
	}
	m.byID[userID] = &models.UserDetail{UserID: userID, Categories: []int64{}}
	return m.Get(ctx, userID)
}

func (m *memUsers) ReplaceCategories(ctx context.Context, userID string, ids []int64) (*models.UserDetail, bool, error) {
	_, existed := m.byID[userID]
	m.byID[userID] = &models.UserDetail{UserID: userID, Categories: ids}
	u, err := m.Get(ctx, userID)
	return u, !existed, err
}

type stubRunner struct {
	stats ingestion.Stats
	err   error
	calls int
}

func (s *stubRunner) RunPass(ctx context.Context) (ingestion.Stats, error) {
	s.calls++
	return s.stats, s.err
}

type fixture struct {
	qa     *memQA
	users  *memUsers
	runner *stubRunner
	r      http.Handler
}

func newBackend(t *testing.T) *fixture {
	t.Helper()
	sports := int64(1)
	cats := &memCategories{items: []models.Category{
		{ID: 1, Name: "Sports", URI: "news/Sports"},
		{ID: 2, Name: "Football", ParentID: &sports},
		{ID: 3, Name: "Business", URI: "news/Business"},
	}}
	f := &fixture{
		qa:     &memQA{},
		users:  &memUsers{byID: map[string]*models.UserDetail{}},
		runner: &stubRunner{stats: ingestion.Stats{Categories: 2, Fetched: 1, Created: 1}},
	}
	f.r = NewBackend(Backend{
		NewsQA:      services.NewNewsQAService(f.qa, cats, f.users),
		Categories:  services.NewCategoryService(cats, f.qa, f.users),
		UserDetails: services.NewUserDetailService(f.users, cats),
		UpdateNews:  services.NewUpdateNewsService(f.runner),
	})
	return f
}

func (f *fixture) do(method, path, body, user string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)
	return w
}

const createBody = `{"category":1,"question":"Who won?","answer":"B","description":"Y won.","options":{"A":"X","B":"Y","C":"Z","D":"W"},"paragraph":"Y beat X."}`

func (f *fixture) create(t *testing.T, body string) dto.NewsQADTO {
	t.Helper()
	w := f.do(http.MethodPost, "/api/v1/newsqa", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out dto.NewsQADTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestNewsQACRUD(t *testing.T) {
	f := newBackend(t)
	created := f.create(t, createBody)
	assert.NotEmpty(t, created.ID)
	assert.EqualValues(t, 1, created.Category)

	w := f.do(http.MethodGet, "/api/v1/newsqa/"+created.ID, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPut, "/api/v1/newsqa/"+created.ID, `{"question":"Who lost?"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Who lost?")

	w = f.do(http.MethodPut, "/api/v1/newsqa/"+created.ID, `{"answer":"E"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodDelete, "/api/v1/newsqa/"+created.ID, "", "admin")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodGet, "/api/v1/newsqa/"+created.ID, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(http.MethodGet, "/api/v1/newsqa/not-an-id", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateNewsQAValidation(t *testing.T) {
	f := newBackend(t)

	w := f.do(http.MethodPost, "/api/v1/newsqa", `{"category":1,"question":"Q","answer":"A","options":{"A":"1","B":"2"}}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/v1/newsqa", strings.Replace(createBody, `"category":1`, `"category":99`, 1), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	withURI := strings.Replace(createBody, `"paragraph"`, `"uri":"art-1","paragraph"`, 1)
	f.create(t, withURI)
	w = f.do(http.MethodPost, "/api/v1/newsqa", withURI, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListUsesUserPreferences(t *testing.T) {
	f := newBackend(t)
	f.create(t, createBody)
	f.create(t, strings.Replace(createBody, `"category":1`, `"category":3`, 1))

	var page dto.Pagination[dto.NewsQADTO]
	w := f.do(http.MethodGet, "/api/v1/newsqa", "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.EqualValues(t, 2, page.Total)

	w = f.do(http.MethodPost, "/api/v1/user-details/update_categories", `{"categories":[3]}`, "u1")
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodGet, "/api/v1/newsqa", "", "u1")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.EqualValues(t, 1, page.Total)
	assert.EqualValues(t, 3, page.Data[0].Category)

	// 명시적 category 는 선호 카테고리보다 우선한다.
	w = f.do(http.MethodGet, "/api/v1/newsqa?category=1", "", "u1")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.EqualValues(t, 1, page.Total)
	assert.EqualValues(t, 1, page.Data[0].Category)
}

func TestRandomAndByCategory(t *testing.T) {
	f := newBackend(t)

	w := f.do(http.MethodGet, "/api/v1/newsqa/random", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	for i := 0; i < 7; i++ {
		f.create(t, createBody)
	}
	f.create(t, strings.Replace(createBody, `"category":1`, `"category":3`, 1))

	w = f.do(http.MethodGet, "/api/v1/newsqa/random?category=3", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"category":3`)

	var grouped map[string][]dto.NewsQADTO
	w = f.do(http.MethodGet, "/api/v1/newsqa/by_category", "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grouped))
	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"Business", "Sports"}, keys)
	assert.Len(t, grouped["Sports"], 5)

	w = f.do(http.MethodPost, "/api/v1/newsqa/all_by_category", `{"category":"sports"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []dto.NewsQADTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 7)
}

func TestCategoriesEndpoints(t *testing.T) {
	f := newBackend(t)
	f.create(t, createBody)

	var cats []dto.CategoryDTO
	w := f.do(http.MethodGet, "/api/v1/categories?search=foot", "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	require.Len(t, cats, 1)
	require.NotNil(t, cats[0].ParentCategory)
	assert.EqualValues(t, 1, *cats[0].ParentCategory)

	w = f.do(http.MethodGet, "/api/v1/categories/1", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodGet, "/api/v1/categories/42", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/api/v1/categories/1/questions", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var qs []dto.NewsQADTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &qs))
	assert.Len(t, qs, 1)

	w = f.do(http.MethodGet, "/api/v1/categories/user_categories", "", "u2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = f.do(http.MethodGet, "/api/v1/categories/user_categories", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserDetails(t *testing.T) {
	f := newBackend(t)

	w := f.do(http.MethodGet, "/api/v1/user-details", "", "u1")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/api/v1/user-details/update_categories", `{"categories":[1,99]}`, "u1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "99")
	_, exists := f.users.byID["u1"]
	assert.False(t, exists)

	w = f.do(http.MethodPost, "/api/v1/user-details/update_categories", `{"categories":[1,3,1]}`, "u1")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"user":"u1","categories":[1,3]}`, w.Body.String())

	w = f.do(http.MethodPost, "/api/v1/user-details/update_categories", `{"categories":[]}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u1","categories":[]}`, w.Body.String())

	w = f.do(http.MethodPost, "/api/v1/user-details", "", "u1")
	assert.Equal(t, http.StatusConflict, w.Code)
	w = f.do(http.MethodPost, "/api/v1/user-details", "", "u2")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpdateNews(t *testing.T) {
	f := newBackend(t)

	w := f.do(http.MethodPost, "/api/v1/newsqa/update_news", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"News updated successfully","stats":{"categories":2,"fetched":1,"created":1,"skipped":0,"dropped":0}}`, w.Body.String())

	f.runner.err = errors.New("event registry down")
	w = f.do(http.MethodPost, "/api/v1/newsqa/update_news", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 2, f.runner.calls)
}

func TestBackendServesSwaggerDocs(t *testing.T) {
	f := newBackend(t)

	w := f.do(http.MethodGet, "/swagger/index.html", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		BasePath string         `json:"basePath"`
		Paths    map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	for _, path := range []string{"/newsqa", "/newsqa/{id}", "/newsqa/update_news", "/categories", "/user-details/update_categories"} {
		assert.Contains(t, doc.Paths, path)
	}
	assert.NotContains(t, doc.Paths, "/quiz")
}
