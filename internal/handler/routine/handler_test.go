package routine_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"fittrack/internal/config"
	domain "fittrack/internal/domain/routine"
	userdomain "fittrack/internal/domain/user"
	"fittrack/internal/handler/middleware"
	"fittrack/internal/handler/render"
	routinehandler "fittrack/internal/handler/routine"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/internal/session"
	"fittrack/internal/templates"
	routineuc "fittrack/internal/usecase/routine"
	"fittrack/pkg/remember"
)

// ==== Fake for the routine usecase ====

type fakeRoutineService struct {
	created      *domain.Routine
	createErr    error
	createOwner  int64
	createInput  routineuc.CreateInput
	bySlug       map[string]*domain.Routine
	listAll      []domain.Routine
	listOwnerID  int64
	ownerResults []domain.Routine
}

func (f *fakeRoutineService) Create(_ context.Context, ownerID int64, input routineuc.CreateInput) (*domain.Routine, error) {
	f.createOwner = ownerID
	f.createInput = input
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeRoutineService) GetBySlug(_ context.Context, slug string) (*domain.Routine, error) {
	rt, ok := f.bySlug[slug]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return rt, nil
}

func (f *fakeRoutineService) List(context.Context) ([]domain.Routine, error) {
	return f.listAll, nil
}

func (f *fakeRoutineService) ListByOwner(_ context.Context, ownerID int64) ([]domain.Routine, error) {
	f.listOwnerID = ownerID
	return f.ownerResults, nil
}

// newTestRouter собирает роутер с routine-роутами в боевой конфигурации:
// защищённая группа за RequireAuth, публичные страницы без неё.
func newTestRouter(t *testing.T, svc routineuc.Service, currentUser *userdomain.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpl, err := templates.Parse()
	require.NoError(t, err)

	cfg := &config.SessionConfig{Secret: "test-secret-key-for-routines", RememberTTL: time.Hour}
	sessions := session.NewManager(cfg, remember.NewService(cfg), false)
	renderer := render.NewRenderer(sessions)
	h := routinehandler.NewHandler(svc, sessions, renderer)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	if currentUser != nil {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserKey, currentUser)
			c.Next()
		})
	}
	router.GET("/", h.Index)
	router.GET("/routine/:slug/", h.Detail)

	admin := router.Group("/admin")
	admin.Use(middleware.RequireAuth())
	{
		admin.GET("/routine/", h.ShowCreate)
		admin.POST("/routine/", h.Create)
		admin.GET("/my-routines", h.MyRoutines)
	}
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleRoutine(id int64, name, slug string, ownerID int64) domain.Routine {
	return domain.Routine{
		ID:          id,
		UserID:      ownerID,
		Name:        name,
		Description: "Программа на нижнюю часть тела, рассчитанная на шесть недель",
		Difficulty:  domain.DifficultyIntermediate,
		Slug:        slug,
		CreatedAt:   time.Now().UTC(),
		Owner:       &userdomain.User{ID: ownerID, Username: "anna"},
	}
}

func TestIndexListsRoutines(t *testing.T) {
	svc := &fakeRoutineService{listAll: []domain.Routine{
		sampleRoutine(2, "Upper Body Blast", "upper-body-blast", 1),
		sampleRoutine(1, "Leg Day Routine", "leg-day-routine", 1),
	}}
	router := newTestRouter(t, svc, nil)

	rec := get(router, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Upper Body Blast")
	require.Contains(t, rec.Body.String(), "Leg Day Routine")
	require.Contains(t, rec.Body.String(), `/routine/leg-day-routine/`)
}

func TestDetailRendersExercises(t *testing.T) {
	rt := sampleRoutine(1, "Leg Day Routine", "leg-day-routine", 1)
	w := 82.5
	rt.Exercises = []domain.Exercise{
		{Name: "Squats", Sets: 5, Reps: 5, Weight: &w, WeightUnit: "kg", Order: 0},
		{Name: "Lunges", Sets: 3, Reps: 12, Order: 2, Notes: "каждая нога"},
	}
	svc := &fakeRoutineService{bySlug: map[string]*domain.Routine{"leg-day-routine": &rt}}
	router := newTestRouter(t, svc, nil)

	rec := get(router, "/routine/leg-day-routine/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Squats")
	require.Contains(t, rec.Body.String(), "82.5 kg")
	require.Contains(t, rec.Body.String(), "каждая нога")
}

func TestDetailUnknownSlugIs404(t *testing.T) {
	svc := &fakeRoutineService{bySlug: map[string]*domain.Routine{}}
	router := newTestRouter(t, svc, nil)

	rec := get(router, "/routine/no-such-slug/")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Страница не найдена")
}

func TestCreateRequiresAuth(t *testing.T) {
	svc := &fakeRoutineService{}
	router := newTestRouter(t, svc, nil)

	rec := get(router, "/admin/routine/")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?next="+url.QueryEscape("/admin/routine/"), rec.Header().Get("Location"))
}

func TestCreateBuildsInputFromForm(t *testing.T) {
	created := sampleRoutine(1, "Leg Day Routine", "leg-day-routine", 7)
	svc := &fakeRoutineService{created: &created}
	router := newTestRouter(t, svc, &userdomain.User{ID: 7, Username: "anna"})

	rec := postForm(router, "/admin/routine/", url.Values{
		"name":        {"Leg Day Routine"},
		"description": {"Программа на нижнюю часть тела, рассчитанная на шесть недель"},
		"difficulty":  {"Intermediate"},

		"exercises[0][name]":   {"Squats"},
		"exercises[0][sets]":   {"5"},
		"exercises[0][reps]":   {"5"},
		"exercises[0][weight]": {"82.5"},

		"exercises[1][name]": {"Leg Press"}, // неполная строка пропускается

		"exercises[2][name]":  {"Lunges"},
		"exercises[2][sets]":  {"3"},
		"exercises[2][reps]":  {"12"},
		"exercises[2][notes]": {"каждая нога"},
	})

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/routine/leg-day-routine/", rec.Header().Get("Location"))

	require.Equal(t, int64(7), svc.createOwner)
	require.Equal(t, domain.DifficultyIntermediate, svc.createInput.Difficulty)
	require.Len(t, svc.createInput.Exercises, 2)
	require.Equal(t, 0, svc.createInput.Exercises[0].Order)
	require.Equal(t, 2, svc.createInput.Exercises[1].Order)
	require.NotNil(t, svc.createInput.Exercises[0].Weight)
	require.Nil(t, svc.createInput.Exercises[1].Weight)
}

func TestCreateValidationKeepsInput(t *testing.T) {
	svc := &fakeRoutineService{}
	router := newTestRouter(t, svc, &userdomain.User{ID: 7, Username: "anna"})

	rec := postForm(router, "/admin/routine/", url.Values{
		"name":               {"Leg"}, // короче пяти символов
		"description":        {"Программа на нижнюю часть тела, рассчитанная на шесть недель"},
		"difficulty":         {"Intermediate"},
		"exercises[0][name]": {"Squats"},
		"exercises[0][sets]": {"5"},
		"exercises[0][reps]": {"5"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "минимум 5")
	// Введённые упражнения не теряются при повторном рендеринге формы
	require.Contains(t, rec.Body.String(), "Squats")
}

func TestCreateSlugConflictShowsGenericError(t *testing.T) {
	svc := &fakeRoutineService{createErr: repo.ErrSlugExists}
	router := newTestRouter(t, svc, &userdomain.User{ID: 7, Username: "anna"})

	rec := postForm(router, "/admin/routine/", url.Values{
		"name":        {"Leg Day Routine"},
		"description": {"Программа на нижнюю часть тела, рассчитанная на шесть недель"},
		"difficulty":  {"Intermediate"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Произошла ошибка при создании программы")
}

func TestMyRoutinesScopedToCurrentUser(t *testing.T) {
	svc := &fakeRoutineService{ownerResults: []domain.Routine{
		sampleRoutine(1, "Leg Day Routine", "leg-day-routine", 7),
	}}
	router := newTestRouter(t, svc, &userdomain.User{ID: 7, Username: "anna"})

	rec := get(router, "/admin/my-routines")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(7), svc.listOwnerID)
	require.Contains(t, rec.Body.String(), "Leg Day Routine")
}
