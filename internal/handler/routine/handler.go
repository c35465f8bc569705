package routine

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "fittrack/internal/domain/routine"
	"fittrack/internal/handler/middleware"
	"fittrack/internal/handler/render"
	repo "fittrack/internal/repository/interfaces"
	"fittrack/internal/session"
	routineuc "fittrack/internal/usecase/routine"
)

// Handler обрабатывает HTTP-запросы, связанные с программами тренировок.
type Handler struct {
	routines routineuc.Service
	sessions *session.Manager
	renderer *render.Renderer
}

// NewHandler создаёт новый routine handler.
func NewHandler(routines routineuc.Service, sessions *session.Manager, renderer *render.Renderer) *Handler {
	return &Handler{
		routines: routines,
		sessions: sessions,
		renderer: renderer,
	}
}

// emptyRows — заготовки строк упражнений для чистой формы.
func emptyRows() []ExerciseRow {
	return []ExerciseRow{{Index: 0}, {Index: 1}, {Index: 2}}
}

// Index отображает главную страницу со всеми программами, новые первыми.
func (h *Handler) Index(c *gin.Context) {
	routines, err := h.routines.List(c.Request.Context())
	if err != nil {
		log.Printf("internal error in Index (List): err=%v", err)
		h.renderer.ServerError(c)
		return
	}
	h.renderer.HTML(c, http.StatusOK, "index.html", gin.H{
		"Routines": routines,
	})
}

// Detail отображает страницу программы по слагу.
// Неизвестный слаг — это 404, а не серверная ошибка.
func (h *Handler) Detail(c *gin.Context) {
	slug := c.Param("slug")

	rt, err := h.routines.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			h.renderer.NotFound(c)
			return
		}
		log.Printf("internal error in Detail (GetBySlug): slug=%s err=%v", slug, err)
		h.renderer.ServerError(c)
		return
	}
	h.renderer.HTML(c, http.StatusOK, "routine_view.html", gin.H{
		"Routine": rt,
	})
}

// ShowCreate отображает форму создания программы.
// Доступ только для аутентифицированных пользователей (RequireAuth).
func (h *Handler) ShowCreate(c *gin.Context) {
	h.renderer.HTML(c, http.StatusOK, "routine_form.html", gin.H{
		"Form":      RoutineForm{},
		"Errors":    map[string]string{},
		"Exercises": emptyRows(),
	})
}

// Create обрабатывает отправку формы создания программы.
//
// Упражнения приходят плоскими ключами exercises[i][field]; строки собираются
// в разреженную структуру по индексам и создаются только те, у которых
// заполнены название, подходы и повторения. Программа и упражнения
// сохраняются одной транзакцией: при любой ошибке не остаётся
// наполовину созданной программы.
func (h *Handler) Create(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		// RequireAuth не должен был пропустить запрос без пользователя
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var form RoutineForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderer.HTML(c, http.StatusOK, "routine_form.html", gin.H{
			"Form":      form,
			"Errors":    fieldErrors(err),
			"Exercises": h.submittedRows(c),
		})
		return
	}

	rows := h.submittedRows(c)
	inputs, err := buildExerciseInputs(rows)
	if err != nil {
		h.renderer.HTML(c, http.StatusOK, "routine_form.html", gin.H{
			"Form":      form,
			"Errors":    map[string]string{"": err.Error()},
			"Exercises": rows,
		})
		return
	}

	rt, err := h.routines.Create(c.Request.Context(), current.ID, routineuc.CreateInput{
		Name:        form.Name,
		Description: form.Description,
		Difficulty:  domain.Difficulty(form.Difficulty),
		Exercises:   inputs,
	})
	if err != nil {
		if errors.Is(err, repo.ErrSlugExists) {
			log.Printf("slug conflict in Create: user_id=%d name=%q err=%v", current.ID, form.Name, err)
		} else {
			log.Printf("internal error in Create: user_id=%d name=%q err=%v", current.ID, form.Name, err)
		}
		h.renderer.HTML(c, http.StatusOK, "routine_form.html", gin.H{
			"Form":      form,
			"Errors":    map[string]string{"": "Произошла ошибка при создании программы. Пожалуйста, попробуйте ещё раз."},
			"Exercises": rows,
		})
		return
	}

	_ = h.sessions.AddFlash(c.Writer, c.Request, session.FlashSuccess, "Программа успешно создана!")
	c.Redirect(http.StatusFound, "/routine/"+rt.Slug+"/")
}

// MyRoutines отображает программы текущего пользователя, новые первыми.
// Чужие программы сюда не попадают независимо от содержимого хранилища.
func (h *Handler) MyRoutines(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	routines, err := h.routines.ListByOwner(c.Request.Context(), current.ID)
	if err != nil {
		log.Printf("internal error in MyRoutines (ListByOwner): user_id=%d err=%v", current.ID, err)
		h.renderer.ServerError(c)
		return
	}
	h.renderer.HTML(c, http.StatusOK, "my_routines.html", gin.H{
		"Routines": routines,
	})
}

// submittedRows возвращает строки упражнений из отправленной формы
// или пустые заготовки, если форма их не содержит. Введённые значения
// сохраняются при повторном рендеринге формы с ошибкой.
func (h *Handler) submittedRows(c *gin.Context) []ExerciseRow {
	if c.Request.PostForm == nil {
		_ = c.Request.ParseForm()
	}
	rows := parseExerciseRows(c.Request.PostForm)
	if len(rows) == 0 {
		return emptyRows()
	}
	return rows
}
