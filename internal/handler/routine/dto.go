package routine

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"

	routineuc "fittrack/internal/usecase/routine"
)

// RoutineForm описывает поля программы тренировок в форме создания.
// Упражнения в форму не входят: они передаются отдельной индексированной
// структурой exercises[i][field] и разбираются parseExerciseRows.
type RoutineForm struct {
	Name        string `form:"name" binding:"required,min=5,max=200"`
	Description string `form:"description" binding:"required,min=20,max=2000"`
	Difficulty  string `form:"difficulty" binding:"required,oneof=Beginner Intermediate Advanced"`
}

// ExerciseRow — сырые значения одной строки упражнения из формы.
// Все поля строковые: числа разбираются позже, при сборке ExerciseInput,
// чтобы при ошибке валидации вернуть пользователю введённое как есть.
type ExerciseRow struct {
	Index      int
	Name       string
	Sets       string
	Reps       string
	Weight     string
	WeightUnit string
	Notes      string
}

// exerciseKeyRe разбирает ключи вида exercises[0][name].
var exerciseKeyRe = regexp.MustCompile(`^exercises\[(\d+)\]\[([a-z_]+)\]$`)

// parseExerciseRows собирает плоские ключи exercises[i][field] в строки,
// отсортированные по индексу. Индексы берутся из формы как есть: они не
// обязаны быть непрерывными или начинаться с нуля.
func parseExerciseRows(form url.Values) []ExerciseRow {
	rows := map[int]*ExerciseRow{}

	for key, values := range form {
		m := exerciseKeyRe.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		row, ok := rows[idx]
		if !ok {
			row = &ExerciseRow{Index: idx}
			rows[idx] = row
		}

		value := values[0]
		switch m[2] {
		case "name":
			row.Name = value
		case "sets":
			row.Sets = value
		case "reps":
			row.Reps = value
		case "weight":
			row.Weight = value
		case "weight_unit":
			row.WeightUnit = value
		case "notes":
			row.Notes = value
		}
	}

	indices := make([]int, 0, len(rows))
	for idx := range rows {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	out := make([]ExerciseRow, 0, len(rows))
	for _, idx := range indices {
		out = append(out, *rows[idx])
	}
	return out
}

// complete сообщает, заполнены ли обязательные поля строки.
// Неполные строки пропускаются без ошибки: так пустые заготовки
// в конце формы не мешают сохранению.
func (r *ExerciseRow) complete() bool {
	return r.Name != "" && r.Sets != "" && r.Reps != ""
}

// buildExerciseInputs превращает полные строки формы в упражнения.
// Порядок упражнения — его индекс в форме, без перенумерации.
// Искажённое число в полной строке — ошибка валидации всей формы.
func buildExerciseInputs(rows []ExerciseRow) ([]routineuc.ExerciseInput, error) {
	inputs := make([]routineuc.ExerciseInput, 0, len(rows))

	for i := range rows {
		row := &rows[i]
		if !row.complete() {
			continue
		}

		sets, err := strconv.Atoi(row.Sets)
		if err != nil {
			return nil, fmt.Errorf("упражнение %d: подходы должны быть целым числом", row.Index)
		}
		reps, err := strconv.Atoi(row.Reps)
		if err != nil {
			return nil, fmt.Errorf("упражнение %d: повторения должны быть целым числом", row.Index)
		}

		var weight *float64
		if row.Weight != "" {
			w, err := strconv.ParseFloat(row.Weight, 64)
			if err != nil {
				return nil, fmt.Errorf("упражнение %d: вес должен быть числом", row.Index)
			}
			weight = &w
		}

		inputs = append(inputs, routineuc.ExerciseInput{
			Name:       row.Name,
			Sets:       sets,
			Reps:       reps,
			Weight:     weight,
			WeightUnit: row.WeightUnit,
			Order:      row.Index,
			Notes:      row.Notes,
		})
	}
	return inputs, nil
}

// fieldLabels — отображаемые названия полей в сообщениях об ошибках.
var fieldLabels = map[string]string{
	"Name":        "Название",
	"Description": "Описание",
	"Difficulty":  "Уровень сложности",
}

// fieldErrors разворачивает ошибку валидации формы в сообщения по полям.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out[""] = "Некорректные данные формы. Пожалуйста, попробуйте ещё раз."
		return out
	}

	for _, fe := range verrs {
		label, ok := fieldLabels[fe.Field()]
		if !ok {
			label = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = fmt.Sprintf("%s — обязательное поле", label)
		case "min":
			out[fe.Field()] = fmt.Sprintf("%s: минимум %s символов", label, fe.Param())
		case "max":
			out[fe.Field()] = fmt.Sprintf("%s: максимум %s символов", label, fe.Param())
		case "oneof":
			out[fe.Field()] = fmt.Sprintf("%s: выберите значение из списка", label)
		default:
			out[fe.Field()] = fmt.Sprintf("%s: недопустимое значение", label)
		}
	}
	return out
}
