package templates

import (
	"embed"
	"html/template"
	"time"

	routinedomain "fittrack/internal/domain/routine"
)

// files содержит все HTML-страницы, встроенные в бинарник.
//
//go:embed *.html
var files embed.FS

// labels — отображаемые названия уровней сложности.
var labels = map[routinedomain.Difficulty]string{
	routinedomain.DifficultyBeginner:     "Начальный",
	routinedomain.DifficultyIntermediate: "Средний",
	routinedomain.DifficultyAdvanced:     "Продвинутый",
}

// funcs — функции, доступные во всех шаблонах.
var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("02.01.2006")
	},
	"truncate": func(n int, s string) string {
		runes := []rune(s)
		if len(runes) <= n {
			return s
		}
		return string(runes[:n]) + "…"
	},
	"difficultyLabel": func(d routinedomain.Difficulty) string {
		if label, ok := labels[d]; ok {
			return label
		}
		return string(d)
	},
}

// Parse собирает все встроенные страницы в один набор шаблонов.
// Имена шаблонов совпадают с именами файлов (index.html, 404.html и т.д.).
func Parse() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "*.html")
}
