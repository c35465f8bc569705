package auth

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// SignupForm описывает поля формы регистрации.
// Ограничения полей совпадают с ограничениями доменной модели пользователя.
type SignupForm struct {
	Username string `form:"username" binding:"required,min=3,max=80"`
	Email    string `form:"email" binding:"required,email,max=120"`
	Password string `form:"password" binding:"required,min=6"`
}

// LoginForm описывает поля формы входа.
type LoginForm struct {
	Email      string `form:"email" binding:"required,email"`
	Password   string `form:"password" binding:"required"`
	RememberMe bool   `form:"remember_me"`
}

// fieldLabels — отображаемые названия полей в сообщениях об ошибках.
var fieldLabels = map[string]string{
	"Username": "Имя пользователя",
	"Email":    "Email",
	"Password": "Пароль",
}

// fieldErrors разворачивает ошибку валидации формы в сообщения по полям.
// Ключ карты — имя поля структуры формы. Нераспознанная ошибка привязки
// (например, искажённое тело запроса) превращается в общую ошибку формы
// под пустым ключом.
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
		case "email":
			out[fe.Field()] = "Некорректный email-адрес"
		case "min":
			out[fe.Field()] = fmt.Sprintf("%s: минимум %s символов", label, fe.Param())
		case "max":
			out[fe.Field()] = fmt.Sprintf("%s: максимум %s символов", label, fe.Param())
		default:
			out[fe.Field()] = fmt.Sprintf("%s: недопустимое значение", label)
		}
	}
	return out
}
