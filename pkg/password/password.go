package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Hash хеширует пароль с использованием bcrypt.
// Соль генерируется автоматически, поэтому два хэша одного пароля различаются.
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify сравнивает хэш и «сырой» пароль. Любая ошибка сравнения,
// включая повреждённый хэш, трактуется как несовпадение.
func Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
