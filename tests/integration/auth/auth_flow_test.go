//go:build integration
// +build integration

package auth_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	testcfg "fittrack/tests/integration/config"
)

func signupForm(username, email, password string) url.Values {
	return url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
	}
}

func TestSignupCreatesUserAndAuthenticates(t *testing.T) {
	env := testcfg.NewTestEnv(t)
	client := env.NewClient(t)

	rec := client.PostForm("/signup/", signupForm("anna", "anna@example.com", "secret1"))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	require.Equal(t, int64(1), env.Count(t, "users"))

	// Защищённая страница доступна: сессия установлена
	rec = client.Get("/admin/my-routines")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupDuplicateEmailCreatesNothing(t *testing.T) {
	env := testcfg.NewTestEnv(t)

	first := env.NewClient(t)
	rec := first.PostForm("/signup/", signupForm("anna", "anna@example.com", "secret1"))
	require.Equal(t, http.StatusFound, rec.Code)

	second := env.NewClient(t)
	rec = second.PostForm("/signup/", signupForm("boris", "anna@example.com", "other-secret"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "уже зарегистрирован")

	require.Equal(t, int64(1), env.Count(t, "users"))

	// Второй клиент не аутентифицирован
	rec = second.Get("/admin/my-routines")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "/login")
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := testcfg.NewTestEnv(t)

	client := env.NewClient(t)
	rec := client.PostForm("/signup/", signupForm("anna", "anna@example.com", "secret1"))
	require.Equal(t, http.StatusFound, rec.Code)

	wrongPassword := env.NewClient(t).PostForm("/login", url.Values{
		"email":    {"anna@example.com"},
		"password": {"not-the-password"},
	})
	unknownEmail := env.NewClient(t).PostForm("/login", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whatever"},
	})

	require.Equal(t, http.StatusOK, wrongPassword.Code)
	require.Equal(t, http.StatusOK, unknownEmail.Code)
	require.Contains(t, wrongPassword.Body.String(), "Неверный email или пароль")
	require.Contains(t, unknownEmail.Body.String(), "Неверный email или пароль")
}

func TestLoginSuccessAndLogout(t *testing.T) {
	env := testcfg.NewTestEnv(t)

	client := env.NewClient(t)
	rec := client.PostForm("/signup/", signupForm("anna", "anna@example.com", "secret1"))
	require.Equal(t, http.StatusFound, rec.Code)
	rec = client.Get("/logout")
	require.Equal(t, http.StatusFound, rec.Code)

	rec = client.Get("/admin/my-routines")
	require.Equal(t, http.StatusFound, rec.Code, "after logout the session is gone")

	rec = client.PostForm("/login", url.Values{
		"email":    {"anna@example.com"},
		"password": {"secret1"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	rec = client.Get("/admin/my-routines")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginNeverRedirectsToExternalNext(t *testing.T) {
	env := testcfg.NewTestEnv(t)

	client := env.NewClient(t)
	rec := client.PostForm("/signup/", signupForm("anna", "anna@example.com", "secret1"))
	require.Equal(t, http.StatusFound, rec.Code)
	client.Get("/logout")

	rec = client.PostForm("/login?next="+url.QueryEscape("https://evil.example/"), url.Values{
		"email":    {"anna@example.com"},
		"password": {"secret1"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestUnauthenticatedCreateRedirectsToLoginWithNext(t *testing.T) {
	env := testcfg.NewTestEnv(t)
	client := env.NewClient(t)

	rec := client.Get("/admin/routine/")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?next="+url.QueryEscape("/admin/routine/"), rec.Header().Get("Location"))
}
