package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symptom-diary-server/internal/models"
)

func TestRegisterLoginMe(t *testing.T) {
	router, _, _ := newTestServer(t)

	recorder := doRequest(t, router, http.MethodPost, "/api/auth/register", "",
		map[string]string{"name": "Anna", "email": "anna@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, recorder.Code)

	var registered models.UserSanitized
	decodeData(t, recorder, &registered)
	assert.Equal(t, "anna@example.com", registered.Email)
	// Self-registration never yields an administrator.
	assert.False(t, registered.IsAdmin)
	assert.NotContains(t, recorder.Body.String(), "password")

	recorder = doRequest(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "anna@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, recorder.Code)

	var login struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	decodeData(t, recorder, &login)
	require.NotEmpty(t, login.AccessToken)
	assert.Equal(t, "bearer", login.TokenType)

	recorder = doRequest(t, router, http.MethodGet, "/api/users/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var me models.UserSanitized
	decodeData(t, recorder, &me)
	assert.Equal(t, "anna@example.com", me.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, db, _ := newTestServer(t)
	createUser(t, db, "Anna", "anna@example.com", false)

	// The duplicate lands on the email unique index; the translated error
	// must come back as a clean 400, not a raw constraint message.
	recorder := doRequest(t, router, http.MethodPost, "/api/auth/register", "",
		map[string]string{"name": "Other Anna", "email": "anna@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "already exists")
	assert.NotContains(t, recorder.Body.String(), "constraint")
}

func TestLoginWrongPassword(t *testing.T) {
	router, db, _ := newTestServer(t)
	createUser(t, db, "Anna", "anna@example.com", false)

	recorder := doRequest(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "anna@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doRequest(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "nobody@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthenticationRequired(t *testing.T) {
	router, _, _ := newTestServer(t)

	recorder := doRequest(t, router, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doRequest(t, router, http.MethodGet, "/api/appointments", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
