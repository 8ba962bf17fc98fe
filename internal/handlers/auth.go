package handlers

import (
	"errors"
	"net/http"

	"github.com/ahsanfayaz52/hopperhelps/internal/auth"
	"github.com/ahsanfayaz52/hopperhelps/internal/common"
	"github.com/ahsanfayaz52/hopperhelps/internal/logging"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func readCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if isJSON(r) {
		err := decodeJSON(r, &c)
		return c, err
	}
	c.Email = r.FormValue("email")
	c.Password = r.FormValue("password")
	return c, nil
}

func RegisterHandler(authSvc *auth.Service, secureCookie bool, log logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, map[string]string{
				"page":    "register",
				"message": "POST email and password to create an account",
			})
			return
		}

		c, err := readCredentials(r)
		if err != nil {
			writeInvalid(w)
			return
		}

		user, token, err := authSvc.Register(r.Context(), c.Email, c.Password)
		if err != nil {
			writeAuthError(w, r, log, err)
			return
		}
		log.Info(r.Context(), "user registered", "user", user.ID)

		auth.SetSessionCookie(w, token, authSvc.Tokens().TTL(), secureCookie)
		signedIn(w, r, http.StatusCreated, user)
	}
}

func LoginHandler(authSvc *auth.Service, secureCookie bool, log logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, map[string]string{
				"page":    "login",
				"message": "POST email and password to sign in",
			})
			return
		}

		c, err := readCredentials(r)
		if err != nil {
			writeInvalid(w)
			return
		}

		user, token, err := authSvc.Login(r.Context(), c.Email, c.Password)
		if err != nil {
			writeAuthError(w, r, log, err)
			return
		}

		auth.SetSessionCookie(w, token, authSvc.Tokens().TTL(), secureCookie)
		signedIn(w, r, http.StatusOK, user)
	}
}

func LogoutHandler(secureCookie bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth.ClearSessionCookie(w, secureCookie)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// signedIn answers API clients with the user and sends browsers to the
// dashboard.
func signedIn(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	if isJSON(r) {
		writeJSON(w, status, map[string]any{"user": user})
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func writeAuthError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		log.Error(r.Context(), "auth failed", "err", err)
		writeError(w, http.StatusInternalServerError, auth.ErrGenericFailure.Message)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, common.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	writeError(w, status, authErr.Message)
}
