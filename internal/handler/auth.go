package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/userhubapp/userhub/internal/auth"
	"github.com/userhubapp/userhub/internal/user"
	"github.com/userhubapp/userhub/pkg/validator"
)

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	in := auth.RegisterInput{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password2"),
	}

	u, err := h.auth.Register(r.Context(), in)
	if err != nil {
		if ve := validator.ExtractValidationErrors(err); ve != nil {
			flashes := make([]Flash, 0, len(ve))
			for _, fieldErr := range ve {
				flashes = append(flashes, errorFlash(fmt.Sprintf("%s %s", fieldErr.Field, fieldErr.Message)))
			}
			h.pushFlashes(w, r, flashes...)
			http.Redirect(w, r, "/signup", http.StatusSeeOther)
			return
		}

		switch {
		case errors.Is(err, user.ErrUsernameTaken):
			h.pushFlashes(w, r, errorFlash("username is already taken"))
			http.Redirect(w, r, "/signup", http.StatusSeeOther)
		case errors.Is(err, user.ErrEmailTaken):
			h.pushFlashes(w, r, errorFlash("email is already registered"))
			http.Redirect(w, r, "/signup", http.StatusSeeOther)
		default:
			h.logger.ErrorContext(r.Context(), "signup failed", "error", err)
			h.pushFlashes(w, r, errorFlash("something went wrong, please try again"))
			http.Redirect(w, r, "/signup", http.StatusSeeOther)
		}
		return
	}

	h.logger.InfoContext(r.Context(), "signup completed", "user_id", u.ID.String())
	h.pushFlashes(w, r, successFlash("Account created, please sign in"))
	http.Redirect(w, r, signinPath, http.StatusSeeOther)
}

func (h *Handler) signin(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.ErrorContext(r.Context(), "signin failed", "error", err)
		}
		// One message for every failure mode; the page must not reveal
		// whether the username exists.
		h.pushFlashes(w, r, errorFlash("Invalid Credentials"))
		http.Redirect(w, r, signinPath, http.StatusSeeOther)
		return
	}

	if _, err := h.sessions.Authenticate(r.Context(), w, r, u.ID); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to establish session", "error", err, "user_id", u.ID.String())
		h.pushFlashes(w, r, errorFlash("something went wrong, please try again"))
		http.Redirect(w, r, signinPath, http.StatusSeeOther)
		return
	}

	h.pushFlashes(w, r, successFlash("Signed in"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) signout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to destroy session", "error", err)
	}

	h.pushFlashes(w, r, successFlash("Signed out"))
	http.Redirect(w, r, signinPath, http.StatusSeeOther)
}
