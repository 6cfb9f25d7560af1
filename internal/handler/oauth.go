package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/userhubapp/userhub/internal/auth"
)

const oauthStateKey = "oauth_state"

func (h *Handler) oauthStart(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Ensure(r.Context(), w, r)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to ensure session", "error", err)
		h.pushFlashes(w, r, errorFlash("something went wrong, please try again"))
		http.Redirect(w, r, signinPath, http.StatusSeeOther)
		return
	}

	url, state, err := h.oauth.AuthURL()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build authorization url", "error", err)
		h.pushFlashes(w, r, errorFlash("something went wrong, please try again"))
		http.Redirect(w, r, signinPath, http.StatusSeeOther)
		return
	}

	sess.Set(oauthStateKey, state)
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to save session", "error", err)
		h.pushFlashes(w, r, errorFlash("something went wrong, please try again"))
		http.Redirect(w, r, signinPath, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (h *Handler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	var storedState string
	sess, err := h.sessions.Get(r.Context(), r)
	if err == nil {
		storedState, _ = sess.Get(oauthStateKey)
		sess.Delete(oauthStateKey)
		// State is single use regardless of outcome.
		_ = h.sessions.Save(r.Context(), w, sess)
	}

	profile, err := h.oauth.HandleCallback(
		r.Context(),
		r.URL.Query().Get("code"),
		r.URL.Query().Get("state"),
		storedState,
	)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidState) {
			h.logger.WarnContext(r.Context(), "oauth state mismatch")
		} else {
			h.logger.ErrorContext(r.Context(), "oauth callback failed", "error", err)
		}
		h.pushFlashes(w, r, errorFlash("Google sign-in failed, please try again"))
		http.Redirect(w, r, signinPath, http.StatusSeeOther)
		return
	}

	h.pushFlashes(w, r, successFlash(fmt.Sprintf("Signed in with Google as %s", profile.Email)))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
