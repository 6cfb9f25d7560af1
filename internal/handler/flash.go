package handler

import (
	"net/http"
)

const flashCookieName = "messages"

// Flash severities rendered on the next page load.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown after a redirect.
type Flash struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// pushFlashes merges messages with any unrendered flashes carried on the
// request cookie and rewrites the pending cookie, so flashes survive across
// redirect hops. Within a single request the last push wins; every handler
// pushes at most once.
func (h *Handler) pushFlashes(w http.ResponseWriter, r *http.Request, flashes ...Flash) {
	existing := h.popFlashes(w, r)
	existing = append(existing, flashes...)

	if err := h.cookies.SetFlash(w, flashCookieName, existing); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to set flash cookie", "error", err)
	}
}

// popFlashes reads and clears the pending flash messages.
func (h *Handler) popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	var flashes []Flash
	if err := h.cookies.GetFlash(w, r, flashCookieName, &flashes); err != nil {
		return nil
	}
	return flashes
}

func errorFlash(message string) Flash {
	return Flash{Severity: FlashError, Message: message}
}

func successFlash(message string) Flash {
	return Flash{Severity: FlashSuccess, Message: message}
}
