package session

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/chat-session", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/option", h.SelectOption)
		r.Post("/{id}/images", h.UploadImages)
		r.Post("/{id}/images/done", h.ImagesDone)
		r.Post("/{id}/style", h.UpdateStyle)
		r.Post("/{id}/style/done", h.StyleDone)
		r.Post("/{id}/confirm", h.Confirm)
		r.Post("/{id}/edit", h.RequestEdit)
		r.Post("/{id}/description", h.SubmitDescription)
		r.Post("/{id}/follow-up/open", h.OpenFollowUp)
		r.Post("/{id}/follow-up", h.SubmitFollowUp)
		r.Get("/{id}/download", h.Download)
		r.Post("/{id}/reset", h.Reset)
		r.Delete("/{id}", h.EndSession)
	})
}
