package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/curriculo/apiserver/internal/mailer"
)

// FeedbackHandler forwards user feedback to the configured inbox.
type FeedbackHandler struct {
	mail          *mailer.Mailer
	feedbackEmail string
	appName       string
}

func NewFeedbackHandler(mail *mailer.Mailer, feedbackEmail, appName string) *FeedbackHandler {
	return &FeedbackHandler{
		mail:          mail,
		feedbackEmail: feedbackEmail,
		appName:       appName,
	}
}

// FeedbackRouter registers the feedback route behind authentication.
func FeedbackRouter(r chi.Router, handler *FeedbackHandler, requireAuth func(http.Handler) http.Handler) {
	r.With(requireAuth).Post("/", handler.Send)
}

// FeedbackRequest carries a feedback submission.
type FeedbackRequest struct {
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

// Send queues the feedback email. The request never waits on delivery.
func (h *FeedbackHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "El titulo es requerido")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeMessage(w, http.StatusBadRequest, "El titulo es requerido")
		return
	}
	if strings.TrimSpace(req.Comment) == "" {
		writeMessage(w, http.StatusBadRequest, "El comentario es requerido")
		return
	}

	html, err := mailer.RenderFeedback(mailer.FeedbackEmail{
		Title:   req.Title,
		Comment: req.Comment,
		AppName: h.appName,
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "No se pudo enviar el feedback")
		return
	}
	h.mail.Send(mailer.Email{
		To:      []string{h.feedbackEmail},
		Subject: "Feedback " + h.appName + ": " + req.Title,
		HTML:    html,
	})

	writeMessage(w, http.StatusOK, "El feedback ha sido enviado satisfactoriamente")
}
