package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/curriculo/apiserver/internal/services"
	"github.com/curriculo/apiserver/internal/store"
	"github.com/curriculo/apiserver/types"
)

// CVLanguageHandler provides HTTP handlers for the CV-language catalog.
type CVLanguageHandler struct {
	service *services.CVLanguageService
}

func NewCVLanguageHandler(service *services.CVLanguageService) *CVLanguageHandler {
	return &CVLanguageHandler{service: service}
}

// CVLanguageRouter registers CV-language routes. Every route requires a
// privileged role.
func CVLanguageRouter(r chi.Router, service *services.CVLanguageService, requireAuth func(http.Handler) http.Handler) {
	handler := NewCVLanguageHandler(service)

	r.Use(requireAuth, RequirePrivileged)
	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	r.Route("/{languageID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
	})
}

// CVLanguageRequest names the language to register or rename to.
type CVLanguageRequest struct {
	Language string `json:"language"`
}

func (h *CVLanguageHandler) List(w http.ResponseWriter, r *http.Request) {
	languages, err := h.service.List(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "No se pudo listar los idiomas")
		return
	}
	if len(languages) == 0 {
		writeMessage(w, http.StatusNotFound, "No hay lenguajes de CV registrados.")
		return
	}
	writeJSON(w, http.StatusOK, languages)
}

func (h *CVLanguageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "languageID"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	language, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "No existe el idioma.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "No se pudo obtener el idioma")
		return
	}
	writeJSON(w, http.StatusOK, language)
}

func (h *CVLanguageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CVLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Language) == "" {
		writeMessage(w, http.StatusBadRequest, "El idioma es requerido")
		return
	}

	language, err := h.service.Create(r.Context(), strings.TrimSpace(req.Language))
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeMessage(w, http.StatusBadRequest, "El idioma ya está registrado")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "No se pudo registrar el idioma")
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Message string           `json:"message"`
		Data    types.CVLanguage `json:"data"`
	}{
		Message: "Idioma de CV registrado satisfactoriamente.",
		Data:    language,
	})
}

func (h *CVLanguageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "languageID"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CVLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Language) == "" {
		writeMessage(w, http.StatusBadRequest, "El idioma es requerido")
		return
	}

	if err := h.service.Update(r.Context(), id, strings.TrimSpace(req.Language)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "No existe el idioma.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "No se pudo actualizar el idioma")
		return
	}
	writeMessage(w, http.StatusOK, "Idioma actualizado.")
}

func (h *CVLanguageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "languageID"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "No existe el idioma.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "No se pudo eliminar el idioma")
		return
	}
	writeMessage(w, http.StatusOK, "Idioma eliminado satisfactoriamente.")
}
