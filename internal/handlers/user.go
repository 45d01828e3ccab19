package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/curriculo/apiserver/internal/auth"
	"github.com/curriculo/apiserver/internal/mailer"
	"github.com/curriculo/apiserver/internal/services"
	"github.com/curriculo/apiserver/internal/storage"
	"github.com/curriculo/apiserver/internal/store"
	"github.com/curriculo/apiserver/types"
)

const (
	roleIDSuperAdmin   = 1
	maxPhotoFormMemory = 32 << 20
	formFieldPhoto     = "photo"
)

// hideableFields lists the profile fields an administrator may hide.
var hideableFields = map[string]bool{
	"email":     true,
	"phone":     true,
	"birthdate": true,
	"gender":    true,
	"address":   true,
	"about_me":  true,
	"status":    true,
}

// UserHandler provides HTTP handlers for registration and user management.
type UserHandler struct {
	userService    *services.UserService
	roleService    *services.RoleService
	companyService *services.CompanyService
	tokens         TokenIssuer
	codes          *auth.CodeIssuer
	mail           *mailer.Mailer
	media          *storage.Storage
	activateURL    string
	appName        string
}

func NewUserHandler(
	userService *services.UserService,
	roleService *services.RoleService,
	companyService *services.CompanyService,
	tokens TokenIssuer,
	codes *auth.CodeIssuer,
	mail *mailer.Mailer,
	media *storage.Storage,
	activateURL string,
	appName string,
) *UserHandler {
	return &UserHandler{
		userService:    userService,
		roleService:    roleService,
		companyService: companyService,
		tokens:         tokens,
		codes:          codes,
		mail:           mail,
		media:          media,
		activateURL:    activateURL,
		appName:        appName,
	}
}

// UserRouter registers user routes. Registration is public; everything
// else runs behind the auth middleware.
func UserRouter(r chi.Router, handler *UserHandler, requireAuth func(http.Handler) http.Handler) {
	r.Post("/", handler.Register)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", handler.ListUsers)
		r.Put("/me", handler.UpdateProfile)
		r.Post("/me/photo", handler.UploadPhoto)
		r.Get("/{userID}", handler.GetUser)
		r.With(RequirePrivileged).Patch("/{userID}/hidden-fields", handler.ToggleHiddenFields)
		r.Delete("/{userID}", handler.DeleteUser)
	})
}

// RegisterRequest asks for an access code, creating the account on first
// contact.
type RegisterRequest struct {
	Email string `json:"email"`
	Role  int    `json:"role"`
}

// Register creates the user when absent, mails a fresh access code and
// retires any live token so the next login starts clean.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "El email es requerido")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "El email es requerido")
		return
	}
	if req.Role == 0 {
		writeMessage(w, http.StatusBadRequest, "El rol es requerido")
		return
	}
	if req.Role == roleIDSuperAdmin {
		writeMessage(w, http.StatusBadRequest, "No puede crear un usuario con este rol")
		return
	}

	ctx := r.Context()
	role, err := h.roleService.ValidateRoleEmail(ctx, req.Email, req.Role)
	if err != nil {
		if errors.Is(err, services.ErrRoleNotFound) || errors.Is(err, services.ErrRoleHost) {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		writeMessage(w, http.StatusInternalServerError, "No se pudo registrar el usuario")
		return
	}

	status := http.StatusOK
	user, err := h.userService.GetByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		user, err = h.userService.Create(ctx, types.User{
			Email:    req.Email,
			RoleID:   role.ID,
			Role:     role,
			IsActive: true,
		})
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "No se pudo registrar el usuario")
			return
		}
		user.Role = role
		status = http.StatusCreated
	case err != nil:
		writeMessage(w, http.StatusInternalServerError, "No se pudo registrar el usuario")
		return
	default:
		if user.IsSuperuser || user.RoleID == roleIDSuperAdmin {
			writeMessage(w, http.StatusBadRequest, "Este usuario debe acceder de forma diferente")
			return
		}
		if user.StatusDelete {
			writeMessage(w, http.StatusBadRequest, "Este usuario está restringido de la plataforma")
			return
		}
	}

	code := h.codes.Issue(user)
	html, err := mailer.RenderAccessCode(mailer.AccessCodeEmail{
		Name:    user.Name,
		Email:   user.Email,
		Code:    code,
		URL:     h.activateURL,
		AppName: h.appName,
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "No se pudo registrar el usuario")
		return
	}
	h.mail.Send(mailer.Email{
		To:      []string{user.Email},
		Subject: "Código de acceso " + h.appName,
		HTML:    html,
	})

	// A new code retires the old credential. The deletion is best effort:
	// a missed delete only leaves a token that will expire on its own.
	if existing, err := h.tokens.GetByUserID(ctx, user.ID); err == nil {
		_ = h.tokens.Delete(ctx, existing.Value)
	}

	writeJSON(w, status, user)
}

// UserListResponse is the paginated user listing.
type UserListResponse struct {
	Data       []types.User `json:"data"`
	Count      int          `json:"count"`
	Pages      int          `json:"pages"`
	PageNumber int          `json:"page_number"`
	PageSize   int          `json:"page_size"`
	NextPage   *int         `json:"next_page"`
}

// ListUsers returns active, non-deleted, non-superuser users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize, err := parsePagination(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	users, total, err := h.userService.List(r.Context(), (pageNumber-1)*pageSize, pageSize)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "No se pudo listar los usuarios")
		return
	}

	pages := (total + pageSize - 1) / pageSize
	resp := UserListResponse{
		Data:       users,
		Count:      total,
		Pages:      pages,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}
	if pageNumber < pages {
		next := pageNumber + 1
		resp.NextPage = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

// UserResponse pairs a user with their company when the role calls for it.
type UserResponse struct {
	User    types.User     `json:"user"`
	Company *types.Company `json:"company,omitempty"`
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	user, err := h.userService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "No existe el usuario dado")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "No se pudo obtener el usuario")
		return
	}

	resp := UserResponse{User: user}
	if user.Role.Name == roleNameCompany {
		company, err := h.companyService.GetByCoordinate(ctx, user.ID)
		if err == nil {
			resp.Company = &company
		} else if !errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusInternalServerError, "No se pudo obtener el usuario")
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateProfileRequest carries the editable profile fields plus the
// optional address block.
type UpdateProfileRequest struct {
	Name              string         `json:"name"`
	PaternalSurname   string         `json:"paternal_surname"`
	MothersMaidenName string         `json:"mothers_maiden_name"`
	AboutMe           string         `json:"about_me"`
	Birthdate         *time.Time     `json:"birthdate"`
	Phone             string         `json:"phone"`
	Gender            string         `json:"gender"`
	Subscribed        bool           `json:"subscribed"`
	Status            string         `json:"status"`
	Address           *types.Address `json:"address"`
}

// UpdateProfile updates the authenticated user's profile. The address is
// created on first save and updated afterwards.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Token invalido")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Datos no válidos")
		return
	}

	ctx := r.Context()
	user.Name = req.Name
	user.PaternalSurname = req.PaternalSurname
	user.MothersMaidenName = req.MothersMaidenName
	user.AboutMe = req.AboutMe
	user.Birthdate = req.Birthdate
	user.Phone = req.Phone
	user.Gender = req.Gender
	user.Subscribed = req.Subscribed
	user.Status = req.Status

	if err := h.userService.UpdateProfile(ctx, user); err != nil {
		writeMessage(w, http.StatusInternalServerError, "No se pudo actualizar el usuario")
		return
	}

	if req.Address != nil {
		address, err := h.userService.UpsertAddress(ctx, user, *req.Address)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, "No se pudo actualizar el usuario")
			return
		}
		user.AddressID = &address.ID
		user.Address = &address
	}

	writeJSON(w, http.StatusOK, user)
}

// HiddenFieldsRequest names the profile fields to toggle.
type HiddenFieldsRequest struct {
	HiddenFields []string `json:"hidden_fields"`
}

// ToggleHiddenFields flips visibility of profile fields on the target
// user. Privileged roles only.
func (h *UserHandler) ToggleHiddenFields(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req HiddenFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.HiddenFields) == 0 {
		writeMessage(w, http.StatusBadRequest, "Campo no válido")
		return
	}
	for _, field := range req.HiddenFields {
		if !hideableFields[field] {
			writeMessage(w, http.StatusBadRequest, "Campo no válido")
			return
		}
	}

	ctx := r.Context()
	target, err := h.userService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "No existe el usuario dado")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "No se pudo actualizar el usuario")
		return
	}

	hidden, err := h.userService.ToggleHiddenFields(ctx, target, req.HiddenFields)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "No se pudo actualizar el usuario")
		return
	}
	writeJSON(w, http.StatusOK, HiddenFieldsRequest{HiddenFields: hidden})
}

// DeleteUser soft-deletes the target user and their address. Superadmin
// accounts cannot be deleted.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	target, err := h.userService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "No existe el usuario dado")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "No se pudo eliminar el usuario")
		return
	}
	if target.IsSuperuser || target.RoleID == roleIDSuperAdmin {
		writeMessage(w, http.StatusBadRequest, "No puede eliminar este usuario")
		return
	}

	if err := h.userService.Delete(ctx, target); err != nil {
		writeMessage(w, http.StatusInternalServerError, "No se pudo eliminar el usuario")
		return
	}
	if existing, err := h.tokens.GetByUserID(ctx, target.ID); err == nil {
		_ = h.tokens.Delete(ctx, existing.Value)
	}
	writeMessage(w, http.StatusOK, "Usuario eliminado satisfactoriamente")
}

// UploadPhoto stores the authenticated user's profile photo in object
// storage and records its key.
func (h *UserHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Token invalido")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoFormMemory); err != nil {
		writeMessage(w, http.StatusBadRequest, "La imagen es requerida")
		return
	}
	file, header, err := r.FormFile(formFieldPhoto)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "La imagen es requerida")
		return
	}
	defer file.Close()

	ctx := r.Context()
	key := storage.PhotoKey(user.Email, header.Filename)
	contentType := header.Header.Get("Content-Type")
	if err := h.media.Put(ctx, key, file, header.Size, contentType); err != nil {
		writeMessage(w, http.StatusInternalServerError, "No se pudo guardar la imagen")
		return
	}
	if err := h.userService.SetPhotoKey(ctx, user.ID, key); err != nil {
		writeMessage(w, http.StatusInternalServerError, "No se pudo guardar la imagen")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"photo_key": key})
}
