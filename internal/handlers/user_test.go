package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/curriculo/apiserver/config"
	"github.com/curriculo/apiserver/internal/mailer"
	"github.com/curriculo/apiserver/internal/services"
	"github.com/curriculo/apiserver/internal/store"
	"github.com/curriculo/apiserver/types"
)

type stubRoleRepo struct {
	roles map[int]types.Role
}

func (r *stubRoleRepo) GetByID(ctx context.Context, id int) (types.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return types.Role{}, store.ErrNotFound
	}
	return role, nil
}

// channelQueue captures publishes from the fire-and-forget mailer.
type channelQueue struct {
	published chan []byte
}

func newChannelQueue() *channelQueue {
	return &channelQueue{published: make(chan []byte, 8)}
}

func (q *channelQueue) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	q.published <- data
	return "1", nil
}

func (q *channelQueue) waitForEmail(t *testing.T) mailer.Email {
	t.Helper()
	select {
	case data := <-q.published:
		var email mailer.Email
		if err := json.Unmarshal(data, &email); err != nil {
			t.Fatalf("decode queued email: %v", err)
		}
		return email
	case <-time.After(2 * time.Second):
		t.Fatalf("no email was queued")
		return mailer.Email{}
	}
}

type registerFixture struct {
	handler *UserHandler
	users   *stubUserRepo
	tokens  *stubTokens
	queue   *channelQueue
}

func newRegisterFixture(users ...types.User) *registerFixture {
	userRepo := newStubUserRepo(users...)
	tokens := &stubTokens{}
	queue := newChannelQueue()
	roles := &stubRoleRepo{roles: map[int]types.Role{
		1: {ID: 1, Name: "SuperAdmin", IsPrivileged: true, Host: "admin.curriculo.app"},
		3: {ID: 3, Name: "Company", Host: "acme.com"},
		4: {ID: 4, Name: "Padawan", Host: types.HostWildcard},
	}}

	mail := mailer.NewMailer(queue, config.MailConfig{Queue: "outbound-mail"}, "Curriculo")
	handler := NewUserHandler(
		services.NewUserService(userRepo, stubAddressRepo{}),
		services.NewRoleService(roles),
		services.NewCompanyService(&stubCompanyRepo{}),
		tokens,
		testCodeIssuer(),
		mail,
		nil,
		"http://localhost:3000/login",
		"Curriculo",
	)
	return &registerFixture{handler: handler, users: userRepo, tokens: tokens, queue: queue}
}

func (f *registerFixture) register(t *testing.T, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	f.handler.Register(rec, req)
	return rec
}

func TestRegisterRequiresRole(t *testing.T) {
	fixture := newRegisterFixture()
	rec := fixture.register(t, RegisterRequest{Email: "ana@example.com"})
	assertMessage(t, rec, http.StatusBadRequest, "El rol es requerido")
}

func TestRegisterRejectsSuperAdminRole(t *testing.T) {
	fixture := newRegisterFixture()
	rec := fixture.register(t, RegisterRequest{Email: "ana@example.com", Role: 1})
	assertMessage(t, rec, http.StatusBadRequest, "No puede crear un usuario con este rol")
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	fixture := newRegisterFixture()
	rec := fixture.register(t, RegisterRequest{Email: "ana@example.com", Role: 99})
	assertMessage(t, rec, http.StatusBadRequest, "no existe el rol dado")
}

func TestRegisterEnforcesRoleHost(t *testing.T) {
	fixture := newRegisterFixture()
	rec := fixture.register(t, RegisterRequest{Email: "hr@other.com", Role: 3})
	assertMessage(t, rec, http.StatusBadRequest, "no está autorizado para este rol")
}

func TestRegisterRejectsSuperAdminEmail(t *testing.T) {
	admin := types.User{
		ID: 1, Email: "root@admin.curriculo.app", RoleID: 1, IsSuperuser: true,
		Role: types.Role{ID: 1, Name: "SuperAdmin", IsPrivileged: true},
	}
	fixture := newRegisterFixture(admin)
	rec := fixture.register(t, RegisterRequest{Email: admin.Email, Role: 4})
	assertMessage(t, rec, http.StatusBadRequest, "Este usuario debe acceder de forma diferente")
}

func TestRegisterCreatesUserAndMailsCode(t *testing.T) {
	fixture := newRegisterFixture()
	rec := fixture.register(t, RegisterRequest{Email: "Ana@Example.com", Role: 4})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	var created types.User
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if created.Email != "ana@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}

	email := fixture.queue.waitForEmail(t)
	if len(email.To) != 1 || email.To[0] != "ana@example.com" {
		t.Fatalf("email addressed to %v", email.To)
	}
	if email.HTML == "" {
		t.Fatalf("email has no body")
	}
}

func TestRegisterExistingUserRetiresToken(t *testing.T) {
	user := types.User{ID: 7, Email: "ana@example.com", RoleID: 4, Role: types.Role{ID: 4, Name: "Padawan"}}
	fixture := newRegisterFixture(user)
	old := types.Token{Value: "live-token", UserID: user.ID, CreatedAt: time.Now()}
	fixture.tokens.existing = &old

	rec := fixture.register(t, RegisterRequest{Email: user.Email, Role: 4})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if len(fixture.tokens.deleted) != 1 || fixture.tokens.deleted[0] != old.Value {
		t.Fatalf("deleted tokens = %v, want [%s]", fixture.tokens.deleted, old.Value)
	}
	fixture.queue.waitForEmail(t)
}

func TestToggleHiddenFieldsValidation(t *testing.T) {
	fixture := newRegisterFixture(types.User{ID: 7, Email: "ana@example.com"})

	data, _ := json.Marshal(HiddenFieldsRequest{HiddenFields: []string{"password"}})
	req := httptest.NewRequest(http.MethodPatch, "/users/7/hidden-fields", bytes.NewReader(data))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("userID", "7")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	fixture.handler.ToggleHiddenFields(rec, req)
	assertMessage(t, rec, http.StatusBadRequest, "Campo no válido")
}
