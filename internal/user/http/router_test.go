package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authhttp "github.com/darsapp/backend/internal/auth/http"
	authservice "github.com/darsapp/backend/internal/auth/service"
	"github.com/darsapp/backend/internal/auth/token"
	"github.com/darsapp/backend/internal/common/clock"
	"github.com/darsapp/backend/internal/common/logger"
	scheduledomain "github.com/darsapp/backend/internal/schedule/domain"
	schedulerepo "github.com/darsapp/backend/internal/schedule/repository"
	"github.com/darsapp/backend/internal/user/domain"
	userrepo "github.com/darsapp/backend/internal/user/repository"
	"github.com/darsapp/backend/internal/user/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memUserRepo struct {
	users map[string]domain.User
}

func (r *memUserRepo) Create(ctx context.Context, user domain.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	user, ok := r.users[username]
	if !ok {
		return domain.User{}, userrepo.ErrUserNotFound
	}
	return user, nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return domain.User{}, userrepo.ErrUserNotFound
}

type memScheduleRepo struct {
	schedules map[string]scheduledomain.Schedule
}

func (r *memScheduleRepo) Replace(ctx context.Context, tutorID string, scheduleID string, days scheduledomain.WeekDays) (scheduledomain.Schedule, error) {
	sched := scheduledomain.Schedule{ID: scheduleID, TutorID: tutorID, Days: days, CreatedAt: time.Now()}
	r.schedules[tutorID] = sched
	return sched, nil
}

func (r *memScheduleRepo) FindByTutorID(ctx context.Context, tutorID string) (scheduledomain.Schedule, error) {
	sched, ok := r.schedules[tutorID]
	if !ok {
		return scheduledomain.Schedule{}, schedulerepo.ErrScheduleNotFound
	}
	return sched, nil
}

func (r *memScheduleRepo) ListByTutorID(ctx context.Context, tutorID string) ([]scheduledomain.Schedule, error) {
	sched, ok := r.schedules[tutorID]
	if !ok {
		return nil, nil
	}
	return []scheduledomain.Schedule{sched}, nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash string, password string) error {
	if hash != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}

type seqIDGenerator struct {
	next int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.next++
	return "id-" + string(rune('0'+g.next)), nil
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	log, err := logger.New("", "test", "CRITICAL")
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}

	users := &memUserRepo{users: map[string]domain.User{}}
	schedules := &memScheduleRepo{schedules: map[string]scheduledomain.Schedule{}}

	tokens := token.NewService(testSecret, clock.NewRealClock())
	auth := authservice.NewAuthService(users, tokens, plainHasher{}, 30*time.Minute, 30*24*time.Hour, log)
	guard := authhttp.NewGuard(auth, authhttp.CookieExtractor{Name: authhttp.AccessTokenCookie}, log)

	userService := service.NewUserService(users, schedules, plainHasher{}, &seqIDGenerator{}, log)

	mux := http.NewServeMux()
	NewHandler(userService, guard, log).Register(mux)
	return mux
}

func register(t *testing.T, mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRegisterUser(t *testing.T) {
	mux := newTestMux(t)

	rec := register(t, mux, `{"username": "ahmad", "password": "secure-password", "name": "Ahmad", "email": "ahmad@example.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Username != "ahmad" || body.ID == "" {
		t.Errorf("unexpected user payload: %+v", body)
	}
}

func TestRegisterUserInvalidPayload(t *testing.T) {
	mux := newTestMux(t)

	rec := register(t, mux, `{"username": "ab", "password": "short", "name": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var envelope struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if envelope.Code != "VALIDATION_FAILED" {
		t.Errorf("expected code VALIDATION_FAILED, got %q", envelope.Code)
	}
}

func TestRegisterUserMalformedJSON(t *testing.T) {
	mux := newTestMux(t)

	rec := register(t, mux, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetUserByIDIncludesSchedule(t *testing.T) {
	mux := newTestMux(t)

	created := register(t, mux, `{"username": "ahmad", "password": "secure-password", "name": "Ahmad"}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", created.Code)
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &user); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/"+user.ID, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Username string `json:"username"`
		Schedule []struct {
			ID string `json:"id"`
		} `json:"schedule"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Username != "ahmad" {
		t.Errorf("expected username 'ahmad', got %q", body.Username)
	}
	if len(body.Schedule) != 1 {
		t.Errorf("expected the empty schedule created at registration, got %+v", body.Schedule)
	}
}

func TestGetUnknownUser(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/users/missing", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMeRequiresCookie(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMeWithValidCookie(t *testing.T) {
	mux := newTestMux(t)

	created := register(t, mux, `{"username": "ahmad", "password": "secure-password", "name": "Ahmad"}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", created.Code)
	}

	tokens := token.NewService(testSecret, clock.NewRealClock())
	accessToken, err := tokens.Issue("ahmad", 30*time.Minute)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: authhttp.AccessTokenCookie, Value: accessToken})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Username != "ahmad" {
		t.Errorf("expected username 'ahmad', got %q", body.Username)
	}
}
