package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/smartbio/internal/apperror"
	"github.com/sakif/smartbio/internal/auth"
	"github.com/sakif/smartbio/internal/handler"
	"github.com/sakif/smartbio/internal/model"
	"github.com/sakif/smartbio/internal/service"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// MockAccounts implements handler.AccountService.
type MockAccounts struct {
	CapturedCreds service.Credentials
	ReturnAccount *model.Account
	ReturnAuth    *service.AuthResult
	ReturnErr     error
}

func (m *MockAccounts) Register(_ context.Context, creds service.Credentials) (*model.Account, error) {
	m.CapturedCreds = creds
	return m.ReturnAccount, m.ReturnErr
}

func (m *MockAccounts) Authenticate(_ context.Context, creds service.Credentials) (*service.AuthResult, error) {
	m.CapturedCreds = creds
	return m.ReturnAuth, m.ReturnErr
}

// MockBios implements handler.BioService.
type MockBios struct {
	CapturedInput model.BioInput
	CapturedCtx   context.Context
	ReturnResult  *service.GenerateResult
	ReturnList    []model.Bio
	ReturnErr     error
}

func (m *MockBios) Generate(ctx context.Context, in model.BioInput) (*service.GenerateResult, error) {
	m.CapturedCtx = ctx
	m.CapturedInput = in
	return m.ReturnResult, m.ReturnErr
}

func (m *MockBios) ListMine(ctx context.Context) ([]model.Bio, error) {
	m.CapturedCtx = ctx
	return m.ReturnList, m.ReturnErr
}

// MockPages implements handler.PageService.
type MockPages struct {
	Docs      map[string][]byte
	ReturnErr error
}

func (m *MockPages) Serve(_ context.Context, id string) ([]byte, error) {
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	doc, ok := m.Docs[id]
	if !ok {
		return nil, apperror.NotFound("page", id)
	}
	return doc, nil
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var res handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	return res
}

func TestAuthHandler_HandleRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		mock := &MockAccounts{ReturnAccount: &model.Account{Email: "a@x.com", PasswordHash: "$2a$secret", CreatedAt: created}}
		h := handler.NewAuthHandler(mock, time.Hour, testLogger)

		req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBufferString(`{"email":"a@x.com","password":"p1"}`))
		rr := httptest.NewRecorder()
		h.HandleRegister(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "a@x.com", mock.CapturedCreds.Email)
		assert.Equal(t, "p1", mock.CapturedCreds.Password)
		assert.NotContains(t, rr.Body.String(), "secret", "the hash must never be sent")
		assert.Contains(t, rr.Body.String(), `"createdAt":"2026-01-02T03:04:05Z"`)
	})

	t.Run("duplicate", func(t *testing.T) {
		mock := &MockAccounts{ReturnErr: apperror.DuplicateAccount("a@x.com")}
		h := handler.NewAuthHandler(mock, time.Hour, testLogger)

		req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBufferString(`{"email":"a@x.com","password":"p1"}`))
		rr := httptest.NewRecorder()
		h.HandleRegister(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		res := decodeError(t, rr)
		assert.Equal(t, "duplicate_account", res.Error)
		assert.Equal(t, "email", res.Field)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		h := handler.NewAuthHandler(&MockAccounts{}, time.Hour, testLogger)

		for _, body := range []string{`{"email":`, ``, `{"email":"a@x.com","pasword":"typo"}`, `{} {}`} {
			req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBufferString(body))
			rr := httptest.NewRecorder()
			h.HandleRegister(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
			assert.Equal(t, "validation_error", decodeError(t, rr).Error)
		}
	})
}

func TestAuthHandler_HandleLogin(t *testing.T) {
	t.Run("success sets cookie", func(t *testing.T) {
		mock := &MockAccounts{ReturnAuth: &service.AuthResult{
			Identity: auth.Identity{Email: "a@x.com", SessionID: "s1"},
			Token:    "jwt-token",
		}}
		h := handler.NewAuthHandler(mock, 2*time.Hour, testLogger)

		req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewBufferString(`{"email":"a@x.com","password":"p1"}`))
		rr := httptest.NewRecorder()
		h.HandleLogin(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var res map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "a@x.com", res["email"])
		assert.Equal(t, "jwt-token", res["token"])

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.Equal(t, "jwt-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, 7200, cookies[0].MaxAge)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		mock := &MockAccounts{ReturnErr: apperror.InvalidCredentials()}
		h := handler.NewAuthHandler(mock, time.Hour, testLogger)

		req := httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewBufferString(`{"email":"a@x.com","password":"bad"}`))
		rr := httptest.NewRecorder()
		h.HandleLogin(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "invalid_credentials", decodeError(t, rr).Error)
		assert.Empty(t, rr.Result().Cookies())
	})
}

func TestAuthHandler_HandleLogout(t *testing.T) {
	h := handler.NewAuthHandler(&MockAccounts{}, time.Hour, testLogger)

	rr := httptest.NewRecorder()
	h.HandleLogout(rr, httptest.NewRequest(http.MethodDelete, "/api/sessions", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthHandler_HandleSession(t *testing.T) {
	h := handler.NewAuthHandler(&MockAccounts{}, time.Hour, testLogger)

	rr := httptest.NewRecorder()
	h.HandleSession(rr, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	assert.JSONEq(t, `{"authenticated":false}`, rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{Email: "a@x.com"}))
	rr = httptest.NewRecorder()
	h.HandleSession(rr, req)
	assert.JSONEq(t, `{"authenticated":true,"email":"a@x.com"}`, rr.Body.String())
}

func TestBioHandler_HandleGenerate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		mock := &MockBios{ReturnResult: &service.GenerateResult{
			Bio:       &model.Bio{ID: "abcd1234", BusinessName: "Shop", Link: "http://localhost:5000/abcd1234"},
			Published: true,
		}}
		h := handler.NewBioHandler(mock, testLogger)

		req := httptest.NewRequest(http.MethodPost, "/api/bios",
			bytes.NewBufferString(`{"businessName":"Shop","product":"shoes","objective":"buy now"}`))
		rr := httptest.NewRecorder()
		h.HandleGenerate(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, model.BioInput{BusinessName: "Shop", Product: "shoes", Objective: "buy now"}, mock.CapturedInput)

		var res struct {
			Bio       model.Bio `json:"bio"`
			Published bool      `json:"published"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "http://localhost:5000/abcd1234", res.Bio.Link)
		assert.True(t, res.Published)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"not authenticated", apperror.NotAuthenticated(), http.StatusUnauthorized, "not_authenticated"},
		{"validation", apperror.ValidationFailed("objective", "objective is required"), http.StatusBadRequest, "validation_error"},
		{"model down", apperror.GenerationUnavailable(), http.StatusServiceUnavailable, "generation_unavailable"},
		{"collision", apperror.IdentifierCollision("abcd1234"), http.StatusConflict, "identifier_collision"},
		{"storage", apperror.StorageFailure("saving bio"), http.StatusInternalServerError, "storage_failure"},
		{"unknown", errors.New("raw sql error: near SELECT"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewBioHandler(&MockBios{ReturnErr: tt.err}, testLogger)

			req := httptest.NewRequest(http.MethodPost, "/api/bios",
				bytes.NewBufferString(`{"businessName":"Shop","product":"shoes","objective":"buy now"}`))
			rr := httptest.NewRecorder()
			h.HandleGenerate(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			res := decodeError(t, rr)
			assert.Equal(t, tt.wantKind, res.Error)
			assert.NotContains(t, res.Message, "SELECT", "internal details must not leak")
		})
	}
}

func TestBioHandler_HandleGenerate_RetryAfter(t *testing.T) {
	h := handler.NewBioHandler(&MockBios{ReturnErr: apperror.GenerationUnavailable()}, testLogger)

	req := httptest.NewRequest(http.MethodPost, "/api/bios", bytes.NewBufferString(`{"businessName":"Shop","product":"shoes","objective":"buy"}`))
	rr := httptest.NewRecorder()
	h.HandleGenerate(rr, req)

	assert.Equal(t, "30", rr.Header().Get("Retry-After"))
}

func TestBioHandler_HandleList(t *testing.T) {
	t.Run("empty list is []", func(t *testing.T) {
		h := handler.NewBioHandler(&MockBios{ReturnList: nil}, testLogger)

		rr := httptest.NewRecorder()
		h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/bios", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
	})

	t.Run("in order", func(t *testing.T) {
		mock := &MockBios{ReturnList: []model.Bio{{ID: "00000001"}, {ID: "00000002"}}}
		h := handler.NewBioHandler(mock, testLogger)

		rr := httptest.NewRecorder()
		h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/bios", nil))

		var got []model.Bio
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.Equal(t, "00000001", got[0].ID)
		assert.Equal(t, "00000002", got[1].ID)
	})
}

func TestPageHandler_HandleServe(t *testing.T) {
	mock := &MockPages{Docs: map[string][]byte{"abcd1234": []byte("<h1>Shop</h1>")}}
	h := handler.NewPageHandler(mock, testLogger)

	r := chi.NewRouter()
	r.Get("/{id}", h.HandleServe)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"existing page", "/abcd1234", http.StatusOK, "<h1>Shop</h1>"},
		{"unknown id", "/doesnotexist", http.StatusNotFound, "Page not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), tt.wantBody)
		})
	}
}

func TestPageHandler_HandleServe_StorageFailure(t *testing.T) {
	h := handler.NewPageHandler(&MockPages{ReturnErr: apperror.StorageFailure("reading page")}, testLogger)

	r := chi.NewRouter()
	r.Get("/{id}", h.HandleServe)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/abcd1234", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
