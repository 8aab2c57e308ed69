package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adnan2001Bin/task-management-application/internal/logging"
	"github.com/Adnan2001Bin/task-management-application/internal/user"
)

type fakeRateLimiter struct {
	allow    bool
	cooldown bool
}

func (f *fakeRateLimiter) Allow(ctx context.Context, ip, purpose string) (bool, error) {
	return f.allow, nil
}

func (f *fakeRateLimiter) CooldownActive(ctx context.Context, email string) (bool, error) {
	return f.cooldown, nil
}

func (f *fakeRateLimiter) StartCooldown(ctx context.Context, email string) error {
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestHandler(t *testing.T) (*Handler, *Service, *fakeRateLimiter) {
	t.Helper()
	svc, _, _ := newTestService(t)
	limiter := &fakeRateLimiter{allow: true}
	return NewHandler(svc, limiter, logging.NewLogger(true)), svc, limiter
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCheckUsernameHandler(t *testing.T) {
	h, svc, _ := newTestHandler(t)

	_, err := svc.Register(context.Background(), user.SignUpInput{
		Name: "taken1", Email: "taken@x.com", Password: "abc123",
	})
	require.NoError(t, err)

	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{"available", "?name=fresh1", http.StatusOK, true, "Username is unique"},
		{"taken", "?name=taken1", http.StatusOK, false, "Username is already taken"},
		{"too short", "?name=a", http.StatusBadRequest, false, "Username must be at least 2 characters"},
		{"special characters", "?name=bad!name", http.StatusBadRequest, false, "Username must not contain special characters"},
		{"missing", "", http.StatusBadRequest, false, "Username is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/check-username-unique"+tt.query, nil)
			rec := httptest.NewRecorder()

			h.CheckUsername(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, tt.wantSuccess, env.Success)
			assert.Contains(t, env.Message, tt.wantMessage)
		})
	}
}

func TestSignUpHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h, _, _ := newTestHandler(t)
		rec := httptest.NewRecorder()

		h.SignUp(rec, postJSON("/sign-up", `{"name":"alice1","email":"alice@x.com","password":"abc123"}`))

		assert.Equal(t, http.StatusCreated, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.True(t, env.Success)
		assert.Contains(t, env.Message, "check your email")
	})

	t.Run("invalid body", func(t *testing.T) {
		h, _, _ := newTestHandler(t)
		rec := httptest.NewRecorder()

		h.SignUp(rec, postJSON("/sign-up", `{not json`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, decodeEnvelope(t, rec).Success)
	})

	t.Run("validation errors joined", func(t *testing.T) {
		h, _, _ := newTestHandler(t)
		rec := httptest.NewRecorder()

		h.SignUp(rec, postJSON("/sign-up", `{"name":"a","email":"bad","password":"short"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Contains(t, env.Message, "Username must be at least 2 characters")
		assert.Contains(t, env.Message, "Invalid email address")
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		h, svc, _ := newTestHandler(t)
		_, err := svc.Register(context.Background(), user.SignUpInput{
			Name: "alice1", Email: "alice@x.com", Password: "abc123",
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		h.SignUp(rec, postJSON("/sign-up", `{"name":"alice1","email":"other@x.com","password":"abc123"}`))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, decodeEnvelope(t, rec).Message, "Username is already taken")
	})

	t.Run("rate limited", func(t *testing.T) {
		h, _, limiter := newTestHandler(t)
		limiter.allow = false

		rec := httptest.NewRecorder()
		h.SignUp(rec, postJSON("/sign-up", `{"name":"alice1","email":"alice@x.com","password":"abc123"}`))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

// signUpAndVerify registers a user through the service and optionally
// completes verification.
func signUpAndVerify(t *testing.T, svc *Service, verify bool) *user.User {
	t.Helper()
	u, err := svc.Register(context.Background(), user.SignUpInput{
		Name: "alice1", Email: "alice@x.com", Password: "abc123",
	})
	require.NoError(t, err)
	if verify {
		require.NoError(t, svc.VerifyCode(context.Background(), u.Name, *u.VerificationCode))
	}
	return u
}

func TestSignInHandler(t *testing.T) {
	t.Run("success returns token and user", func(t *testing.T) {
		h, svc, _ := newTestHandler(t)
		signUpAndVerify(t, svc, true)

		rec := httptest.NewRecorder()
		h.SignIn(rec, postJSON("/sign-in", `{"identifier":"alice@x.com","password":"abc123"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.True(t, env.Success)

		var data SignInResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.NotEmpty(t, data.Token)
		assert.Equal(t, "alice1", data.User.Name)
		assert.True(t, data.User.IsVerified)
	})

	t.Run("unknown user and wrong password share one message", func(t *testing.T) {
		h, svc, _ := newTestHandler(t)
		signUpAndVerify(t, svc, true)

		for _, body := range []string{
			`{"identifier":"nobody@x.com","password":"abc123"}`,
			`{"identifier":"alice@x.com","password":"wrong1pass"}`,
		} {
			rec := httptest.NewRecorder()
			h.SignIn(rec, postJSON("/sign-in", body))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Invalid credentials", decodeEnvelope(t, rec).Message)
		}
	})

	t.Run("unverified account", func(t *testing.T) {
		h, svc, _ := newTestHandler(t)
		signUpAndVerify(t, svc, false)

		rec := httptest.NewRecorder()
		h.SignIn(rec, postJSON("/sign-in", `{"identifier":"alice1","password":"abc123"}`))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, decodeEnvelope(t, rec).Message, "verify your account")
	})
}

func TestVerifyCodeHandler(t *testing.T) {
	h, svc, _ := newTestHandler(t)
	u := signUpAndVerify(t, svc, false)
	code := *u.VerificationCode

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		rec := httptest.NewRecorder()
		h.VerifyCode(rec, postJSON("/verify-code", `{"name":"alice1","code":"`+wrong+`"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeEnvelope(t, rec).Message, "Invalid verification code")
	})

	t.Run("correct code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.VerifyCode(rec, postJSON("/verify-code", `{"name":"alice1","code":"`+code+`"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeEnvelope(t, rec).Success)
	})

	t.Run("already verified", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.VerifyCode(rec, postJSON("/verify-code", `{"name":"alice1","code":"`+code+`"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeEnvelope(t, rec).Message, "already verified")
	})
}

func TestResendVerificationHandler(t *testing.T) {
	const constantMessage = "If your email is registered and not verified, a new verification code has been sent."

	t.Run("constant response for unknown email", func(t *testing.T) {
		h, _, _ := newTestHandler(t)

		rec := httptest.NewRecorder()
		h.ResendVerification(rec, postJSON("/resend-verification", `{"email":"nobody@x.com"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, constantMessage, decodeEnvelope(t, rec).Message)
	})

	t.Run("constant response for registered email", func(t *testing.T) {
		h, svc, _ := newTestHandler(t)
		signUpAndVerify(t, svc, false)

		rec := httptest.NewRecorder()
		h.ResendVerification(rec, postJSON("/resend-verification", `{"email":"alice@x.com"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, constantMessage, decodeEnvelope(t, rec).Message)
	})

	t.Run("cooldown active", func(t *testing.T) {
		h, _, limiter := newTestHandler(t)
		limiter.cooldown = true

		rec := httptest.NewRecorder()
		h.ResendVerification(rec, postJSON("/resend-verification", `{"email":"alice@x.com"}`))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestRequireAuthMiddleware(t *testing.T) {
	tokens := newTestPasetoService(t, 'a')
	mw := NewMiddleware(tokens)

	protected := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		name, ok := GetUserNameFromContext(r.Context())
		require.True(t, ok)
		w.Write([]byte(userID + "/" + name))
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := tokens.CreateToken("user-123", "alice1", true, -time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes identity through", func(t *testing.T) {
		token, err := tokens.CreateToken("user-123", "alice1", true, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-123/alice1", rec.Body.String())
	})
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4567"
	assert.Equal(t, "10.0.0.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", getClientIP(req))
}
