package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Adnan2001Bin/task-management-application/internal/httputil"
	"github.com/Adnan2001Bin/task-management-application/internal/logging"
	"github.com/Adnan2001Bin/task-management-application/internal/user"
)

// Handler contains the HTTP handlers for the registration and
// authentication endpoints.
type Handler struct {
	service     *Service
	rateLimiter RateLimiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter RateLimiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// SignInRequest represents the login request body. The identifier matches
// either an email or a username.
type SignInRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// VerifyCodeRequest represents the verification-code submission body.
type VerifyCodeRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// ResendVerificationRequest represents the resend verification email request.
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// SignInResponse carries the session token and a safe user summary.
type SignInResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the user shape exposed to clients.
type UserResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

// CheckUsername handles GET /check-username-unique?name=<candidate>.
// Tri-state: 400 with joined validation errors, 200 taken, 200 available.
func (h *Handler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	name := r.URL.Query().Get("name")

	available, err := h.service.CheckUsername(r.Context(), name)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			httputil.RespondFailure(w, ve.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("failed to check username", "error", err.Error())
		httputil.RespondFailure(w, "Error checking username", http.StatusInternalServerError)
		return
	}

	if !available {
		httputil.RespondFailure(w, "Username is already taken", http.StatusOK)
		return
	}

	httputil.RespondSuccess(w, "Username is unique", http.StatusOK)
}

// SignUp handles POST /sign-up.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	h.allowOrReject(w, r, ip, "sign-up", func() {
		var req user.SignUpInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid sign-up request body", "error", err.Error())
			httputil.RespondFailure(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		logger = logger.WithFields(map[string]any{"name": req.Name})

		newUser, err := h.service.Register(r.Context(), req)
		if err != nil {
			var ve *ValidationError
			switch {
			case errors.As(err, &ve):
				logger.Warn("registration failed: validation error", "error", ve.Error())
				httputil.RespondFailure(w, ve.Error(), http.StatusBadRequest)
			case errors.Is(err, user.ErrDuplicateName):
				logger.Warn("registration failed: name already exists")
				httputil.RespondFailure(w, "Username is already taken", http.StatusConflict)
			case errors.Is(err, user.ErrDuplicateEmail):
				logger.Warn("registration failed: email already exists")
				httputil.RespondFailure(w, "Email is already registered", http.StatusConflict)
			case errors.Is(err, ErrEmailSendFailed):
				// The record exists; report degraded success so the client
				// can route the user to the resend flow.
				logger.Warn("registration succeeded but email send failed", "user_id", newUser.ID.Hex())
				httputil.RespondSuccess(w,
					"Account created, but the verification email could not be sent. Please request a new code.",
					http.StatusCreated)
			default:
				logger.Error("registration failed: internal error", "error", err.Error())
				httputil.RespondFailure(w, "Error registering user", http.StatusInternalServerError)
			}
			return
		}

		logger.Info("user registered successfully", "user_id", newUser.ID.Hex())
		httputil.RespondSuccess(w,
			"Registration successful. Please check your email for the verification code.",
			http.StatusCreated)
	})
}

// SignIn handles POST /sign-in: the credential exchange producing a session
// token. Unknown user and wrong password share one generic message; the
// unverified message is only reachable with valid credentials.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	h.allowOrReject(w, r, ip, "sign-in", func() {
		var req SignInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid sign-in request body", "error", err.Error())
			httputil.RespondFailure(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		u, token, err := h.service.Login(r.Context(), req.Identifier, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidCredentials):
				// Internal kinds stay distinct in logs only.
				logger.Warn("login failed", "reason", err.Error())
				httputil.RespondFailure(w, "Invalid credentials", http.StatusUnauthorized)
			case errors.Is(err, ErrNotVerified):
				logger.Warn("login failed: account not verified")
				httputil.RespondFailure(w, "Please verify your account before logging in", http.StatusForbidden)
			default:
				logger.Error("login failed: internal error", "error", err.Error())
				httputil.RespondFailure(w, "Error signing in", http.StatusInternalServerError)
			}
			return
		}

		logger.Info("user logged in successfully", "user_id", u.ID.Hex())
		httputil.RespondSuccessWithData(w, "Signed in successfully", SignInResponse{
			Token: token,
			User: UserResponse{
				ID:         u.ID.Hex(),
				Name:       u.Name,
				Email:      u.Email,
				IsVerified: u.IsVerified,
			},
		}, http.StatusOK)
	})
}

// VerifyCode handles POST /verify-code.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verify-code request body", "error", err.Error())
		httputil.RespondFailure(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.service.VerifyCode(r.Context(), req.Name, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidVerificationCode):
			logger.Warn("verification failed", "reason", err.Error())
			httputil.RespondFailure(w, "Invalid verification code", http.StatusBadRequest)
		case errors.Is(err, ErrCodeExpired):
			logger.Warn("verification failed: code expired")
			httputil.RespondFailure(w, "Verification code has expired. Please request a new one.", http.StatusBadRequest)
		case errors.Is(err, ErrAlreadyVerified):
			logger.Warn("verification failed: already verified")
			httputil.RespondFailure(w, "This account is already verified. You can sign in now.", http.StatusBadRequest)
		default:
			logger.Error("verification failed: internal error", "error", err.Error())
			httputil.RespondFailure(w, "Error verifying account", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("account verified successfully", "name", req.Name)
	httputil.RespondSuccess(w, "Account verified successfully. You can now sign in.", http.StatusOK)
}

// ResendVerification handles POST /resend-verification.
// Always returns success to prevent email enumeration.
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid resend-verification request body", "error", err.Error())
		httputil.RespondFailure(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	onCooldown, err := h.rateLimiter.CooldownActive(r.Context(), req.Email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
		// Continue despite error
	} else if onCooldown {
		logger.Warn("email on cooldown", "email", req.Email)
		httputil.RespondFailure(w, "Please wait before requesting another code", http.StatusTooManyRequests)
		return
	}

	if err := h.rateLimiter.StartCooldown(r.Context(), req.Email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	_ = h.service.ResendVerification(r.Context(), req.Email)

	httputil.RespondSuccess(w,
		"If your email is registered and not verified, a new verification code has been sent.",
		http.StatusOK)
}

// Me handles GET /me, echoing the authenticated identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	name, _ := GetUserNameFromContext(r.Context())

	httputil.RespondJSON(w, map[string]any{
		"user_id": userID,
		"name":    name,
	}, http.StatusOK)
}

// allowOrReject applies per-IP rate limiting before running next.
// Limiter errors fail open.
func (h *Handler) allowOrReject(w http.ResponseWriter, r *http.Request, ip, purpose string, next func()) {
	logger := logging.GetLoggerFromContext(r.Context())

	allowed, err := h.rateLimiter.Allow(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if !allowed {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondFailure(w, "Too many requests, please try again later", http.StatusTooManyRequests)
		return
	}

	next()
}

// getClientIP extracts the client IP address from the request.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr format is "IP:port", extract just the IP
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
