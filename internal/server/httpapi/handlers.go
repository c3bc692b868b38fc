package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	All          bool   `json:"all"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type upgradePlanRequest struct {
	Plan string `json:"plan"`
}

type userResponse struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	Plan            string     `json:"plan"`
	PlanExpiresAt   *time.Time `json:"plan_expires_at,omitempty"`
	IsEmailVerified bool       `json:"is_email_verified"`
	CreatedAt       time.Time  `json:"created_at"`
}

type tokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	User   userResponse   `json:"user"`
	Tokens tokensResponse `json:"tokens"`
}

type planResponse struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents"`
	Currency     string `json:"currency"`
	BillingCycle string `json:"billing_cycle"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Email:           u.Email,
		Role:            u.Role,
		Plan:            u.Plan,
		PlanExpiresAt:   u.PlanExpiresAt,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
	}
}

func toTokensResponse(p *services.TokenPair) tokensResponse {
	return tokensResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// serviceError translates service sentinels into HTTP statuses. Anything
// unmatched is a 500 with a generic message so internals never leak.
func (s *HTTPServer) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrEmailTaken):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenMalformed),
		errors.Is(err, common.ErrTokenUnknown),
		errors.Is(err, common.ErrTokenRevoked),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenAlreadyUsed):
		s.writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, common.ErrUserNotFound), errors.Is(err, common.ErrPlanNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// isSingleUseTokenError reports whether err is a rejected reset or
// verification token. Those are client mistakes (bad link, stale link), so
// the reset and verify endpoints answer 400 rather than 401.
func isSingleUseTokenError(err error) bool {
	return errors.Is(err, common.ErrTokenUnknown) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrTokenAlreadyUsed)
}

// clientMeta extracts informational request metadata for session records.
func clientMeta(r *http.Request) services.ClientMeta {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		// first hop only
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		ip = strings.TrimSpace(ip)
	} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	} else {
		ip = r.RemoteAddr
	}
	return services.ClientMeta{UserAgent: r.Header.Get("User-Agent"), IPAddress: ip}
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	s.writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decode(w, r, &req) {
		return
	}

	user, pair, err := s.auth.Login(r.Context(), req.Email, req.Password, clientMeta(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, sessionResponse{User: toUserResponse(user), Tokens: toTokensResponse(pair)})
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		s.writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toTokensResponse(pair))
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.auth.Logout(r.Context(), req.RefreshToken, req.All); err != nil {
		s.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		s.writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := s.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		s.serviceError(w, r, err)
		return
	}

	// same answer whether or not the account exists
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Token == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "token and password are required")
		return
	}

	if err := s.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		if isSingleUseTokenError(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Token == "" {
		s.writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := s.auth.VerifyEmail(r.Context(), req.Token); err != nil {
		if isSingleUseTokenError(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := s.auth.SendVerificationEmail(r.Context(), userID); err != nil {
		s.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := s.users.GetCurrentUser(r.Context(), userID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *HTTPServer) handleListPlans(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.ListPlans(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	out := make([]planResponse, 0, len(list))
	for _, p := range list {
		out = append(out, planResponse{
			Code:         p.Code,
			Name:         p.Name,
			Description:  p.Description,
			PriceCents:   p.PriceCents,
			Currency:     p.Currency,
			BillingCycle: p.BillingCycle,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) handleUpgradePlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req upgradePlanRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Plan == "" {
		s.writeError(w, http.StatusBadRequest, "plan is required")
		return
	}

	user, err := s.users.UpgradePlan(r.Context(), userID, req.Plan)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *HTTPServer) handleDowngradePlan(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := s.users.DowngradePlan(r.Context(), userID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
