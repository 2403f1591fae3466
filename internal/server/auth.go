package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fenggwsx/DocuMind/internal/auth"
	"github.com/fenggwsx/DocuMind/internal/protocol"
	"github.com/fenggwsx/DocuMind/internal/storage"
)

var (
	errUserExists         = errors.New("user already exists")
	errInvalidCredentials = errors.New("invalid credentials")
	errInvalidPayload     = errors.New("invalid auth payload")
	errMissingName        = errors.New("missing name")
)

type claimsKey struct{}

func (a *App) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req protocol.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.reportAuthError(w, errInvalidPayload)
		return
	}
	user, err := a.createUser(r.Context(), req)
	if err != nil {
		a.logger.Info("sign up failed", "email", req.Email, "err", err)
		a.reportAuthError(w, err)
		return
	}
	a.logger.Info("sign up success", "email", user.Email, "uid", user.ID)
	a.issueToken(w, http.StatusCreated, user)
}

func (a *App) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req protocol.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.reportAuthError(w, errInvalidPayload)
		return
	}
	user, err := a.authenticateUser(r.Context(), req)
	if err != nil {
		a.logger.Info("sign in failed", "email", req.Email, "err", err)
		a.reportAuthError(w, err)
		return
	}
	a.logger.Info("sign in success", "email", user.Email, "uid", user.ID)
	a.issueToken(w, http.StatusOK, user)
}

func (a *App) handleSignOut(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if err := a.revoker.Revoke(r.Context(), claims.ID, claims.TTL()); err != nil {
		a.logger.Error("revoke token", "uid", claims.UserID, "err", err)
		writeError(w, http.StatusInternalServerError, protocol.CodeInternal, "Sign out failed", "")
		return
	}
	a.logger.Info("sign out", "uid", claims.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) issueToken(w http.ResponseWriter, status int, user *storage.User) {
	token, claims, err := auth.NewToken(a.cfg.JWT, user.ID, user.Email, user.Name)
	if err != nil {
		a.logger.Error("token issue", "uid", user.ID, "err", err)
		writeError(w, http.StatusInternalServerError, protocol.CodeInternal, "Token generation failed", "")
		return
	}
	writeJSON(w, status, protocol.AuthResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Unix(),
		User:      protocol.Identity{UID: user.ID, Email: user.Email, Name: user.Name},
	})
}

func (a *App) createUser(ctx context.Context, req protocol.SignUpRequest) (*storage.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errMissingName
	}
	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(req.Password); err != nil {
		return nil, err
	}
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &storage.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hashed,
		Company:   strings.TrimSpace(req.Company),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, errUserExists
		}
		return nil, err
	}
	return user, nil
}

func (a *App) authenticateUser(ctx context.Context, req protocol.SignInRequest) (*storage.User, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, errInvalidPayload
	}
	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	user, err := a.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.Password, req.Password); err != nil {
		return nil, errInvalidCredentials
	}
	return user, nil
}

func (a *App) reportAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errUserExists):
		writeError(w, http.StatusConflict, protocol.CodeEmailExists, "Email already registered", "")
	case errors.Is(err, errInvalidCredentials):
		writeError(w, http.StatusUnauthorized, protocol.CodeInvalidCredentials, "Invalid email or password", "")
	case errors.Is(err, auth.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, protocol.CodeInvalidEmail, "Invalid email address", "")
	case errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, protocol.CodeWeakPassword, "Password too short", "")
	case errors.Is(err, errMissingName):
		writeError(w, http.StatusBadRequest, protocol.CodeInvalidRequest, "Name is required", "")
	case errors.Is(err, errInvalidPayload):
		writeError(w, http.StatusBadRequest, protocol.CodeInvalidRequest, "Invalid request", "")
	default:
		a.logger.Error("auth failure", "err", err)
		writeError(w, http.StatusInternalServerError, protocol.CodeInternal, "Authentication failed", "")
	}
}

// requireAuth verifies the bearer token and stores its claims on the request.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, protocol.CodeUnauthorized, "Unauthorized", "Missing bearer token")
			return
		}
		claims, err := auth.ParseToken(a.cfg.JWT, strings.TrimSpace(token))
		if err != nil {
			writeError(w, http.StatusUnauthorized, protocol.CodeUnauthorized, "Unauthorized", "Invalid or expired token")
			return
		}
		revoked, err := a.revoker.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			a.logger.Error("revocation lookup", "err", err)
			writeError(w, http.StatusServiceUnavailable, protocol.CodeInternal, "Authentication unavailable", "")
			return
		}
		if revoked {
			writeError(w, http.StatusUnauthorized, protocol.CodeUnauthorized, "Unauthorized", auth.ErrRevoked.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}
