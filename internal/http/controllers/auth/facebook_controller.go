package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
	dto "github.com/dropDatabas3/hellojohn-facebook/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/hellojohn-facebook/internal/http/errors"
	svc "github.com/dropDatabas3/hellojohn-facebook/internal/http/services/auth"
	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-facebook/internal/providers/facebook"
	"github.com/dropDatabas3/hellojohn-facebook/internal/security"
)

const maxFacebookLoginBodySize = 16 * 1024 // 16KB

// FacebookController handles POST /v1/auth/facebook.
type FacebookController struct {
	service svc.FacebookLoginService
}

// NewFacebookController creates a new Facebook login controller.
func NewFacebookController(service svc.FacebookLoginService) *FacebookController {
	return &FacebookController{service: service}
}

// Login authenticates the Facebook access token in the request body.
func (c *FacebookController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("FacebookController.Login"))

	r.Body = http.MaxBytesReader(w, r.Body, maxFacebookLoginBodySize)
	defer r.Body.Close()

	var req dto.FacebookLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}
	req.AccessToken = strings.TrimSpace(req.AccessToken)
	if req.AccessToken == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("access_token is required"))
		return
	}

	var expiresAt time.Time
	if req.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(req.ExpiresIn) * time.Second)
	}

	result, err := c.service.Login(ctx, req.AccessToken, expiresAt)
	if err != nil {
		c.handleError(w, err, log)
		return
	}

	resp := dto.FacebookLoginResponse{
		Status:            result.Status,
		AccountIdentifier: result.AccountIdentifier,
		Provider:          result.Provider,
		Roles:             result.Roles,
		ProfileID:         result.ProfileID,
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)

	log.Info("facebook login succeeded", logger.AccountIdentifier(result.AccountIdentifier))
}

// handleError maps service errors to HTTP responses.
func (c *FacebookController) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	var (
		retrieveErr *oauth2.RetrieveError
		netErr      net.Error
	)
	switch {
	case errors.Is(err, svc.ErrWrongCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case errors.Is(err, security.ErrUnsupportedToken):
		httperrors.WriteError(w, httperrors.ErrUnsupportedToken)
	case errors.Is(err, facebook.ErrInvalidProfileData):
		httperrors.WriteError(w, httperrors.ErrInvalidProfileData.WithCause(err))
	case errors.Is(err, repository.ErrConflict):
		httperrors.WriteError(w, httperrors.ErrConflict.WithCause(err))
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		log.Warn("identity provider timeout", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrGatewayTimeout)
	case facebook.IsProtocolError(err), errors.As(err, &retrieveErr):
		log.Warn("identity provider error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrBadGateway.WithCause(err))
	default:
		log.Error("unexpected error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
