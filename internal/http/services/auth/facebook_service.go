package auth

import (
	"context"
	"time"

	dto "github.com/dropDatabas3/hellojohn-facebook/internal/http/dto/auth"
	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-facebook/internal/providers"
	"github.com/dropDatabas3/hellojohn-facebook/internal/providers/facebook"
	"github.com/dropDatabas3/hellojohn-facebook/internal/security"
)

// Authenticator despacha un token al provider que lo soporta.
type Authenticator interface {
	Authenticate(ctx context.Context, t security.Token) (providers.Provider, error)
}

type facebookLoginService struct {
	auth Authenticator
}

// NewFacebookLoginService crea el servicio sobre el registry de providers.
func NewFacebookLoginService(auth Authenticator) FacebookLoginService {
	return &facebookLoginService{auth: auth}
}

func (s *facebookLoginService) Login(ctx context.Context, accessToken string, expiresAt time.Time) (*dto.FacebookLoginResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("FacebookLoginService.Login"))

	tok := facebook.NewTokenWithExpiry(accessToken, expiresAt)
	p, err := s.auth.Authenticate(ctx, tok)
	if err != nil {
		return nil, err
	}
	if !tok.IsAuthenticated() {
		log.Debug("token rejected", logger.AuthStatus(tok.Status().String()))
		return nil, ErrWrongCredentials
	}

	acc := tok.Account()
	return &dto.FacebookLoginResult{
		Status:            tok.Status().String(),
		AccountIdentifier: acc.AccountIdentifier,
		Provider:          p.Name(),
		Roles:             acc.RoleIdentifiers(),
		ProfileID:         acc.ProfileID,
	}, nil
}
