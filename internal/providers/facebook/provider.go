package facebook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/dropDatabas3/hellojohn-facebook/internal/audit"
	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
	"github.com/dropDatabas3/hellojohn-facebook/internal/metrics"
	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-facebook/internal/security"
)

// DefaultProviderName is the provider name stored on accounts.
const DefaultProviderName = "FacebookOAuth2Provider"

// TokenValidator validates a submitted user access token.
type TokenValidator interface {
	RequestValidatedTokenInformation(ctx context.Context, creds security.Credentials) (*TokenInformation, bool, error)
}

// TokenExchanger exchanges a short-lived access token for a long-lived one.
type TokenExchanger interface {
	RequestLongLivedToken(ctx context.Context, shortLivedAccessToken string) (*oauth2.Token, error)
}

// ProfileProvisioner creates the profile of a newly created account and commits uow.
type ProfileProvisioner interface {
	CreateProfileAndAttachToAccountFor(ctx context.Context, uow repository.UnitOfWork, t security.Token) error
}

// RoleResolver resolves configured role identifiers.
type RoleResolver interface {
	GetRole(identifier string) (repository.Role, error)
}

// UnitOfWorkFactory opens the unit of work of one attempt.
type UnitOfWorkFactory interface {
	NewUnitOfWork() repository.UnitOfWork
}

// Options are resolved once at construction.
type Options struct {
	Name              string
	RequiredScopes    []string
	AuthenticateRoles []string
	PartyCreation     bool
}

// Deps are the collaborators of a Provider.
type Deps struct {
	Validator TokenValidator
	Exchanger TokenExchanger
	// Lookup is the only read performed before an account is attached.
	Lookup security.AccountLookup
	Store  UnitOfWorkFactory
	Roles  RoleResolver
	// Flow is required when Options.PartyCreation is set.
	Flow ProfileProvisioner
}

// Provider authenticates Facebook tokens against local accounts.
type Provider struct {
	opts      Options
	validator TokenValidator
	exchanger TokenExchanger
	lookup    security.AccountLookup
	store     UnitOfWorkFactory
	roles     RoleResolver
	flow      ProfileProvisioner
	now       func() time.Time
	log       *zap.Logger
}

// NewProvider validates deps and returns a ready provider.
func NewProvider(opts Options, d Deps) (*Provider, error) {
	if opts.Name == "" {
		opts.Name = DefaultProviderName
	}
	switch {
	case d.Validator == nil:
		return nil, errors.New("facebook: token validator is required")
	case d.Exchanger == nil:
		return nil, errors.New("facebook: token exchanger is required")
	case d.Lookup == nil:
		return nil, errors.New("facebook: account lookup is required")
	case d.Store == nil:
		return nil, errors.New("facebook: store is required")
	case d.Roles == nil:
		return nil, errors.New("facebook: role resolver is required")
	case opts.PartyCreation && d.Flow == nil:
		return nil, errors.New("facebook: party creation enabled without a provisioning flow")
	}
	// Fail at startup on unknown roles rather than on the first new account.
	for _, id := range opts.AuthenticateRoles {
		if _, err := d.Roles.GetRole(id); err != nil {
			return nil, err
		}
	}
	return &Provider{
		opts:      opts,
		validator: d.Validator,
		exchanger: d.Exchanger,
		lookup:    d.Lookup,
		store:     d.Store,
		roles:     d.Roles,
		flow:      d.Flow,
		now:       time.Now,
		log:       logger.Named("facebook").With(logger.Provider(opts.Name)),
	}, nil
}

// Name returns the provider name stored on accounts.
func (p *Provider) Name() string { return p.opts.Name }

// CanAuthenticate reports whether t is a Facebook token.
func (p *Provider) CanAuthenticate(t security.Token) bool {
	_, ok := t.(*Token)
	return ok
}

// Authenticate decides the status of t and attaches the matching account.
//
// A rejected token (invalid, foreign app, missing scopes) sets
// StatusWrongCredentials and returns nil. Errors are fatal to the attempt and
// nothing is persisted when one is returned.
func (p *Provider) Authenticate(ctx context.Context, t security.Token) (err error) {
	fbToken, ok := t.(*Token)
	if !ok {
		return fmt.Errorf("%w: %T cannot be handled by %s", security.ErrUnsupportedToken, t, p.opts.Name)
	}
	defer func() {
		outcome := fbToken.Status().String()
		if err != nil {
			outcome = "ERROR"
		}
		metrics.AuthenticationAttempts.WithLabelValues(p.opts.Name, outcome).Inc()
	}()

	creds := fbToken.Credentials()
	info, valid, err := p.validator.RequestValidatedTokenInformation(ctx, creds)
	if err != nil {
		return fmt.Errorf("facebook: validate access token: %w", err)
	}
	if !valid {
		fbToken.SetStatus(security.StatusWrongCredentials)
		return nil
	}

	if missing := security.MissingScopes(p.opts.RequiredScopes, info.Scopes); len(missing) > 0 {
		audit.Notice(ctx, audit.EventScopeInsufficient, "facebook access token lacks required scopes",
			logger.AccountIdentifier(info.UserID),
			logger.RequiredScopes(p.opts.RequiredScopes),
			logger.GrantedScopes(info.Scopes),
		)
		fbToken.SetStatus(security.StatusWrongCredentials)
		return nil
	}

	fbToken.SetStatus(security.StatusAuthenticationSuccessful)

	account, err := p.lookup(ctx, info.UserID, p.opts.Name)
	if err != nil && !repository.IsNotFound(err) {
		return fmt.Errorf("facebook: lookup account: %w", err)
	}

	now := p.now().UTC()
	uow := p.store.NewUnitOfWork()
	created := false
	if account == nil {
		roles, err := p.defaultRoles()
		if err != nil {
			return err
		}
		account = &repository.Account{
			ID:                         uuid.NewString(),
			AccountIdentifier:          info.UserID,
			AuthenticationProviderName: p.opts.Name,
			Roles:                      roles,
			CreatedAt:                  now,
			UpdatedAt:                  now,
		}
		uow.AddAccount(account)
		created = true
	}
	fbToken.SetAccount(account)

	longLived, err := p.exchanger.RequestLongLivedToken(ctx, creds.AccessToken)
	if err != nil {
		uow.Discard()
		return fmt.Errorf("facebook: exchange long-lived token: %w", err)
	}
	account.CredentialsSource = longLived.AccessToken
	account.AuthenticationAttempted(true, now)
	account.UpdatedAt = now
	uow.UpdateAccount(account)

	if created && p.opts.PartyCreation {
		if err := p.flow.CreateProfileAndAttachToAccountFor(ctx, uow, fbToken); err != nil {
			uow.Discard()
			return err
		}
	} else if err := uow.PersistAll(ctx); err != nil {
		return fmt.Errorf("facebook: persist account: %w", err)
	}

	if created {
		metrics.AccountsCreated.Inc()
		audit.Notice(ctx, audit.EventAccountCreated, "account created for facebook user",
			logger.AccountIdentifier(account.AccountIdentifier),
			logger.Provider(p.opts.Name),
		)
	}
	p.log.Debug("facebook authentication succeeded",
		logger.AccountIdentifier(account.AccountIdentifier),
		logger.Bool("created", created),
	)
	return nil
}

func (p *Provider) defaultRoles() ([]repository.Role, error) {
	roles := make([]repository.Role, 0, len(p.opts.AuthenticateRoles))
	for _, id := range p.opts.AuthenticateRoles {
		r, err := p.roles.GetRole(id)
		if err != nil {
			return nil, fmt.Errorf("facebook: default role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, nil
}
