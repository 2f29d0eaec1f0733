package facebook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/dropDatabas3/hellojohn-facebook/internal/audit"
	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
	"github.com/dropDatabas3/hellojohn-facebook/internal/metrics"
	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-facebook/internal/security"
	"github.com/dropDatabas3/hellojohn-facebook/internal/util"
	"github.com/dropDatabas3/hellojohn-facebook/internal/validation"
)

// FlowOptions configures an AuthorizationFlow.
type FlowOptions struct {
	// Fields returns the /me fields to request. It is called on every fetch
	// so the list follows configuration reloads.
	Fields func() []string
	Rules  validation.ProfileRules
}

// AuthorizationFlow provisions a local profile from Facebook user data.
type AuthorizationFlow struct {
	api    GraphQuerier
	fields func() []string
	rules  validation.ProfileRules
	now    func() time.Time
}

// NewAuthorizationFlow creates a flow fetching user data through api.
func NewAuthorizationFlow(api GraphQuerier, opts FlowOptions) *AuthorizationFlow {
	if opts.Fields == nil {
		opts.Fields = func() []string { return []string{"first_name", "last_name", "email"} }
	}
	return &AuthorizationFlow{
		api:    api,
		fields: opts.Fields,
		rules:  opts.Rules,
		now:    time.Now,
	}
}

// UserData returns the /me object for the token's access token. A *Token keeps
// the response for the rest of its attempt; nothing is shared across attempts.
func (f *AuthorizationFlow) UserData(ctx context.Context, t security.Token) (gjson.Result, error) {
	accessToken := t.Credentials().AccessToken
	fields := strings.Join(f.fields(), ",")

	fbToken, _ := t.(*Token)
	if fbToken != nil {
		if raw, ok := fbToken.cachedUserData(fields); ok {
			return gjson.Parse(raw), nil
		}
	}

	resp, err := f.api.Query(ctx, accessToken, "/me?fields="+url.QueryEscape(fields))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("facebook: fetch user data: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, &ProtocolError{Resource: "/me", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	doc := resp.JSON()
	if !doc.IsObject() {
		return gjson.Result{}, &ProtocolError{Resource: "/me", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	if fbToken != nil {
		fbToken.storeUserData(fields, doc.Raw)
	}
	return doc, nil
}

// CreateProfileAndAttachToAccountFor builds a profile from the user data of t,
// validates it, links it to the account attached to t and persists uow.
// On ErrInvalidProfileData nothing is staged; the caller discards uow.
func (f *AuthorizationFlow) CreateProfileAndAttachToAccountFor(ctx context.Context, uow repository.UnitOfWork, t security.Token) error {
	account := t.Account()
	if account == nil {
		return errors.New("facebook: no account attached to token")
	}

	data, err := f.UserData(ctx, t)
	if err != nil {
		return err
	}

	profile := &repository.Profile{
		ID: uuid.NewString(),
		Name: repository.PersonName{
			FirstName: data.Get("first_name").String(),
			LastName:  data.Get("last_name").String(),
		},
		PrimaryElectronicAddress: -1,
		CreatedAt:                f.now().UTC(),
	}
	if email := data.Get("email").String(); email != "" {
		profile.PrimaryElectronicAddress = profile.AddElectronicAddress(repository.ElectronicAddress{
			Type:       repository.ElectronicAddressTypeEmail,
			Identifier: email,
			Approved:   true,
		})
	}

	if err := f.rules.Validate(profile); err != nil {
		audit.Notice(ctx, audit.EventProfileRejected, "facebook user data rejected by profile rules",
			logger.AccountIdentifier(account.AccountIdentifier),
			logger.String("email", util.MaskEmail(data.Get("email").String())),
			logger.Err(err),
		)
		return fmt.Errorf("%w: %w", ErrInvalidProfileData, err)
	}

	account.ProfileID = profile.ID
	uow.AddProfile(profile)
	uow.UpdateAccount(account)
	if err := uow.PersistAll(ctx); err != nil {
		account.ProfileID = ""
		return fmt.Errorf("facebook: persist profile: %w", err)
	}
	metrics.ProfilesCreated.Inc()
	return nil
}
