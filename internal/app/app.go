// Package app cablea config, store, cache, el provider de Facebook y el router HTTP.
package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/hellojohn-facebook/internal/cache"
	"github.com/dropDatabas3/hellojohn-facebook/internal/config"
	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
	apphttp "github.com/dropDatabas3/hellojohn-facebook/internal/http"
	authctrl "github.com/dropDatabas3/hellojohn-facebook/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/hellojohn-facebook/internal/http/controllers/health"
	mw "github.com/dropDatabas3/hellojohn-facebook/internal/http/middlewares"
	authsvc "github.com/dropDatabas3/hellojohn-facebook/internal/http/services/auth"
	"github.com/dropDatabas3/hellojohn-facebook/internal/metrics"
	"github.com/dropDatabas3/hellojohn-facebook/internal/providers"
	"github.com/dropDatabas3/hellojohn-facebook/internal/providers/facebook"
	"github.com/dropDatabas3/hellojohn-facebook/internal/security"
	"github.com/dropDatabas3/hellojohn-facebook/internal/store"
	"github.com/dropDatabas3/hellojohn-facebook/internal/validation"
)

// Options son los parámetros de arranque que no vienen del YAML.
type Options struct {
	Version string
	// Registry recibe las métricas; nil crea uno nuevo con los collectors de runtime.
	Registry *prometheus.Registry
}

// App es la aplicación cableada.
type App struct {
	Handler   http.Handler
	Store     repository.Store
	Cache     cache.Client
	Endpoint  *facebook.TokenEndpoint
	Providers *providers.Registry
}

// Build arma todas las dependencias a partir de la config actual de holder.
// Los fields de /me se leen de holder en cada request, así que un Reload los cambia en caliente.
func Build(ctx context.Context, holder *config.Holder, opts Options) (*App, error) {
	cfg := holder.Current()
	fb := cfg.Facebook

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}
	if err := mw.RegisterHTTPMetrics(reg); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	c, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	a := &App{Store: st, Cache: c}

	httpClient, err := facebook.NewHTTPClient(facebook.TransportOptions{CAFile: fb.CAFile, Timeout: fb.HTTPTimeout})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	api := facebook.NewAPIClient(fb.GraphEndpoint, fb.ClientSecret, httpClient)
	a.Endpoint = facebook.NewTokenEndpoint(api, facebook.EndpointOptions{
		ClientID:         fb.ClientID,
		ClientSecret:     fb.ClientSecret,
		TokenURL:         fb.TokenEndpoint,
		HTTPClient:       httpClient,
		AppTokenCache:    c,
		AppTokenCacheTTL: fb.AppTokenCacheTTL,
	})
	flow := facebook.NewAuthorizationFlow(api, facebook.FlowOptions{
		Fields: holder.FacebookFields,
		Rules: validation.ProfileRules{
			Required:      cfg.Profile.Required,
			MaxNameLength: cfg.Profile.MaxNameLength,
		},
	})

	prov, err := facebook.NewProvider(facebook.Options{
		Name:              fb.ProviderName,
		RequiredScopes:    fb.Scopes,
		AuthenticateRoles: fb.AuthenticateRoles,
		PartyCreation:     fb.PartyCreation,
	}, facebook.Deps{
		Validator: a.Endpoint,
		Exchanger: a.Endpoint,
		Lookup:    security.PrivilegedAccountLookup(st.Accounts()),
		Store:     st,
		Roles:     security.NewStaticPolicy(cfg.Security.Roles),
		Flow:      flow,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Providers = providers.NewRegistry()
	if err := a.Providers.Register(prov); err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Handler = apphttp.NewRouter(apphttp.RouterDeps{
		Facebook: authctrl.NewFacebookController(authsvc.NewFacebookLoginService(a.Providers)),
		Health: healthctrl.NewHealthController(opts.Version, map[string]healthctrl.Pinger{
			"store": st,
			"cache": c,
		}),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})
	return a, nil
}

// Close libera store y cache.
func (a *App) Close() error {
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
