package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/hellojohn-facebook/internal/validation"
)

const (
	DefaultProviderName  = "FacebookOAuth2Provider"
	DefaultGraphEndpoint = "https://graph.facebook.com"
	DefaultTokenEndpoint = "https://graph.facebook.com/oauth/access_token"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		Driver string `yaml:"driver"` // memory | postgres
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Security struct {
		// Roles known to the policy; AuthenticateRoles must be a subset.
		Roles []string `yaml:"roles"`
	} `yaml:"security"`

	Facebook Facebook `yaml:"facebook"`

	Profile struct {
		Required      []string `yaml:"required"`
		MaxNameLength int      `yaml:"max_name_length"`
	} `yaml:"profile"`
}

// Facebook holds the provider options.
type Facebook struct {
	ProviderName  string `yaml:"provider_name"`
	ClientID      string `yaml:"client_id"`
	ClientSecret  string `yaml:"client_secret"`
	GraphEndpoint string `yaml:"graph_endpoint"`
	TokenEndpoint string `yaml:"token_endpoint"`

	// CAFile is a PEM bundle appended to the system roots. Verification is never disabled.
	CAFile      string        `yaml:"ca_file"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	Scopes            []string `yaml:"scopes"`
	AuthenticateRoles []string `yaml:"authenticate_roles"`
	PartyCreation     bool     `yaml:"party_creation"`
	Fields            []string `yaml:"fields"`

	// AppTokenCacheTTL > 0 caches the application token across requests.
	AppTokenCacheTTL time.Duration `yaml:"app_token_cache_ttl"`
}

// Load lee el YAML (si path no está vacío), aplica defaults, overrides por env y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "fbauth"
	}
	f := &c.Facebook
	if f.ProviderName == "" {
		f.ProviderName = DefaultProviderName
	}
	if f.GraphEndpoint == "" {
		f.GraphEndpoint = DefaultGraphEndpoint
	}
	if f.TokenEndpoint == "" {
		f.TokenEndpoint = DefaultTokenEndpoint
	}
	if f.HTTPTimeout == 0 {
		f.HTTPTimeout = 10 * time.Second
	}
	if f.Scopes == nil {
		f.Scopes = []string{"email"}
	}
	if len(f.Fields) == 0 {
		f.Fields = []string{"first_name", "last_name", "email"}
	}
	if c.Profile.Required == nil {
		c.Profile.Required = []string{validation.FieldFirstName, validation.FieldLastName, validation.FieldEmail}
	}
}

// applyEnvOverrides: pisa el YAML con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}

	f := &c.Facebook
	if v, ok := getEnvStr("FACEBOOK_CLIENT_ID"); ok {
		f.ClientID = v
	}
	if v, ok := getEnvStr("FACEBOOK_CLIENT_SECRET"); ok {
		f.ClientSecret = v
	}
	if v, ok := getEnvStr("FACEBOOK_CA_FILE"); ok {
		f.CAFile = v
	}
	if v, ok := getEnvCSV("FACEBOOK_SCOPES"); ok {
		f.Scopes = v
	}
	if v, ok := getEnvCSV("FACEBOOK_FIELDS"); ok && len(v) > 0 {
		f.Fields = v
	}
	if v, ok := getEnvCSV("FACEBOOK_AUTHENTICATE_ROLES"); ok {
		f.AuthenticateRoles = v
	}
	if v, ok := getEnvBool("FACEBOOK_PARTY_CREATION"); ok {
		f.PartyCreation = v
	}
	if v, ok := getEnvDur("FACEBOOK_APP_TOKEN_CACHE_TTL"); ok {
		f.AppTokenCacheTTL = v
	}
}

// Validate checks the values the provider cannot run without.
func (c *Config) Validate() error {
	var errs []error
	f := c.Facebook
	if strings.TrimSpace(f.ClientID) == "" {
		errs = append(errs, errors.New("facebook.client_id is required"))
	}
	if strings.TrimSpace(f.ClientSecret) == "" {
		errs = append(errs, errors.New("facebook.client_secret is required"))
	}
	if err := validation.ValidateScopeNames(f.Scopes); err != nil {
		errs = append(errs, fmt.Errorf("facebook.scopes: %w", err))
	}
	known := make(map[string]bool, len(c.Security.Roles))
	for _, r := range c.Security.Roles {
		known[r] = true
	}
	for _, r := range f.AuthenticateRoles {
		if !known[r] {
			errs = append(errs, fmt.Errorf("facebook.authenticate_roles: role %q is not defined in security.roles", r))
		}
	}
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported", c.Storage.Driver))
	}
	if f.AppTokenCacheTTL < 0 {
		errs = append(errs, errors.New("facebook.app_token_cache_ttl must not be negative"))
	}
	return errors.Join(errs...)
}

// Holder publishes the current configuration; Reload swaps it atomically.
type Holder struct {
	path string
	cur  atomic.Pointer[Config]
}

// NewHolder wraps an already loaded configuration.
func NewHolder(path string, c *Config) *Holder {
	h := &Holder{path: path}
	h.cur.Store(c)
	return h
}

// Current returns the active configuration.
func (h *Holder) Current() *Config { return h.cur.Load() }

// Reload re-reads the file; the active configuration is kept on error.
func (h *Holder) Reload() error {
	c, err := Load(h.path)
	if err != nil {
		return err
	}
	h.cur.Store(c)
	return nil
}

// FacebookFields returns the Graph fields requested for profile provisioning.
func (h *Holder) FacebookFields() []string {
	return append([]string(nil), h.Current().Facebook.Fields...)
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}
