package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - AUTENTICACIÓN
// =================================================================================

// Provider is the configured authentication provider name (not the IdP).
func Provider(v string) zap.Field { return zap.String("provider", v) }

func AccountIdentifier(v string) zap.Field { return zap.String("account_identifier", v) }

func ClientID(v string) zap.Field { return zap.String("client_id", v) }

func AppID(v string) zap.Field { return zap.String("app_id", v) }

func Resource(v string) zap.Field { return zap.String("resource", v) }

func AuthStatus(v string) zap.Field { return zap.String("auth_status", v) }

func RequiredScopes(v []string) zap.Field { return zap.Strings("required_scopes", v) }

func GrantedScopes(v []string) zap.Field { return zap.Strings("granted_scopes", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
