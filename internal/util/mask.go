// Package util tiene helpers chicos para no filtrar datos sensibles en logs y salidas de la CLI.
package util

import (
	"net/url"
	"strings"
)

// MaskEmail deja la primera letra del usuario y del dominio: "ada@example.com" -> "a…@e….com".
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		return MaskSecret(s)
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	dparts := strings.Split(dom, ".")
	if len(dparts) > 0 && len(dparts[0]) > 1 {
		dparts[0] = dparts[0][:1] + "…"
	}
	return user + "@" + strings.Join(dparts, ".")
}

// MaskSecret oculta todo salvo el primer y último carácter; valores cortos quedan en "***".
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "***"
	}
	return s[:1] + "…" + s[len(s)-1:]
}

// MaskDSN oculta la password de un DSN tipo URL. Los DSN key=value se ocultan enteros.
func MaskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "***"
	}
	return u.Redacted()
}
