// Package audit writes security events for recoverable authentication outcomes
// (rejected tokens, scope mismatches). Events go to the "security" zap logger
// and carry severity=notice so they can be routed separately from operational logs.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
)

const (
	EventTokenRejected     = "token_rejected"
	EventScopeInsufficient = "scope_insufficient"
	EventAccountCreated    = "account_created"
	EventProfileRejected   = "profile_rejected"
)

// Notice logs an audit event at notice severity.
func Notice(ctx context.Context, event, msg string, fields ...zap.Field) {
	l := logger.From(ctx).Named("security")
	fields = append(fields, zap.String("event", event), zap.String("severity", "notice"))
	l.Info(msg, fields...)
}
