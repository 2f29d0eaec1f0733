// Package logger provides a singleton Zap logger with context-based scoping.
//
// # Design Decisions
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context Scoping: cada intento de autenticación puede llevar su propio logger
//     con campos adicionales (request_id, provider, account_identifier).
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//
// # Usage
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Component("facebook.provider"))
//	log.Info("account created", logger.AccountIdentifier(id))
package logger
