// Package logger provides a slog.Logger constructor and typed attribute
// helpers used across the module.
//
// New builds a logger writing to stderr, text by default, JSON in production:
//
//	log := logger.New(logger.WithJSON(), logger.WithLevel(slog.LevelInfo))
//
// Development mode enables debug level and tags records with the app name:
//
//	log := logger.New(logger.WithDevelopment("manga-tracker"))
//
// Attribute helpers keep field names consistent and tolerate zero values:
//
//	log.Warn("token reuse detected",
//		logger.Component("authguard"),
//		logger.UserID(rec.ID),
//		logger.Error(err), // empty attr when err == nil
//	)
package logger
