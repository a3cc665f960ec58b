// Package logger provides a structured logging interface for the scraper service.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - File output
// - Context support for request tracing
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "liscraper/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File: "/var/log/liscraper.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Service started")
//	logger.WithField("profile_id", "acme-corp").Info("Scrape requested")
//	logger.WithError(err).Error("Failed to persist profile")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "session").
//	    WithField("auth_state", "authenticated")
//
//	// Use structured logging
//	log.InfoWithFields("Scrape completed", map[string]interface{}{
//	    "posts":    18,
//	    "people":   12,
//	    "duration": time.Second * 40,
//	})
package logger
