// Package config loads the jobpulse service configuration from config.yaml.
//
// Config fields:
//   - Server.HTTPPort        : port for the analytics API (default 5000)
//   - Server.Compress        : gzip responses for clients that accept it (default true)
//   - Server.ShutdownTimeout : grace period for in-flight requests (default 10s)
//   - Dataset.Path           : CSV file with job postings (default postings.csv)
//   - Dataset.Watch          : reload the dataset when the file changes
//   - Log.Level, Log.Format  : slog level (info) and handler (json)
//
// Load(path) applies defaults before unmarshalling, then validates.
package config
