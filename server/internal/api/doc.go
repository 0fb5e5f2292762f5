// Package api implements the HTTP API for the jobpulse server.
//
// New(engine, metrics) returns an http.Handler that serves:
//
//	GET /api/analytics  : ranked skills, levels, types, companies, cities, summary words
//	GET /api/health     : dataset status (rows, columns, fingerprint, load time)
//	GET /metrics        : Prometheus text exposition
//
// /api/analytics responds with JSON, or deterministic CBOR when the Accept
// header ranks application/cbor above application/json (q=0 excludes it).
// The ETag is the dataset fingerprint, suffixed with -cbor for CBOR bodies,
// and a matching If-None-Match yields 304. Responses carry Vary: Accept.
// Without a loaded dataset the API answers 503 instead of an empty report.
//
// All endpoints answer methods other than GET and HEAD with 405 and a JSON
// error body, /metrics included. Compress adds gzip encoding on top and
// suffixes the ETag of compressed bodies with -gzip. JSON types are defined
// in types.go.
package api
