// Package observability provides the structured logger shared by the
// transfer core, the S3 executor and the shells. Messages go through slog;
// errors and warnings can additionally be reported to Sentry.
package observability
