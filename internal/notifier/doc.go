// Package notifier delivers rendered result messages to chat endpoints.
//
// # Sinks
//
// A Discord-compatible webhook is the primary sink: one JSON POST with a single
// "content" field. A webhook that answers with a non-2xx status is logged and
// treated as delivered; only transport failures are errors. A Telegram chat
// can be configured in addition. Sinks are tried in order and the first error
// aborts delivery, so the caller does not record the session as posted.
//
// With no sink configured, Post logs a notice and succeeds: running without a
// webhook is a supported dry mode, not an error.
package notifier
