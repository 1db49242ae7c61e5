// Package web serves the battery configuration form.
//
// Routes:
//
//	GET  /             render the form of the caller's session
//	POST /             native form post, replayed as events then submitted
//	GET  /api/state    current snapshot as JSON
//	POST /api/events   apply one event, respond with the snapshot
//	GET  /healthz      liveness probe
//
// Each browser session owns one form controller, identified by a cookie.
package web
