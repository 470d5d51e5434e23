// Package console provides the browser-based store administration console.
//
// # Overview
//
// The console is a server-rendered shell with five sections:
//
//   - Dashboard: stat cards and recent confirmed actions
//   - Users: account approval and access control
//   - Products: active and deactivated catalog, create and edit forms
//   - Estimates: customer quotes, status changes, spreadsheet and PDF export
//   - Blog: markdown posts and publication state
//
// Every panel reads from the store backend through a per-session cache and
// writes through the confirmation flow described below.
//
// # Sessions
//
// Each browser gets a client session row keyed by the lot_admin_client cookie.
// The row holds the bearer credential returned by sign-in, the operator name,
// the last active section and at most one pending action. A 401 from any
// authenticated backend call clears the credential and sends the browser back
// to the login page.
//
// # Confirmation
//
// Mutating handlers never call the backend. They validate input, store a
// pending action on the session and render a dialog:
//
//  1. POST /users/{id}/reject stores the action and returns the dialog
//  2. POST /confirm/{actionID} takes the action and executes it once
//  3. POST /cancel discards it
//
// Confirmation executes on a context detached from the request, so a closed
// browser tab cannot leave a half-applied mutation out of the cache. Each
// confirmed action is written to the audit log.
//
// # Security
//
// POST forms use double-submit CSRF tokens (lot_admin_csrf cookie plus a
// csrf_token field or X-CSRF-Token header). Session cookies are HttpOnly and
// SameSite=Lax, and Secure when served over TLS.
//
// # htmx
//
// Table filtering, dialogs and dashboard cards are partial swaps. Requests with
// HX-Request get fragments and HX-Redirect instead of 303 redirects.
package console
