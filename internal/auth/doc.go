// Package auth implements the OAuth callback and session-establishment flow.
//
// # Callback Handler
//
// [CallbackHandler] reacts to the redirect back from an external identity
// provider. The redirect carries either an authorization code or a provider
// error in the location's query string; the handler consumes whichever is
// present and transitions the client into an authenticated state exactly
// once per code.
//
// # Idempotency
//
// Browser navigation can trigger the handler more than once for the same
// redirect event (duplicate mounts, effect re-fires, fast double
// navigation). Two mechanisms make the flow idempotent:
//
//   - [Guard] : a single-slot acquire-or-abort lock dropping concurrent
//     invocations while an exchange is in flight
//   - [Strip] : the code is removed from the visible location before the
//     exchange begins, so later invocations find nothing to process
//
// The guard is released on every exit path, so a failed exchange never
// wedges the handler; a fresh login produces a distinct code and the flow
// re-arms.
//
// # Failure Semantics
//
// All exchange failures are terminal for that code. The backend's
// human-readable detail is surfaced through the [Notifier] and the user
// stays on the authentication page; no retry is attempted.
package auth
