// Package api implements the HTTP client for the Chorus backend.
//
// # Client
//
// [Client] wraps a base URL and an [http.Client] with request rate limiting
// (golang.org/x/time/rate) and optional session credentials. Raw [Client.Get],
// [Client.Post], and [Client.PostForm] return a [Response] envelope; typed
// operations for the auth surface are built on top of them.
//
// # Auth Surface
//
// The backend exposes the authentication boundary consumed by this client:
//   - GET /api/auth/{provider}            : provider login URL
//   - GET /api/auth/{provider}/callback   : authorization-code exchange
//   - GET /api/auth/check-username/{name} : username availability
//   - GET /api/auth/me                    : current account
//   - POST /api/auth/login                : password login
//   - POST /api/auth/logout               : session teardown
//   - POST /api/auth/refresh              : token refresh
//
// The code exchange is only treated as successful when the response carries
// the exact sentinel message ([SuccessSentinel]); any other body shape or a
// non-2xx status is a failure.
//
// # Error Handling
//
// HTTP failures are returned as [*Error] carrying the status code and the
// backend's human-readable detail string, which callers surface directly.
package api
