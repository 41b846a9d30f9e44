// Package server provides HTTP routing, middleware, and the local login relay for the CLI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Login Relay
//
// [LoginRelay] bridges the browser and the callback flow during CLI login.
//
// When the user runs the login command, a temporary HTTP server starts on localhost,
// the browser opens at the identity provider, and the provider redirects back to the relay.
// The relay points the callback handler's navigation history at the redirect URL, runs the
// flow, and sends the result through a channel.
//
// It only processes one redirect to prevent replay attacks.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
