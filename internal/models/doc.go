// Package models defines domain entities and persistence interfaces for the Chorus client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing backend data
//   - [Account] : The authenticated user's account as reported by the backend
//   - [Credentials] : Token material returned by login and refresh operations
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Session] : A login session persisted between CLI invocations
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
