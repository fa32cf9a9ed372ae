// Package api implements the HTTP handlers for the deck, card, and
// study-session endpoints. Handlers translate between wire DTOs and
// the domain types, map internal errors to status codes, and never
// expose raw error strings to clients.
package api
