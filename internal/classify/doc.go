// Package classify maps raw provider errors into a small closed set of
// error kinds with human-actionable messages.
//
// Classification is driven primarily by transport and HTTP status metadata
// (googleapi.Error codes, oauth2 token endpoint responses, network errors).
// Message-pattern matching is used only for provider business errors that
// have no dedicated status code, such as licensing-tier restrictions
// reported as generic 403 responses.
package classify
