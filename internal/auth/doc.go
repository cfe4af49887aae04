// Package auth owns the OAuth token lifecycle for the authorized principal.
//
// A Manager holds one credential record (client id/secret plus refresh
// token) and exposes Token, which returns a valid access token, refreshing
// it transparently when the cached one is missing or about to expire.
// Concurrent refreshes are collapsed into a single network call because
// Google's token endpoint treats concurrent refreshes of the same token as
// a race that can invalidate one of them.
//
// Credentials come from a Store. Two loaders are provided: environment
// variables (GOOGLE_OAUTH_CLIENT_ID, GOOGLE_OAUTH_CLIENT_SECRET,
// GOOGLE_OAUTH_REFRESH_TOKEN) and a legacy credential-bundle file plus
// token cache file pair. Both feed the same credential record shape.
package auth
