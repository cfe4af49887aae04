package classify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Kind identifies one entry in the closed error taxonomy.
type Kind string

const (
	KindInvalidInput           Kind = "InvalidInput"
	KindUnknownTool            Kind = "UnknownTool"
	KindAuthExpired            Kind = "AuthExpired"
	KindAuthRevoked            Kind = "AuthRevoked"
	KindPermissionDenied       Kind = "PermissionDenied"
	KindFeatureRequiresUpgrade Kind = "FeatureRequiresUpgrade"
	KindNotFound               Kind = "NotFound"
	KindRateLimited            Kind = "RateLimited"
	KindProviderUnavailable    Kind = "ProviderUnavailable"
	KindUnknown                Kind = "Unknown"
)

// Error is a classified provider or pipeline error. It carries the taxonomy
// kind, a paraphrased human-readable message with a concrete next action,
// the provider HTTP status where one exists, and a retriability signal.
// Raw provider payloads are never echoed verbatim.
type Error struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"httpStatus,omitempty"`
	Retriable  bool   `json:"retriable"`
}

func (e *Error) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// InvalidInput builds a classified validation error naming the offending
// field, the expected constraint, and the received value.
func InvalidInput(field, constraint string, got any) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Message: fmt.Sprintf("invalid argument %q: expected %s, got %v", field, constraint, got),
	}
}

// InvalidInputMsg builds a classified validation error from a preformatted
// message. The field name must already be part of the message.
func InvalidInputMsg(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// UnknownTool builds the classified error for a tool name that is not in
// the registry.
func UnknownTool(name string) *Error {
	return &Error{
		Kind:    KindUnknownTool,
		Message: fmt.Sprintf("unknown tool %q: call tools/list for the available catalog", name),
	}
}

// AuthRevoked builds the terminal error for an invalid or revoked refresh
// token.
func AuthRevoked() *Error {
	return &Error{
		Kind:    KindAuthRevoked,
		Message: "refresh token is invalid or revoked: re-run the authorization flow to obtain a new one",
	}
}

// AuthExpired builds the error for an expired access token that could not
// be refreshed in time.
func AuthExpired() *Error {
	return &Error{
		Kind:    KindAuthExpired,
		Message: "access token expired: retry to trigger a token refresh, or re-run authorization if the problem persists",
	}
}

// upgradePatterns are the documented message fragments that identify a
// licensing/tier restriction hidden inside a generic 403 response.
//
//	pattern                  provider context
//	-----------------------  -------------------------------------------
//	"upgrade"                Meet artifact features on consumer accounts
//	"premium"                recording/transcription feature gating
//	"workspace subscription" Workspace edition requirements
//	"license"                per-user license checks
var upgradePatterns = []string{
	"upgrade",
	"premium",
	"workspace subscription",
	"license",
}

func isUpgradeMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, p := range upgradePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// FromStatus maps an HTTP status code and provider message to a classified
// error. The mapping is deterministic and independent of the calling tool.
func FromStatus(status int, msg string) *Error {
	switch {
	case status == 400:
		return &Error{
			Kind:       KindInvalidInput,
			Message:    "provider rejected the request as malformed: check the tool arguments",
			HTTPStatus: status,
		}
	case status == 401:
		return &Error{
			Kind:       KindAuthExpired,
			Message:    "provider rejected the access token: retry to trigger a token refresh",
			HTTPStatus: status,
		}
	case status == 403:
		if isUpgradeMessage(msg) {
			return &Error{
				Kind:       KindFeatureRequiresUpgrade,
				Message:    "this feature requires a higher Google Workspace service tier",
				HTTPStatus: status,
			}
		}
		return &Error{
			Kind:       KindPermissionDenied,
			Message:    "the authorized account lacks permission for this operation: check granted OAuth scopes and resource ownership",
			HTTPStatus: status,
		}
	case status == 404:
		return &Error{
			Kind:       KindNotFound,
			Message:    "the requested resource does not exist or is not visible to the authorized account",
			HTTPStatus: status,
		}
	case status == 429:
		return &Error{
			Kind:       KindRateLimited,
			Message:    "provider rate limit reached: retry after a backoff interval",
			HTTPStatus: status,
			Retriable:  true,
		}
	case status >= 500:
		return &Error{
			Kind:       KindProviderUnavailable,
			Message:    "provider reported a server-side failure: retry later",
			HTTPStatus: status,
			Retriable:  true,
		}
	default:
		return &Error{
			Kind:       KindUnknown,
			Message:    fmt.Sprintf("unexpected provider response (HTTP %d)", status),
			HTTPStatus: status,
		}
	}
}

// Classify maps a raw error from the token endpoint or a provider call to
// a classified Error. Already-classified errors pass through unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return classifyRetrieve(retrieveErr)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return FromStatus(apiErr.Code, apiErr.Message)
	}

	if isNetworkError(err) {
		return &Error{
			Kind:      KindProviderUnavailable,
			Message:   "could not reach the provider (network failure or timeout): retry later",
			Retriable: true,
		}
	}

	return &Error{
		Kind:    KindUnknown,
		Message: "unexpected failure: " + err.Error(),
	}
}

// classifyRetrieve maps OAuth token endpoint failures. An invalid_grant
// response means the refresh token itself is dead, which is terminal.
func classifyRetrieve(err *oauth2.RetrieveError) *Error {
	if err.ErrorCode == "invalid_grant" || strings.Contains(strings.ToLower(err.Error()), "invalid_grant") {
		return AuthRevoked()
	}
	if err.Response != nil && err.Response.StatusCode >= 500 {
		return &Error{
			Kind:       KindProviderUnavailable,
			Message:    "token endpoint reported a server-side failure: retry later",
			HTTPStatus: err.Response.StatusCode,
			Retriable:  true,
		}
	}
	return AuthExpired()
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
