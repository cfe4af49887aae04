package classify

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestFromStatus_Deterministic(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		msg       string
		wantKind  Kind
		retriable bool
	}{
		{"bad request", 400, "parse error", KindInvalidInput, false},
		{"unauthorized", 401, "invalid credentials", KindAuthExpired, false},
		{"forbidden", 403, "insufficient permissions", KindPermissionDenied, false},
		{"forbidden upgrade", 403, "This feature requires a Premium plan, please upgrade", KindFeatureRequiresUpgrade, false},
		{"forbidden license", 403, "user does not hold a required license", KindFeatureRequiresUpgrade, false},
		{"not found", 404, "no such event", KindNotFound, false},
		{"rate limited", 429, "quota exceeded", KindRateLimited, true},
		{"server error", 500, "backend error", KindProviderUnavailable, true},
		{"bad gateway", 502, "", KindProviderUnavailable, true},
		{"unmapped", 418, "", KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromStatus(tt.status, tt.msg)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.retriable, got.Retriable)
			assert.Equal(t, tt.status, got.HTTPStatus)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestFromStatus_SameInputSameKind(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, KindRateLimited, FromStatus(429, "").Kind)
	}
}

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassify_PassthroughClassified(t *testing.T) {
	orig := UnknownTool("calendar_v3_noop")
	got := Classify(orig)
	assert.Same(t, orig, got)
}

func TestClassify_WrappedClassified(t *testing.T) {
	orig := InvalidInput("end_time", "RFC 3339 timestamp", "tomorrow")
	wrapped := errors.Join(errors.New("dispatch failed"), orig)
	got := Classify(wrapped)
	assert.Equal(t, KindInvalidInput, got.Kind)
	assert.Contains(t, got.Message, "end_time")
}

func TestClassify_GoogleAPIError(t *testing.T) {
	err := &googleapi.Error{Code: 404, Message: "Event not found"}
	got := Classify(err)
	assert.Equal(t, KindNotFound, got.Kind)
	assert.Equal(t, 404, got.HTTPStatus)
	// Raw provider message is paraphrased, never echoed.
	assert.NotContains(t, got.Message, "Event not found")
}

func TestClassify_RetrieveError_InvalidGrant(t *testing.T) {
	err := &oauth2.RetrieveError{
		Response:  &http.Response{StatusCode: 400},
		ErrorCode: "invalid_grant",
	}
	got := Classify(err)
	assert.Equal(t, KindAuthRevoked, got.Kind)
	assert.Contains(t, got.Message, "authorization")
}

func TestClassify_RetrieveError_ServerError(t *testing.T) {
	err := &oauth2.RetrieveError{Response: &http.Response{StatusCode: 503}}
	got := Classify(err)
	assert.Equal(t, KindProviderUnavailable, got.Kind)
	assert.True(t, got.Retriable)
}

func TestClassify_RetrieveError_Other(t *testing.T) {
	err := &oauth2.RetrieveError{
		Response:  &http.Response{StatusCode: 400},
		ErrorCode: "invalid_request",
	}
	got := Classify(err)
	assert.Equal(t, KindAuthExpired, got.Kind)
}

func TestClassify_NetworkErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"deadline", context.DeadlineExceeded},
		{"dns", &net.DNSError{Err: "no such host", Name: "calendar.googleapis.com"}},
		{"url", &url.Error{Op: "Get", URL: "https://meet.googleapis.com", Err: errors.New("connection refused")}},
		{"op", &net.OpError{Op: "dial", Err: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, KindProviderUnavailable, got.Kind)
			assert.True(t, got.Retriable)
		})
	}
}

func TestClassify_Unknown(t *testing.T) {
	got := Classify(errors.New("something odd"))
	assert.Equal(t, KindUnknown, got.Kind)
	assert.False(t, got.Retriable)
}

func TestError_Error(t *testing.T) {
	withStatus := FromStatus(429, "")
	assert.Contains(t, withStatus.Error(), "429")
	assert.Contains(t, withStatus.Error(), "RateLimited")

	withoutStatus := UnknownTool("x")
	assert.Contains(t, withoutStatus.Error(), "UnknownTool")
}
