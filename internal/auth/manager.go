package auth

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"

	"github.com/calmeet/calmeet/internal/classify"
	"github.com/calmeet/calmeet/internal/logging"
)

// State names one position in the token lifecycle state machine.
type State string

const (
	// StateUnauthenticated means no credential record has been loaded yet.
	StateUnauthenticated State = "unauthenticated"
	// StateTokenUnknown means credentials are loaded but the cached access
	// token has not been verified or obtained.
	StateTokenUnknown State = "token_unknown"
	// StateTokenValid means a cached access token is usable.
	StateTokenValid State = "token_valid"
	// StateTokenExpired means the cached access token passed its expiry
	// safety margin and the next call will refresh.
	StateTokenExpired State = "token_expired"
	// StateRefreshFailed means the refresh token itself was rejected.
	// Terminal: every subsequent call surfaces AuthRevoked.
	StateRefreshFailed State = "refresh_failed"
)

// RefreshRecorder receives one event per refresh network call. Implemented
// by the instrumentation metrics; nil-safe via the noop default.
type RefreshRecorder interface {
	RecordTokenRefresh(ctx context.Context, status string)
}

type noopRecorder struct{}

func (noopRecorder) RecordTokenRefresh(context.Context, string) {}

// Health is the auth portion of the server health signal.
type Health struct {
	State State `json:"authState"`
	// TokenExpiresIn is the number of seconds until the cached access
	// token expires. Negative when already expired, nil when no token is
	// cached.
	TokenExpiresIn *int64 `json:"tokenExpiresInSeconds,omitempty"`
	// LastRefreshError carries the most recent refresh failure, if any.
	LastRefreshError string `json:"lastRefreshError,omitempty"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithEndpoint overrides the OAuth token endpoint. Used by tests to point
// the refresh flow at a local server.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(m *Manager) { m.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client used for token refreshes.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) { m.httpClient = client }
}

// WithSafetyMargin sets how long before the provider-stated expiry a token
// is treated as expired.
func WithSafetyMargin(margin time.Duration) Option {
	return func(m *Manager) { m.safetyMargin = margin }
}

// WithRefreshTimeout bounds each refresh network call.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(m *Manager) { m.refreshTimeout = timeout }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithRecorder sets the refresh metric recorder.
func WithRecorder(recorder RefreshRecorder) Option {
	return func(m *Manager) { m.recorder = recorder }
}

// Manager owns the credential record for one principal and serializes
// token refreshes. All methods are safe for concurrent use.
type Manager struct {
	store          Store
	endpoint       oauth2.Endpoint
	httpClient     *http.Client
	safetyMargin   time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
	logger         *slog.Logger
	recorder       RefreshRecorder

	group singleflight.Group

	mu         sync.RWMutex
	state      State
	record     *CredentialRecord
	refreshErr *classify.Error
}

// NewManager creates a Manager backed by the given store. The credential
// record is not loaded until Init.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:          store,
		endpoint:       googleoauth.Endpoint,
		safetyMargin:   time.Minute,
		refreshTimeout: 30 * time.Second,
		now:            time.Now,
		logger:         slog.Default(),
		recorder:       noopRecorder{},
		state:          StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init loads the credential record from the store. A missing or incomplete
// record is a fatal startup condition, not a per-call error.
func (m *Manager) Init(ctx context.Context) error {
	record, err := m.store.Load(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = record
	if record.AccessToken != "" && record.AccessTokenExpiry.After(m.now().Add(m.safetyMargin)) {
		m.state = StateTokenValid
	} else {
		m.state = StateTokenUnknown
	}
	m.logger.Info("credentials loaded",
		logging.Operation("auth.init"),
		slog.String("state", string(m.state)))
	return nil
}

// Token returns a valid access token, refreshing it first when the cached
// one is absent or inside the expiry safety margin. Concurrent callers
// share a single in-flight refresh.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	switch m.state {
	case StateUnauthenticated:
		m.mu.RUnlock()
		return "", classify.AuthExpired()
	case StateRefreshFailed:
		m.mu.RUnlock()
		return "", classify.AuthRevoked()
	case StateTokenValid:
		if m.record.AccessTokenExpiry.After(m.now().Add(m.safetyMargin)) {
			token := m.record.AccessToken
			m.mu.RUnlock()
			return token, nil
		}
	}
	m.mu.RUnlock()

	m.mu.Lock()
	if m.state == StateTokenValid && !m.record.AccessTokenExpiry.After(m.now().Add(m.safetyMargin)) {
		m.state = StateTokenExpired
	}
	m.mu.Unlock()

	return m.refresh(ctx)
}

// ForceRefresh discards the cached access token and fetches a fresh one,
// unless another caller already replaced the stale token, in which case
// the replacement is returned without an extra network call. Used by the
// dispatcher's single refresh-and-retry on a provider auth error.
func (m *Manager) ForceRefresh(ctx context.Context, stale string) (string, error) {
	m.mu.Lock()
	switch m.state {
	case StateUnauthenticated:
		m.mu.Unlock()
		return "", classify.AuthExpired()
	case StateRefreshFailed:
		m.mu.Unlock()
		return "", classify.AuthRevoked()
	case StateTokenValid:
		if m.record.AccessToken != stale {
			token := m.record.AccessToken
			m.mu.Unlock()
			return token, nil
		}
		m.state = StateTokenExpired
	}
	m.mu.Unlock()

	return m.refresh(ctx)
}

// refresh performs the single-flight token refresh. A timed-out or failed
// refresh never overwrites the previously cached token; only a fully
// resolved new token pair is committed and saved back to the store.
func (m *Manager) refresh(ctx context.Context) (string, error) {
	result, err, _ := m.group.Do("refresh", func() (any, error) {
		// Re-check under the lock: a previous flight may have already
		// refreshed while this caller waited to enter.
		m.mu.RLock()
		if m.state == StateTokenValid && m.record.AccessTokenExpiry.After(m.now().Add(m.safetyMargin)) {
			token := m.record.AccessToken
			m.mu.RUnlock()
			return token, nil
		}
		if m.state == StateRefreshFailed {
			m.mu.RUnlock()
			return "", classify.AuthRevoked()
		}
		record := *m.record
		m.mu.RUnlock()

		token, err := m.retrieve(ctx, &record)
		if err != nil {
			return "", m.noteFailure(err)
		}

		m.mu.Lock()
		m.record.AccessToken = token.AccessToken
		m.record.AccessTokenExpiry = token.Expiry
		m.state = StateTokenValid
		m.refreshErr = nil
		saved := *m.record
		m.mu.Unlock()

		if err := m.store.Save(ctx, &saved); err != nil {
			// The in-memory token is still valid; persisting it is best
			// effort.
			m.logger.Warn("failed to persist refreshed token",
				logging.Operation("auth.refresh"),
				logging.Err(err))
		}

		m.recorder.RecordTokenRefresh(ctx, logging.StatusSuccess)
		m.logger.Debug("access token refreshed",
			logging.Operation("auth.refresh"),
			slog.String("token", logging.SanitizeToken(token.AccessToken)),
			slog.Time("expiry", token.Expiry))
		return token.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// retrieve performs the actual token endpoint call, bounded by the refresh
// timeout.
func (m *Manager) retrieve(ctx context.Context, record *CredentialRecord) (*oauth2.Token, error) {
	refreshCtx, cancel := context.WithTimeout(ctx, m.refreshTimeout)
	defer cancel()
	if m.httpClient != nil {
		refreshCtx = context.WithValue(refreshCtx, oauth2.HTTPClient, m.httpClient)
	}

	conf := &oauth2.Config{
		ClientID:     record.ClientID,
		ClientSecret: record.ClientSecret,
		Endpoint:     m.endpoint,
		Scopes:       Scopes,
	}
	source := conf.TokenSource(refreshCtx, &oauth2.Token{RefreshToken: record.RefreshToken})
	return source.Token()
}

// noteFailure classifies a refresh error and records the resulting state.
// A revoked refresh token is terminal; anything else leaves the cached
// token and state untouched so a later call can retry.
func (m *Manager) noteFailure(err error) *classify.Error {
	classified := classify.Classify(err)

	m.mu.Lock()
	m.refreshErr = classified
	if classified.Kind == classify.KindAuthRevoked {
		m.state = StateRefreshFailed
	}
	m.mu.Unlock()

	m.recorder.RecordTokenRefresh(context.Background(), logging.StatusError)
	m.logger.Error("token refresh failed",
		logging.Operation("auth.refresh"),
		logging.ErrorKind(string(classified.Kind)),
		logging.Err(err))
	return classified
}

// Health reports the current auth state for the health endpoint.
func (m *Manager) Health() Health {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h := Health{State: m.state}
	if m.refreshErr != nil {
		h.LastRefreshError = m.refreshErr.Error()
	}
	if m.record != nil && m.record.AccessToken != "" && !m.record.AccessTokenExpiry.IsZero() {
		seconds := int64(m.record.AccessTokenExpiry.Sub(m.now()).Seconds())
		h.TokenExpiresIn = &seconds
	}
	return h
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}
