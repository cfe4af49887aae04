package meet

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	meet "google.golang.org/api/meet/v2"
	"google.golang.org/api/option"
)

// Client is a stateless adapter over the Google Meet API. Every method
// takes a valid bearer token; the adapter owns no credentials, performs no
// validation and surfaces provider errors unmodified (wrapped with %w) for
// the caller to classify.
type Client struct {
	opts []option.ClientOption
}

// NewClient creates a Meet adapter. Extra options are appended to every
// service construction; tests use option.WithEndpoint to point the adapter
// at a local server.
func NewClient(opts ...option.ClientOption) *Client {
	return &Client{opts: opts}
}

func (c *Client) service(ctx context.Context, token string) (*meet.Service, error) {
	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		})),
	}, c.opts...)

	svc, err := meet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Meet service: %w", err)
	}
	return svc, nil
}

// buildArtifactConfig maps enable flags onto the provider's ON/OFF
// generation settings, leaving nil flags untouched.
func buildArtifactConfig(existing *meet.ArtifactConfig, input SpaceConfigInput) *meet.ArtifactConfig {
	config := existing
	if config == nil {
		config = &meet.ArtifactConfig{}
	}

	onOff := func(enabled bool) string {
		if enabled {
			return "ON"
		}
		return "OFF"
	}

	if input.EnableRecording != nil {
		config.RecordingConfig = &meet.RecordingConfig{
			AutoRecordingGeneration: onOff(*input.EnableRecording),
		}
	}
	if input.EnableTranscription != nil {
		config.TranscriptionConfig = &meet.TranscriptionConfig{
			AutoTranscriptionGeneration: onOff(*input.EnableTranscription),
		}
	}
	if input.EnableSmartNotes != nil {
		config.SmartNotesConfig = &meet.SmartNotesConfig{
			AutoSmartNotesGeneration: onOff(*input.EnableSmartNotes),
		}
	}
	return config
}

// CreateSpace creates a new Meet space and reads it back, so the returned
// space always carries the provider-assigned meeting URI and code. This is
// the one fixed two-call sequence in the Meet adapter.
func (c *Client) CreateSpace(ctx context.Context, token string, input SpaceConfigInput) (*Space, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	space := &meet.Space{
		Config: &meet.SpaceConfig{
			AccessType:       input.AccessType,
			EntryPointAccess: input.EntryPointAccess,
		},
	}
	if input.EnableRecording != nil || input.EnableTranscription != nil || input.EnableSmartNotes != nil {
		space.Config.ArtifactConfig = buildArtifactConfig(nil, input)
	}

	created, err := svc.Spaces.Create(space).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create space: %w", err)
	}

	readBack, err := svc.Spaces.Get(created.Name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read back created space: %w", err)
	}

	return toSpace(readBack), nil
}

// GetSpace retrieves a Meet space by resource name.
func (c *Client) GetSpace(ctx context.Context, token, name string) (*Space, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	space, err := svc.Spaces.Get(name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get space: %w", err)
	}
	return toSpace(space), nil
}

// UpdateSpaceConfig patches the configuration of an existing space. Only
// the config field is sent, scoped by an update mask.
func (c *Client) UpdateSpaceConfig(ctx context.Context, token, name string, input SpaceConfigInput) (*Space, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	existing, err := svc.Spaces.Get(name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing space: %w", err)
	}

	if existing.Config == nil {
		existing.Config = &meet.SpaceConfig{}
	}
	if input.AccessType != "" {
		existing.Config.AccessType = input.AccessType
	}
	if input.EntryPointAccess != "" {
		existing.Config.EntryPointAccess = input.EntryPointAccess
	}
	if input.EnableRecording != nil || input.EnableTranscription != nil || input.EnableSmartNotes != nil {
		existing.Config.ArtifactConfig = buildArtifactConfig(existing.Config.ArtifactConfig, input)
	}

	updated, err := svc.Spaces.Patch(name, existing).UpdateMask("config").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update space config: %w", err)
	}
	return toSpace(updated), nil
}

// EndActiveConference ends the conference currently running in a space.
// The provider returns 404 when no conference is active.
func (c *Client) EndActiveConference(ctx context.Context, token, name string) error {
	svc, err := c.service(ctx, token)
	if err != nil {
		return err
	}

	_, err = svc.Spaces.EndActiveConference(name, &meet.EndActiveConferenceRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to end active conference: %w", err)
	}
	return nil
}

// ListConferenceRecords lists conference records, optionally filtered to a
// single space.
func (c *Client) ListConferenceRecords(ctx context.Context, token, spaceName string) ([]ConferenceRecord, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	call := svc.ConferenceRecords.List()
	if spaceName != "" {
		call = call.Filter(fmt.Sprintf(`space.name = %q`, spaceName))
	}

	var records []ConferenceRecord
	err = call.Pages(ctx, func(resp *meet.ListConferenceRecordsResponse) error {
		for _, record := range resp.ConferenceRecords {
			records = append(records, toConferenceRecord(record))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list conference records: %w", err)
	}
	return records, nil
}

// GetConferenceRecord retrieves a conference record by resource name.
func (c *Client) GetConferenceRecord(ctx context.Context, token, name string) (*ConferenceRecord, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	record, err := svc.ConferenceRecords.Get(name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get conference record: %w", err)
	}

	summary := toConferenceRecord(record)
	return &summary, nil
}

// ListRecordings lists all recordings of a conference record.
func (c *Client) ListRecordings(ctx context.Context, token, conferenceRecordName string) ([]Recording, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	var recordings []Recording
	err = svc.ConferenceRecords.Recordings.List(conferenceRecordName).Pages(ctx, func(resp *meet.ListRecordingsResponse) error {
		for _, rec := range resp.Recordings {
			recordings = append(recordings, toRecording(rec))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	return recordings, nil
}

// GetRecording retrieves a specific recording by resource name.
func (c *Client) GetRecording(ctx context.Context, token, name string) (*Recording, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	rec, err := svc.ConferenceRecords.Recordings.Get(name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}

	recording := toRecording(rec)
	return &recording, nil
}

// ListTranscripts lists all transcripts of a conference record.
func (c *Client) ListTranscripts(ctx context.Context, token, conferenceRecordName string) ([]Transcript, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	var transcripts []Transcript
	err = svc.ConferenceRecords.Transcripts.List(conferenceRecordName).Pages(ctx, func(resp *meet.ListTranscriptsResponse) error {
		for _, trans := range resp.Transcripts {
			transcripts = append(transcripts, toTranscript(trans))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	return transcripts, nil
}

// GetTranscript retrieves a specific transcript by resource name.
func (c *Client) GetTranscript(ctx context.Context, token, name string) (*Transcript, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	trans, err := svc.ConferenceRecords.Transcripts.Get(name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	transcript := toTranscript(trans)
	return &transcript, nil
}

// ListTranscriptEntries retrieves all entries of a transcript in spoken
// order, following pagination.
func (c *Client) ListTranscriptEntries(ctx context.Context, token, transcriptName string) ([]TranscriptEntry, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return nil, err
	}

	var entries []TranscriptEntry
	err = svc.ConferenceRecords.Transcripts.Entries.List(transcriptName).Pages(ctx, func(resp *meet.ListTranscriptEntriesResponse) error {
		for _, entry := range resp.TranscriptEntries {
			entries = append(entries, toTranscriptEntry(entry))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list transcript entries: %w", err)
	}
	return entries, nil
}

// GetTranscriptText retrieves all entries of a transcript and joins them
// into one plain-text document, one line per spoken segment.
func (c *Client) GetTranscriptText(ctx context.Context, token, transcriptName string) (string, error) {
	entries, err := c.ListTranscriptEntries(ctx, token, transcriptName)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, entry := range entries {
		if entry.Participant != "" {
			b.WriteString(entry.Participant)
			b.WriteString(": ")
		}
		b.WriteString(entry.Text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
