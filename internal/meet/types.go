package meet

import (
	"time"

	meet "google.golang.org/api/meet/v2"
)

// ConferenceRecord is the normalized form of a provider conference record.
type ConferenceRecord struct {
	// Name is the resource name, format: conferenceRecords/{conferenceRecord}
	Name string `json:"name"`

	// Space is the resource name of the space the conference took place in.
	Space string `json:"space,omitempty"`

	StartTime time.Time `json:"startTime,omitempty"`
	EndTime   time.Time `json:"endTime,omitempty"`

	// ExpireTime is when the record and its artifacts are purged.
	ExpireTime time.Time `json:"expireTime,omitempty"`
}

// Recording represents a Google Meet recording artifact.
type Recording struct {
	// Name format: conferenceRecords/{conferenceRecord}/recordings/{recording}
	Name string `json:"name"`

	// State is the artifact state (e.g. "FILE_GENERATED").
	State string `json:"state,omitempty"`

	StartTime time.Time `json:"startTime,omitempty"`
	EndTime   time.Time `json:"endTime,omitempty"`

	// DriveDestination points at the generated Drive file.
	DriveDestination *DriveDestination `json:"driveDestination,omitempty"`
}

// DriveDestination locates a generated artifact in Google Drive.
type DriveDestination struct {
	File      string `json:"file,omitempty"`
	ExportURI string `json:"exportUri,omitempty"`
}

// Transcript represents a Google Meet transcript artifact.
type Transcript struct {
	// Name format: conferenceRecords/{conferenceRecord}/transcripts/{transcript}
	Name string `json:"name"`

	State string `json:"state,omitempty"`

	StartTime time.Time `json:"startTime,omitempty"`
	EndTime   time.Time `json:"endTime,omitempty"`

	// Document is the resource name of the generated Docs file.
	Document string `json:"document,omitempty"`
}

// TranscriptEntry is one spoken segment of a transcript.
type TranscriptEntry struct {
	// Name format: conferenceRecords/{c}/transcripts/{t}/entries/{entry}
	Name string `json:"name"`

	// Participant is the resource name of the speaker.
	Participant string `json:"participant,omitempty"`

	Text string `json:"text,omitempty"`

	// Language is a BCP 47 code, e.g. "en-US".
	Language string `json:"language,omitempty"`

	StartTime time.Time `json:"startTime,omitempty"`
	EndTime   time.Time `json:"endTime,omitempty"`
}

// Space represents a Google Meet space.
type Space struct {
	// Name format: spaces/{space}
	Name string `json:"name"`

	MeetingURI  string `json:"meetingUri,omitempty"`
	MeetingCode string `json:"meetingCode,omitempty"`

	Config *SpaceConfig `json:"config,omitempty"`

	// ActiveConference is the resource name of the conference currently
	// running in this space, empty when idle.
	ActiveConference string `json:"activeConference,omitempty"`
}

// SpaceConfig is the normalized space configuration.
type SpaceConfig struct {
	// AccessType defines who can join without knocking:
	// "OPEN", "TRUSTED" or "RESTRICTED".
	AccessType string `json:"accessType,omitempty"`

	// EntryPointAccess: "ALL" or "CREATOR_APP_ONLY".
	EntryPointAccess string `json:"entryPointAccess,omitempty"`

	// Recording, Transcription and SmartNotes report whether the artifact
	// is generated automatically for conferences in this space.
	Recording     bool `json:"recording"`
	Transcription bool `json:"transcription"`
	SmartNotes    bool `json:"smartNotes"`
}

// SpaceConfigInput carries validated configuration for creating or
// updating a space. Nil booleans mean "leave unchanged" on update.
type SpaceConfigInput struct {
	AccessType          string
	EntryPointAccess    string
	EnableRecording     *bool
	EnableTranscription *bool
	EnableSmartNotes    *bool
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// toSpace converts a provider space to the normalized form.
func toSpace(s *meet.Space) *Space {
	space := &Space{
		Name:        s.Name,
		MeetingURI:  s.MeetingUri,
		MeetingCode: s.MeetingCode,
	}

	if s.ActiveConference != nil {
		space.ActiveConference = s.ActiveConference.ConferenceRecord
	}

	if s.Config != nil {
		config := &SpaceConfig{
			AccessType:       s.Config.AccessType,
			EntryPointAccess: s.Config.EntryPointAccess,
		}
		if ac := s.Config.ArtifactConfig; ac != nil {
			if ac.RecordingConfig != nil {
				config.Recording = ac.RecordingConfig.AutoRecordingGeneration == "ON"
			}
			if ac.TranscriptionConfig != nil {
				config.Transcription = ac.TranscriptionConfig.AutoTranscriptionGeneration == "ON"
			}
			if ac.SmartNotesConfig != nil {
				config.SmartNotes = ac.SmartNotesConfig.AutoSmartNotesGeneration == "ON"
			}
		}
		space.Config = config
	}

	return space
}

// toConferenceRecord converts a provider record to the normalized form.
func toConferenceRecord(r *meet.ConferenceRecord) ConferenceRecord {
	return ConferenceRecord{
		Name:       r.Name,
		Space:      r.Space,
		StartTime:  parseTime(r.StartTime),
		EndTime:    parseTime(r.EndTime),
		ExpireTime: parseTime(r.ExpireTime),
	}
}

// toRecording converts a provider recording to the normalized form.
func toRecording(r *meet.Recording) Recording {
	recording := Recording{
		Name:      r.Name,
		State:     r.State,
		StartTime: parseTime(r.StartTime),
		EndTime:   parseTime(r.EndTime),
	}
	if r.DriveDestination != nil {
		recording.DriveDestination = &DriveDestination{
			File:      r.DriveDestination.File,
			ExportURI: r.DriveDestination.ExportUri,
		}
	}
	return recording
}

// toTranscript converts a provider transcript to the normalized form.
func toTranscript(t *meet.Transcript) Transcript {
	transcript := Transcript{
		Name:      t.Name,
		State:     t.State,
		StartTime: parseTime(t.StartTime),
		EndTime:   parseTime(t.EndTime),
	}
	if t.DocsDestination != nil {
		transcript.Document = t.DocsDestination.Document
	}
	return transcript
}

// toTranscriptEntry converts a provider transcript entry.
func toTranscriptEntry(e *meet.TranscriptEntry) TranscriptEntry {
	return TranscriptEntry{
		Name:        e.Name,
		Participant: e.Participant,
		Text:        e.Text,
		Language:    e.LanguageCode,
		StartTime:   parseTime(e.StartTime),
		EndTime:     parseTime(e.EndTime),
	}
}
