package tools

import (
	"context"

	"github.com/calmeet/calmeet/internal/dispatch"
	"github.com/calmeet/calmeet/internal/meet"
	"github.com/calmeet/calmeet/internal/validate"
)

var accessTypes = []string{"OPEN", "TRUSTED", "RESTRICTED"}

func meetDescriptors(client *meet.Client) []*dispatch.Descriptor {
	return []*dispatch.Descriptor{
		{
			Name:        "meet_v2_create_space",
			Description: "Create a Google Meet space with optional access type and auto-artifact configuration",
			Category:    "meet",
			Operation:   "create",
			Schema: &validate.Schema{
				Fields: []validate.Field{
					{Name: "access_type", Description: "Who can join without knocking: OPEN, TRUSTED, or RESTRICTED", Type: validate.TypeEnum, Enum: accessTypes},
					{Name: "enable_recording", Description: "Automatically record every conference in the space", Type: validate.TypeBool},
					{Name: "enable_transcription", Description: "Automatically transcribe every conference in the space", Type: validate.TypeBool},
					{Name: "enable_smart_notes", Description: "Automatically generate meeting notes (requires Gemini add-on)", Type: validate.TypeBool},
				},
				Rules: []validate.Rule{
					validate.ConflictsWhenEquals("enable_recording", "access_type", "OPEN"),
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.CreateSpace(ctx, token, spaceConfigFromArgs(args))
			},
		},
		{
			Name:        "meet_v2_get_space",
			Description: "Get a Google Meet space including its configuration and active conference",
			Category:    "meet",
			Operation:   "get",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					spaceNameField(),
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.GetSpace(ctx, token, args.String("space_name"))
			},
		},
		{
			Name:        "meet_v2_update_space_config",
			Description: "Update a Google Meet space's access type and auto-artifact configuration",
			Category:    "meet",
			Operation:   "update",
			Schema: &validate.Schema{
				Fields: []validate.Field{
					spaceNameField(),
					{Name: "access_type", Description: "Who can join without knocking: OPEN, TRUSTED, or RESTRICTED", Type: validate.TypeEnum, Enum: accessTypes},
					{Name: "enable_recording", Description: "Automatically record every conference in the space", Type: validate.TypeBool},
					{Name: "enable_transcription", Description: "Automatically transcribe every conference in the space", Type: validate.TypeBool},
					{Name: "enable_smart_notes", Description: "Automatically generate meeting notes (requires Gemini add-on)", Type: validate.TypeBool},
				},
				Rules: []validate.Rule{
					validate.ConflictsWhenEquals("enable_recording", "access_type", "OPEN"),
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.UpdateSpaceConfig(ctx, token, args.String("space_name"), spaceConfigFromArgs(args))
			},
		},
		{
			Name:        "meet_v2_end_active_conference",
			Description: "End the active conference of a Google Meet space, if one is running",
			Category:    "meet",
			Operation:   "end",
			Schema: &validate.Schema{
				Fields: []validate.Field{
					spaceNameField(),
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				if err := client.EndActiveConference(ctx, token, args.String("space_name")); err != nil {
					return nil, err
				}
				return map[string]any{"ended": true, "space": args.String("space_name")}, nil
			},
		},
		{
			Name:        "meet_v2_list_conference_records",
			Description: "List past conference records, optionally filtered to one space",
			Category:    "meet",
			Operation:   "list",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					{Name: "space_name", Description: "Restrict records to this space (e.g. 'spaces/SPACE_ID')", Type: validate.TypeResource, Pattern: validate.SpacePattern, PatternName: "spaces/{id}"},
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.ListConferenceRecords(ctx, token, args.String("space_name"))
			},
		},
		{
			Name:        "meet_v2_get_conference_record",
			Description: "Get one conference record by resource name",
			Category:    "meet",
			Operation:   "get",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					conferenceRecordField(),
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.GetConferenceRecord(ctx, token, args.String("conference_record"))
			},
		},
		{
			Name:        "meet_v2_list_recordings",
			Description: "List the recordings of a conference record",
			Category:    "meet",
			Operation:   "list",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					conferenceRecordField(),
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.ListRecordings(ctx, token, args.String("conference_record"))
			},
		},
		{
			Name:        "meet_v2_get_recording",
			Description: "Get one recording by resource name, including its Drive export link",
			Category:    "meet",
			Operation:   "get",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					{Name: "recording_name", Description: "Recording resource name (e.g. 'conferenceRecords/CONF_ID/recordings/REC_ID')", Type: validate.TypeResource, Required: true, Pattern: validate.RecordingPattern, PatternName: "conferenceRecords/{id}/recordings/{id}"},
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.GetRecording(ctx, token, args.String("recording_name"))
			},
		},
		{
			Name:        "meet_v2_list_transcripts",
			Description: "List the transcripts of a conference record",
			Category:    "meet",
			Operation:   "list",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					conferenceRecordField(),
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.ListTranscripts(ctx, token, args.String("conference_record"))
			},
		},
		{
			Name:        "meet_v2_get_transcript",
			Description: "Get one transcript by resource name, including its Docs destination",
			Category:    "meet",
			Operation:   "get",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					transcriptNameField(),
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.GetTranscript(ctx, token, args.String("transcript_name"))
			},
		},
		{
			Name:        "meet_v2_list_transcript_entries",
			Description: "List the structured entries of a transcript (speaker, text, timing)",
			Category:    "meet",
			Operation:   "list",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					transcriptNameField(),
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.ListTranscriptEntries(ctx, token, args.String("transcript_name"))
			},
		},
		{
			Name:        "meet_v2_get_transcript_text",
			Description: "Render a transcript as speaker-attributed plain text",
			Category:    "meet",
			Operation:   "get",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					transcriptNameField(),
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				text, err := client.GetTranscriptText(ctx, token, args.String("transcript_name"))
				if err != nil {
					return nil, err
				}
				return map[string]any{"text": text}, nil
			},
		},
	}
}

func spaceNameField() validate.Field {
	return validate.Field{
		Name:        "space_name",
		Description: "Space resource name (e.g. 'spaces/SPACE_ID'); meeting codes like 'abc-defg-hij' are not accepted",
		Type:        validate.TypeResource,
		Required:    true,
		Pattern:     validate.SpacePattern,
		PatternName: "spaces/{id}",
	}
}

func conferenceRecordField() validate.Field {
	return validate.Field{
		Name:        "conference_record",
		Description: "Conference record resource name (e.g. 'conferenceRecords/CONF_ID')",
		Type:        validate.TypeResource,
		Required:    true,
		Pattern:     validate.ConferenceRecordPattern,
		PatternName: "conferenceRecords/{id}",
	}
}

func transcriptNameField() validate.Field {
	return validate.Field{
		Name:        "transcript_name",
		Description: "Transcript resource name (e.g. 'conferenceRecords/CONF_ID/transcripts/TRANS_ID')",
		Type:        validate.TypeResource,
		Required:    true,
		Pattern:     validate.TranscriptPattern,
		PatternName: "conferenceRecords/{id}/transcripts/{id}",
	}
}

// spaceConfigFromArgs maps validated space arguments to the adapter input.
// Boolean flags translate to pointers so an absent flag leaves the
// provider-side setting untouched.
func spaceConfigFromArgs(args validate.Args) meet.SpaceConfigInput {
	input := meet.SpaceConfigInput{
		AccessType: args.String("access_type"),
	}
	if args.Has("enable_recording") {
		v := args.Bool("enable_recording")
		input.EnableRecording = &v
	}
	if args.Has("enable_transcription") {
		v := args.Bool("enable_transcription")
		input.EnableTranscription = &v
	}
	if args.Has("enable_smart_notes") {
		v := args.Bool("enable_smart_notes")
		input.EnableSmartNotes = &v
	}
	return input
}
