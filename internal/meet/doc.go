// Package meet provides a stateless adapter for the Google Meet API v2.
//
// This package enables creation and configuration of Google Meet spaces
// with automatic recording, transcription, and smart note-taking, as well
// as retrieval of meeting artifacts from completed sessions.
//
// The adapter owns no credentials: every method takes a valid bearer token
// and performs exactly one logical provider operation with it (CreateSpace
// is a fixed create-then-read-back sequence). Results are normalized local
// types, never raw provider response envelopes.
//
// Key features:
//   - Create new Meet spaces with optional auto-recording, transcription
//     and note-taking
//   - Configure existing spaces and end their active conference
//   - List and retrieve conference records, recordings and transcripts
//   - Fetch a transcript's spoken segments as plain text
//
// Example usage:
//
//	client := meet.NewClient()
//	space, err := client.CreateSpace(ctx, token, meet.SpaceConfigInput{
//	    AccessType:      "TRUSTED",
//	    EnableRecording: &enabled,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
package meet
