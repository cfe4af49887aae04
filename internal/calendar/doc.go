// Package calendar provides a stateless adapter for the Google Calendar API.
//
// This package offers functionality for managing calendar events, including
// creating, reading, updating, and deleting events, as well as checking
// availability and finding available time slots for scheduling meetings.
//
// The adapter owns no credentials: every method takes a valid bearer token
// and performs exactly one logical provider operation with it. Results are
// normalized local types, never raw provider response envelopes.
//
// Example usage:
//
//	client := calendar.NewClient()
//	events, err := client.ListEvents(ctx, token, calendar.ListEventsParams{
//	    CalendarID: "primary",
//	    TimeMin:    time.Now(),
//	    TimeMax:    time.Now().AddDate(0, 0, 7),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
package calendar
