package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// ListEventsParams narrows an event listing.
type ListEventsParams struct {
	CalendarID string
	TimeMin    time.Time
	TimeMax    time.Time
	Query      string
	MaxResults int64
}

// EventInput represents the input for creating or updating a calendar event.
// All fields are assumed to be validated and fully defaulted.
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string

	// CreateMeetConference attaches a Google Meet conference to the event.
	CreateMeetConference bool
}

// EventSummary is the normalized form of a calendar event returned to
// callers. Field names are stable regardless of provider API version.
type EventSummary struct {
	ID          string         `json:"id"`
	Summary     string         `json:"summary"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	Creator     string         `json:"creator,omitempty"`
	Organizer   string         `json:"organizer,omitempty"`
	Status      string         `json:"status,omitempty"`
	Attendees   []AttendeeInfo `json:"attendees,omitempty"`
	HangoutLink string         `json:"hangoutLink,omitempty"`
}

// AttendeeInfo represents information about an event attendee.
type AttendeeInfo struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName,omitempty"`
	ResponseStatus string `json:"responseStatus,omitempty"` // "needsAction", "declined", "tentative", "accepted"
	Optional       bool   `json:"optional,omitempty"`
	Organizer      bool   `json:"organizer,omitempty"`
}

// CalendarInfo represents one entry of the authorized account's calendar
// list.
type CalendarInfo struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	Primary     bool   `json:"primary,omitempty"`
	AccessRole  string `json:"accessRole,omitempty"` // "owner", "writer", "reader", "freeBusyReader"
}

// FreeBusyInfo represents availability information for one calendar.
type FreeBusyInfo struct {
	Calendar string      `json:"calendar"`
	Busy     []TimeRange `json:"busy"`
	Errors   []string    `json:"errors,omitempty"`
}

// TimeRange is a half-open busy interval.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailableSlot is a candidate meeting slot where all queried calendars
// are free.
type AvailableSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// toEventSummary converts a provider event to the normalized form.
func toEventSummary(event *calendar.Event) EventSummary {
	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
		HangoutLink: event.HangoutLink,
	}

	if event.Start != nil {
		summary.Start = parseEventTime(event.Start)
	}
	if event.End != nil {
		summary.End = parseEventTime(event.End)
	}

	if event.Creator != nil {
		summary.Creator = event.Creator.Email
	}
	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}

	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: att.ResponseStatus,
			Optional:       att.Optional,
			Organizer:      att.Organizer,
		})
	}

	// Older events carry the Meet link only in conference entry points.
	if summary.HangoutLink == "" && event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				summary.HangoutLink = ep.Uri
				break
			}
		}
	}

	return summary
}

func parseEventTime(edt *calendar.EventDateTime) time.Time {
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// toCalendarInfo converts a calendar list entry to the normalized form.
func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}
