package tools

import (
	"context"
	"time"

	"github.com/calmeet/calmeet/internal/calendar"
	"github.com/calmeet/calmeet/internal/dispatch"
	"github.com/calmeet/calmeet/internal/validate"
)

const defaultCalendarID = "primary"

func calendarDescriptors(client *calendar.Client) []*dispatch.Descriptor {
	return []*dispatch.Descriptor{
		{
			Name:        "calendar_v3_list_events",
			Description: "List calendar events in a time window, newest first by start time",
			Category:    "calendar",
			Operation:   "list",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					{Name: "calendar_id", Description: "Calendar identifier (default: 'primary')", Type: validate.TypeString, Default: defaultCalendarID},
					{Name: "time_min", Description: "Lower bound (RFC 3339) for an event's start time", Type: validate.TypeTimestamp},
					{Name: "time_max", Description: "Upper bound (RFC 3339) for an event's start time", Type: validate.TypeTimestamp},
					{Name: "query", Description: "Free-text search over event fields", Type: validate.TypeString},
					{Name: "max_results", Description: "Maximum number of events to return (1-2500)", Type: validate.TypeInt, Min: intPtr(1), Max: intPtr(2500)},
				},
				Rules: []validate.Rule{validate.EndAfterStart("time_min", "time_max")},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.ListEvents(ctx, token, calendar.ListEventsParams{
					CalendarID: args.String("calendar_id"),
					TimeMin:    args.Time("time_min"),
					TimeMax:    args.Time("time_max"),
					Query:      args.String("query"),
					MaxResults: args.Int("max_results"),
				})
			},
		},
		{
			Name:        "calendar_v3_get_event",
			Description: "Get a single calendar event by ID",
			Category:    "calendar",
			Operation:   "get",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					{Name: "calendar_id", Description: "Calendar identifier (default: 'primary')", Type: validate.TypeString, Default: defaultCalendarID},
					{Name: "event_id", Description: "Event identifier", Type: validate.TypeString, Required: true},
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.GetEvent(ctx, token, args.String("calendar_id"), args.String("event_id"))
			},
		},
		{
			Name:        "calendar_v3_create_event",
			Description: "Create a calendar event, optionally with an attached Google Meet conference",
			Category:    "calendar",
			Operation:   "create",
			Schema: &validate.Schema{
				Fields: []validate.Field{
					{Name: "calendar_id", Description: "Calendar identifier (default: 'primary')", Type: validate.TypeString, Default: defaultCalendarID},
					{Name: "summary", Description: "Event title", Type: validate.TypeString, Required: true},
					{Name: "description", Description: "Event description", Type: validate.TypeString},
					{Name: "location", Description: "Event location", Type: validate.TypeString},
					{Name: "start_time", Description: "Event start (RFC 3339 with explicit offset or Z)", Type: validate.TypeTimestamp, Required: true},
					{Name: "end_time", Description: "Event end (RFC 3339), strictly after start_time", Type: validate.TypeTimestamp, Required: true},
					{Name: "time_zone", Description: "IANA time zone for the event (default: UTC)", Type: validate.TypeString},
					{Name: "attendees", Description: "Attendee email addresses", Type: validate.TypeStringList},
					{Name: "create_meet_conference", Description: "Attach a Google Meet conference to the event", Type: validate.TypeBool, Default: false},
				},
				Rules: []validate.Rule{validate.EndAfterStart("start_time", "end_time")},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.CreateEvent(ctx, token, args.String("calendar_id"), eventInputFromArgs(args))
			},
		},
		{
			Name:        "calendar_v3_update_event",
			Description: "Update fields of an existing calendar event; omitted fields are left unchanged",
			Category:    "calendar",
			Operation:   "update",
			Schema: &validate.Schema{
				Fields: []validate.Field{
					{Name: "calendar_id", Description: "Calendar identifier (default: 'primary')", Type: validate.TypeString, Default: defaultCalendarID},
					{Name: "event_id", Description: "Event identifier", Type: validate.TypeString, Required: true},
					{Name: "summary", Description: "New event title", Type: validate.TypeString},
					{Name: "description", Description: "New event description", Type: validate.TypeString},
					{Name: "location", Description: "New event location", Type: validate.TypeString},
					{Name: "start_time", Description: "New event start (RFC 3339); requires end_time", Type: validate.TypeTimestamp},
					{Name: "end_time", Description: "New event end (RFC 3339), strictly after start_time", Type: validate.TypeTimestamp},
					{Name: "time_zone", Description: "IANA time zone for the new times (default: UTC)", Type: validate.TypeString},
					{Name: "attendees", Description: "Replacement attendee email addresses", Type: validate.TypeStringList},
				},
				Rules: []validate.Rule{
					validate.RequiresField("start_time", "end_time"),
					validate.RequiresField("end_time", "start_time"),
					validate.EndAfterStart("start_time", "end_time"),
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.UpdateEvent(ctx, token, args.String("calendar_id"), args.String("event_id"), eventInputFromArgs(args))
			},
		},
		{
			Name:        "calendar_v3_delete_event",
			Description: "Delete a calendar event",
			Category:    "calendar",
			Operation:   "delete",
			Schema: &validate.Schema{
				Fields: []validate.Field{
					{Name: "calendar_id", Description: "Calendar identifier (default: 'primary')", Type: validate.TypeString, Default: defaultCalendarID},
					{Name: "event_id", Description: "Event identifier", Type: validate.TypeString, Required: true},
				},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				if err := client.DeleteEvent(ctx, token, args.String("calendar_id"), args.String("event_id")); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": true, "eventId": args.String("event_id")}, nil
			},
		},
		{
			Name:        "calendar_v3_list_calendars",
			Description: "List all calendars visible to the authorized account",
			Category:    "calendar",
			Operation:   "list",
			ReadOnly:    true,
			Schema:      &validate.Schema{},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.ListCalendars(ctx, token)
			},
		},
		{
			Name:        "calendar_v3_query_free_busy",
			Description: "Query busy intervals for a set of calendars in a time window",
			Category:    "calendar",
			Operation:   "query",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					{Name: "time_min", Description: "Window start (RFC 3339)", Type: validate.TypeTimestamp, Required: true},
					{Name: "time_max", Description: "Window end (RFC 3339), strictly after time_min", Type: validate.TypeTimestamp, Required: true},
					{Name: "calendar_ids", Description: "Calendar identifiers to query", Type: validate.TypeStringList, Required: true},
				},
				Rules: []validate.Rule{validate.EndAfterStart("time_min", "time_max")},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				return client.QueryFreeBusy(ctx, token, args.Time("time_min"), args.Time("time_max"), args.Strings("calendar_ids"))
			},
		},
		{
			Name:        "calendar_v3_find_availability",
			Description: "Find open meeting slots of a given duration where all attendees are free",
			Category:    "calendar",
			Operation:   "query",
			ReadOnly:    true,
			Schema: &validate.Schema{
				Fields: []validate.Field{
					{Name: "attendees", Description: "Attendee email addresses whose calendars must be free", Type: validate.TypeStringList, Required: true},
					{Name: "duration_minutes", Description: "Required slot length in minutes (1-1440)", Type: validate.TypeInt, Required: true, Min: intPtr(1), Max: intPtr(1440)},
					{Name: "time_min", Description: "Search window start (RFC 3339)", Type: validate.TypeTimestamp, Required: true},
					{Name: "time_max", Description: "Search window end (RFC 3339), strictly after time_min", Type: validate.TypeTimestamp, Required: true},
				},
				Rules: []validate.Rule{validate.EndAfterStart("time_min", "time_max")},
			},
			Handler: func(ctx context.Context, token string, args validate.Args) (any, error) {
				duration := time.Duration(args.Int("duration_minutes")) * time.Minute
				return client.FindAvailableSlots(ctx, token, args.Strings("attendees"), duration, args.Time("time_min"), args.Time("time_max"))
			},
		},
	}
}

// eventInputFromArgs maps validated event arguments to the adapter input.
// Absent optionals stay zero so the adapter leaves them untouched on
// updates.
func eventInputFromArgs(args validate.Args) calendar.EventInput {
	return calendar.EventInput{
		Summary:              args.String("summary"),
		Description:          args.String("description"),
		Location:             args.String("location"),
		Start:                args.Time("start_time"),
		End:                  args.Time("end_time"),
		TimeZone:             args.String("time_zone"),
		Attendees:            args.Strings("attendees"),
		CreateMeetConference: args.Bool("create_meet_conference"),
	}
}
