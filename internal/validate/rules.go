package validate

import (
	"fmt"
	"regexp"

	"github.com/calmeet/calmeet/internal/classify"
)

// Resource-name patterns accepted as tool input. Anything not matching is
// rejected before a provider call is attempted.
var (
	SpacePattern            = regexp.MustCompile(`^spaces/[A-Za-z0-9_-]{1,128}$`)
	ConferenceRecordPattern = regexp.MustCompile(`^conferenceRecords/[A-Za-z0-9_-]+$`)
	RecordingPattern        = regexp.MustCompile(`^conferenceRecords/[A-Za-z0-9_-]+/recordings/[A-Za-z0-9_-]+$`)
	TranscriptPattern       = regexp.MustCompile(`^conferenceRecords/[A-Za-z0-9_-]+/transcripts/[A-Za-z0-9_-]+$`)
	TranscriptEntryPattern  = regexp.MustCompile(`^conferenceRecords/[A-Za-z0-9_-]+/transcripts/[A-Za-z0-9_-]+/entries/[A-Za-z0-9_-]+$`)
)

// EndAfterStart returns a rule requiring the end field to be strictly
// after the start field. Both fields must be TypeTimestamp and present
// when the rule runs.
func EndAfterStart(startField, endField string) Rule {
	return func(args Args) *classify.Error {
		start := args.Time(startField)
		end := args.Time(endField)
		if start.IsZero() || end.IsZero() {
			return nil
		}
		if !end.After(start) {
			return classify.InvalidInputMsg(fmt.Sprintf(
				"invalid argument %q: must be strictly after %q, got %s which is not after %s",
				endField, startField, end.Format("2006-01-02T15:04:05Z07:00"), start.Format("2006-01-02T15:04:05Z07:00")))
		}
		return nil
	}
}

// ConflictsWhenEquals returns a rule rejecting a boolean flag set to true
// while an enum field holds a conflicting value. Used for feature
// combinations the provider cannot honor, such as recording on a fully
// open meeting space.
func ConflictsWhenEquals(flagField, enumField, enumValue string) Rule {
	return func(args Args) *classify.Error {
		if args.Bool(flagField) && args.String(enumField) == enumValue {
			return classify.InvalidInputMsg(fmt.Sprintf(
				"invalid argument %q: cannot be true while %q is %q, the two are mutually exclusive",
				flagField, enumField, enumValue))
		}
		return nil
	}
}

// RequiresField returns a rule requiring dependentField to be present
// whenever triggerField is present.
func RequiresField(triggerField, dependentField string) Rule {
	return func(args Args) *classify.Error {
		if args.Has(triggerField) && !args.Has(dependentField) {
			return classify.InvalidInputMsg(fmt.Sprintf(
				"invalid argument %q: required when %q is provided, got nothing",
				dependentField, triggerField))
		}
		return nil
	}
}
