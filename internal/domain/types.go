// Package domain provides the canonical types shared across the content
// pipeline: the topic request, per-stage results, and the progressively
// revealed pipeline result.
package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Audience is the target audience for generated content.
type Audience string

const (
	AudiencePrimarySchool Audience = "Primary school kids"
	AudienceHighSchool    Audience = "High school kids"
	AudienceAdult         Audience = "Adults"
)

// Audiences returns all supported audiences.
func Audiences() []Audience {
	return []Audience{AudiencePrimarySchool, AudienceHighSchool, AudienceAdult}
}

// Country is the country the audience lives in.
type Country string

const (
	CountryFrance Country = "France"
	CountryUSA    Country = "USA"
	CountryUK     Country = "United Kingdom"
)

// Countries returns all supported countries.
func Countries() []Country {
	return []Country{CountryFrance, CountryUSA, CountryUK}
}

const maxTopicLength = 100

// TopicRequest is the immutable input for one pipeline run.
type TopicRequest struct {
	Topic    string   `json:"topic"`
	Audience Audience `json:"audience"`
	Country  Country  `json:"country"`
}

// Validate checks the request against the input constraints.
func (r TopicRequest) Validate() error {
	if r.Topic == "" {
		return fmt.Errorf("topic must not be empty")
	}
	if utf8.RuneCountInString(r.Topic) > maxTopicLength {
		return fmt.Errorf("topic exceeds %d characters", maxTopicLength)
	}
	if !containsAudience(r.Audience) {
		return fmt.Errorf("unknown audience %q", r.Audience)
	}
	if !containsCountry(r.Country) {
		return fmt.Errorf("unknown country %q", r.Country)
	}
	return nil
}

func containsAudience(a Audience) bool {
	for _, known := range Audiences() {
		if a == known {
			return true
		}
	}
	return false
}

func containsCountry(c Country) bool {
	for _, known := range Countries() {
		if c == known {
			return true
		}
	}
	return false
}

// EventTiming places an event relative to the run's reference date.
type EventTiming string

const (
	TimingPast    EventTiming = "Past"
	TimingOngoing EventTiming = "Ongoing"
	TimingFuture  EventTiming = "Future"
)

// TimingFor computes the event timing by comparing the event date to the
// reference date on calendar-day granularity. Same day means Ongoing.
func TimingFor(eventDate, reference time.Time) EventTiming {
	ey, em, ed := eventDate.Date()
	ry, rm, rd := reference.Date()
	event := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	ref := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)

	switch {
	case event.After(ref):
		return TimingFuture
	case event.Before(ref):
		return TimingPast
	default:
		return TimingOngoing
	}
}

// Category is the topic category assigned by the analysis stage.
type Category string

const (
	CategoryScience       Category = "Science"
	CategorySports        Category = "Sports"
	CategoryPolitics      Category = "Politics"
	CategoryTechnology    Category = "Technology"
	CategoryEntertainment Category = "Entertainment"
	CategoryBusiness      Category = "Business"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryOther         Category = "Other"
)

// Categories returns the fixed category list.
func Categories() []Category {
	return []Category{
		CategoryScience, CategorySports, CategoryPolitics, CategoryTechnology,
		CategoryEntertainment, CategoryBusiness, CategoryHealth, CategoryEducation,
		CategoryOther,
	}
}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// DateLayout is the wire format for event dates.
const DateLayout = "2006-01-02"

// MaxSummaryLength bounds the analysis summary after repair.
const MaxSummaryLength = 240

// AnalysisResult is the validated output of the analysis stage.
// EventTiming and EventDate are only meaningful when IsEvent is true.
type AnalysisResult struct {
	IsEvent     bool        `json:"isEvent"`
	EventTiming EventTiming `json:"eventTiming,omitempty"`
	EventDate   string      `json:"eventDate,omitempty"`
	Category    Category    `json:"category"`
	Summary     string      `json:"summary,omitempty"`
}

// ParsedEventDate returns the event date when one is set and parseable.
func (a AnalysisResult) ParsedEventDate() (time.Time, bool) {
	if a.EventDate == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, a.EventDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// QuestionCount is the exact number of questions per run.
const QuestionCount = 6

// ImagePromptCount is the exact number of illustration prompts per run.
const ImagePromptCount = 4

// OutlineSection is one section of a podcast outline.
type OutlineSection struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// PodcastOutline is the validated output of the outline stage.
type PodcastOutline struct {
	Title    string           `json:"title"`
	Sections []OutlineSection `json:"sections"`
}

// Answer pairs one question with its researched answer.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
