package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TimeSlot bounds one availability block. Times are 24-hour "HH:MM" strings,
// exactly five characters. start < end is deliberately not enforced.
type TimeSlot struct {
	StartTime string `json:"start_time" validate:"required,len=5,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,len=5,datetime=15:04"`
}

// WeekDays maps the seven fixed day names to ordered availability slots.
// Friday and Saturday are the weekend days; Sunday is a weekday.
type WeekDays struct {
	Sunday    []TimeSlot `json:"sunday" validate:"dive"`
	Monday    []TimeSlot `json:"monday" validate:"dive"`
	Tuesday   []TimeSlot `json:"tuesday" validate:"dive"`
	Wednesday []TimeSlot `json:"wednesday" validate:"dive"`
	Thursday  []TimeSlot `json:"thursday" validate:"dive"`
	Friday    []TimeSlot `json:"friday" validate:"dive"`
	Saturday  []TimeSlot `json:"saturday" validate:"dive"`
}

// Schedule is the stored document: one per tutor at any time.
type Schedule struct {
	ID        string
	TutorID   string
	Days      WeekDays
	CreatedAt time.Time
}

var validate = validator.New()

// Empty returns a schedule with all seven days present and no slots.
func Empty() WeekDays {
	return WeekDays{
		Sunday:    []TimeSlot{},
		Monday:    []TimeSlot{},
		Tuesday:   []TimeSlot{},
		Wednesday: []TimeSlot{},
		Thursday:  []TimeSlot{},
		Friday:    []TimeSlot{},
		Saturday:  []TimeSlot{},
	}
}

// FromDayMap normalizes a free-form day map into a WeekDays. Keys are
// lowercased; unrecognized keys are dropped silently; missing days stay
// empty.
func FromDayMap(days map[string][]TimeSlot) WeekDays {
	w := Empty()
	for key, slots := range days {
		if slots == nil {
			slots = []TimeSlot{}
		}
		switch strings.ToLower(key) {
		case "sunday":
			w.Sunday = slots
		case "monday":
			w.Monday = slots
		case "tuesday":
			w.Tuesday = slots
		case "wednesday":
			w.Wednesday = slots
		case "thursday":
			w.Thursday = slots
		case "friday":
			w.Friday = slots
		case "saturday":
			w.Saturday = slots
		}
	}
	return w
}

// Validate checks every slot against the fixed HH:MM shape.
func (w WeekDays) Validate() error {
	return validate.Struct(w)
}
