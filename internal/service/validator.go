package service

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// ReservationInput is the payload of a create or modify request.  People
// is left untyped so a non-numeric value can be reported as InvalidType
// instead of failing request binding.
type ReservationInput struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	MobileNumber    string `json:"mobile_number" validate:"required"`
	ReservationDate string `json:"reservation_date" validate:"required"`
	ReservationTime string `json:"reservation_time" validate:"required"`
	People          any    `json:"people" validate:"required"`
	Status          string `json:"status"`
}

// validate checks payload shape from struct tags.  Failures name fields by
// their JSON keys and are reported in field declaration order.
var validate = newTagValidator()

func newTagValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// tagFailures runs the struct tags of in and returns what failed.
func tagFailures(in any) validator.ValidationErrors {
	var errs validator.ValidationErrors
	errors.As(validate.Struct(in), &errs)
	return errs
}

// firstWithTag returns the first failure of the given tag, or nil.
func firstWithTag(errs validator.ValidationErrors, tag string) validator.FieldError {
	for _, fe := range errs {
		if fe.Tag() == tag {
			return fe
		}
	}
	return nil
}

// candidate carries a payload through the validation pipeline.  Each step
// may read what earlier steps parsed.
type candidate struct {
	in      ReservationInput
	people  int
	date    time.Time
	minutes int
	status  model.Status
}

// step is one rule of the pipeline.  It returns nil to pass the candidate on.
type step func(v *Validator, c *candidate) error

// reservationPipeline is evaluated in order; the first failure wins.
var reservationPipeline = []step{
	requireFields,
	checkPeople,
	checkDate,
	checkTime,
	checkClosedDay,
	checkFuture,
	checkOpenHours,
	checkStatusOnWrite,
}

// Validator checks reservation payloads against Rules.  It never touches a
// store.
type Validator struct {
	rules Rules
	now   func() time.Time
}

// NewValidator returns a Validator for the given rules.  A nil clock means
// time.Now.
func NewValidator(rules Rules, now func() time.Time) *Validator {
	if rules.Location == nil {
		rules.Location = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Validator{rules: rules, now: now}
}

// Rules returns the rules the validator enforces.
func (v *Validator) Rules() Rules { return v.rules }

// Validate runs the pipeline and returns the typed reservation on success.
// The returned reservation has no id and its status is booked.
func (v *Validator) Validate(in ReservationInput) (model.Reservation, error) {
	c := &candidate{in: in}
	for _, s := range reservationPipeline {
		if err := s(v, c); err != nil {
			return model.Reservation{}, err
		}
	}
	return model.Reservation{
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		MobileNumber:    strings.TrimSpace(in.MobileNumber),
		ReservationDate: c.date.Format(dateLayout),
		ReservationTime: formatClock(c.minutes),
		People:          c.people,
		Status:          c.status,
	}, nil
}

const dateLayout = "2006-01-02"

// requireFields reports the first missing field.  Blank strings count as
// missing, and so does a people value of zero.
func requireFields(_ *Validator, c *candidate) error {
	in := c.in
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	in.ReservationDate = strings.TrimSpace(in.ReservationDate)
	in.ReservationTime = strings.TrimSpace(in.ReservationTime)
	if fe := firstWithTag(tagFailures(in), "required"); fe != nil {
		return fieldError(KindMissingField, fe.Field(), "%s field required", fe.Field())
	}
	return nil
}

func checkPeople(_ *Validator, c *candidate) error {
	var f float64
	switch t := c.in.People.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return fieldError(KindInvalidType, "people", "%v is not a number type for people field.", t)
		}
		f = n
	default:
		return fieldError(KindInvalidType, "people", "%v is not a number type for people field.", t)
	}
	if f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return fieldError(KindInvalidType, "people", "people must be a whole number of at least 1, got %v.", f)
	}
	c.people = int(f)
	return nil
}

func checkDate(v *Validator, c *candidate) error {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(c.in.ReservationDate), v.rules.Location)
	if err != nil {
		return fieldError(KindInvalidDate, "reservation_date", "reservation_date is not a valid date.")
	}
	c.date = d
	return nil
}

// timePattern accepts HH:MM with an optional trailing :SS, one or two digits
// per component.  Seconds are ignored.
var timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::\d{1,2})?$`)

func checkTime(_ *Validator, c *candidate) error {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(c.in.ReservationTime))
	if m == nil {
		return fieldError(KindInvalidTime, "reservation_time", "reservation_time is not a valid time")
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	// Hour zero is never a bookable hour.
	if hour < 1 || hour > 23 || minute > 59 {
		return fieldError(KindInvalidTime, "reservation_time", "reservation_time is not a valid time")
	}
	c.minutes = hour*60 + minute
	return nil
}

func checkClosedDay(v *Validator, c *candidate) error {
	if c.date.Weekday() == v.rules.ClosedWeekday {
		return fieldError(KindClosedDay, "reservation_date", "Location is closed on %ss", v.rules.ClosedWeekday)
	}
	return nil
}

func checkFuture(v *Validator, c *candidate) error {
	y, mo, d := c.date.Date()
	at := time.Date(y, mo, d, c.minutes/60, c.minutes%60, 0, 0, v.rules.Location)
	if !at.After(v.now()) {
		return fieldError(KindPastDate, "reservation_date", "Must be a future date")
	}
	return nil
}

func checkOpenHours(v *Validator, c *candidate) error {
	if c.minutes < v.rules.Open || c.minutes > v.rules.LastSeating {
		return fieldError(KindOutOfHours, "reservation_time",
			"Reservation must be made within business hours (%s to %s)",
			formatClock(v.rules.Open), formatClock(v.rules.LastSeating))
	}
	return nil
}

func checkStatusOnWrite(_ *Validator, c *candidate) error {
	raw := strings.TrimSpace(c.in.Status)
	if raw == "" {
		c.status = model.StatusBooked
		return nil
	}
	status, ok := model.ParseStatus(raw)
	if !ok {
		return fieldError(KindUnknownStatus, "status", "Status unknown.")
	}
	if status != model.StatusBooked {
		return fieldError(KindInvalidInitialStatus, "status", "New reservation cannot have %s status.", status)
	}
	c.status = status
	return nil
}
