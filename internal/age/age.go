// Package age computes exact civil-calendar age and adulthood from a birth
// date expressed in any of the notations that appear on supported identity
// documents. Everything here is pure: results depend only on the inputs.
package age

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

var (
	// ErrInvalidDateFormat means the text matched none of the accepted
	// notations. Callers must treat this as a validation error, never as a
	// zero age.
	ErrInvalidDateFormat = errors.New("unrecognized birth date format")

	// ErrImpossibleDate means the notation matched but the month or day is
	// out of range (e.g. month 13, February 30).
	ErrImpossibleDate = errors.New("impossible calendar date")
)

// DefaultMajorityAge is the age of adulthood unless configured otherwise.
const DefaultMajorityAge = 18

// Result is the outcome of an age computation.
type Result struct {
	Age              int       `json:"age"`
	IsAdult          bool      `json:"isAdult"`
	DaysUntilAdult   int       `json:"daysUntilAdult"`
	BirthDate        time.Time `json:"birthDate"`
	VerificationDate time.Time `json:"verificationDate"`
}

// datePattern binds a notation regexp to the capture-group order of its
// year, month, and day.
type datePattern struct {
	re        *regexp.Regexp
	yearFirst bool
}

// Accepted notations: ISO, slash-separated, localized, and the two
// month-first US forms.
var datePatterns = []datePattern{
	{re: regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), yearFirst: true},
	{re: regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`), yearFirst: true},
	{re: regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日$`), yearFirst: true},
	{re: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), yearFirst: false},
	{re: regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), yearFirst: false},
}

// Calculator computes ages against a configurable majority age.
type Calculator struct {
	majorityAge int
}

// NewCalculator builds a calculator. A non-positive majority age falls back
// to the default.
func NewCalculator(majorityAge int) *Calculator {
	if majorityAge <= 0 {
		majorityAge = DefaultMajorityAge
	}
	return &Calculator{majorityAge: majorityAge}
}

// Compute parses birthDateText and derives age and adulthood as of now.
func (c *Calculator) Compute(birthDateText string, now time.Time) (Result, error) {
	birth, err := ParseBirthDate(birthDateText)
	if err != nil {
		return Result{}, err
	}

	today := dateOnly(now)

	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		// Birthday has not yet occurred this year.
		years--
	}

	// Adulthood compares today against the birth date advanced by the
	// majority age, so someone turning of age today counts as adult.
	majorityDate := birth.AddDate(c.majorityAge, 0, 0)
	isAdult := !today.Before(majorityDate)

	daysUntilAdult := 0
	if !isAdult {
		diff := majorityDate.Sub(today)
		daysUntilAdult = int((diff + 24*time.Hour - 1) / (24 * time.Hour))
	}

	return Result{
		Age:              years,
		IsAdult:          isAdult,
		DaysUntilAdult:   daysUntilAdult,
		BirthDate:        birth,
		VerificationDate: today,
	}, nil
}

// Compute derives age and adulthood using the default majority age.
func Compute(birthDateText string, now time.Time) (Result, error) {
	return NewCalculator(DefaultMajorityAge).Compute(birthDateText, now)
}

// ParseBirthDate converts any accepted notation into a calendar date.
func ParseBirthDate(text string) (time.Time, error) {
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		var year, month, day int
		if p.yearFirst {
			year, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			day, _ = strconv.Atoi(m[3])
		} else {
			month, _ = strconv.Atoi(m[1])
			day, _ = strconv.Atoi(m[2])
			year, _ = strconv.Atoi(m[3])
		}

		if month < 1 || month > 12 || day < 1 || day > 31 {
			return time.Time{}, ErrImpossibleDate
		}

		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes overflow (Feb 30 becomes Mar 2); reject any
		// input that did not survive round-tripping.
		if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
			return time.Time{}, ErrImpossibleDate
		}
		return date, nil
	}
	return time.Time{}, ErrInvalidDateFormat
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
