package reservation

import (
	"fmt"
	"time"

	"github.com/zemo-rentals/service-reservation/internal/domain"
)

// DateRange is a half-open rental interval [Start, End) over whole days
// in UTC. The end date itself is not occupied, so back-to-back bookings
// may share a boundary day.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// NewDateRange normalizes both instants to UTC midnight and validates
// that the range covers at least one day.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: truncateToDay(start), End: truncateToDay(end)}
	if !r.Start.Before(r.End) {
		return DateRange{}, domain.NewValidationError("end date must be after start date")
	}
	return r, nil
}

// MustDateRange is NewDateRange for statically known-good input.
func MustDateRange(start, end time.Time) DateRange {
	r, err := NewDateRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// Days returns the number of whole rental days covered by the range.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Overlaps reports whether two half-open ranges conflict:
// [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether the given day falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	d := truncateToDay(day)
	return !d.Before(r.Start) && d.Before(r.End)
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
