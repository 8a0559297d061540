package adaptor

import (
	"fmt"
	"time"
)

// DateFactory builds the value stored in a temporal column from an epoch
// millisecond timestamp.
type DateFactory interface {
	NewDate(t ColumnType, epochMillis int64) (any, error)
}

// DateFactoryFunc adapts a plain function to the DateFactory interface.
type DateFactoryFunc func(t ColumnType, epochMillis int64) (any, error)

func (f DateFactoryFunc) NewDate(t ColumnType, epochMillis int64) (any, error) {
	return f(t, epochMillis)
}

const millisPerDay = 24 * 60 * 60 * 1000

// maxShortDateDays is the last day a SHORTDATE can hold (days since the
// epoch, top value reserved).
const maxShortDateDays = 65534

// Temporal is the value EpochDates produces for temporal columns.
type Temporal struct {
	Type   ColumnType
	Millis int64
}

// Time returns the UTC instant of t.
func (t Temporal) Time() time.Time { return time.UnixMilli(t.Millis).UTC() }

func (t Temporal) String() string {
	switch t.Type {
	case TypeShortDate, TypeDate:
		return t.Time().Format(time.DateOnly)
	case TypeTime:
		return t.Time().Format("15:04:05.000")
	default:
		return t.Time().Format("2006-01-02 15:04:05.000")
	}
}

// EpochDates is the default DateFactory. Dates are truncated to the UTC
// day, times keep only the milliseconds since midnight, and timestamps
// are kept as given.
var EpochDates DateFactory = DateFactoryFunc(epochDate)

func epochDate(t ColumnType, ms int64) (any, error) {
	switch t {
	case TypeShortDate:
		days := floorDiv(ms, millisPerDay)
		if days < 0 || days > maxShortDateDays {
			return nil, fmt.Errorf("%w: SHORTDATE day %d outside [0,%d]", ErrOutOfRange, days, maxShortDateDays)
		}
		return Temporal{Type: t, Millis: days * millisPerDay}, nil
	case TypeDate:
		return Temporal{Type: t, Millis: floorDiv(ms, millisPerDay) * millisPerDay}, nil
	case TypeTime:
		return Temporal{Type: t, Millis: ms - floorDiv(ms, millisPerDay)*millisPerDay}, nil
	case TypeTimestamp:
		return Temporal{Type: t, Millis: ms}, nil
	default:
		return nil, fmt.Errorf("%s is not a temporal type", t)
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
