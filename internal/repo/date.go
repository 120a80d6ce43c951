package repo

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// dateLayout is fixed-width so that lexical order of the stored text matches
// chronological order.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

// Date stores a time as UTC ISO-8601 text with millisecond precision.
type Date time.Time

func Now() Date {
	return Date(time.Now().UTC().Truncate(time.Millisecond))
}

func (d Date) Value() (driver.Value, error) {
	return time.Time(d).UTC().Format(dateLayout), nil
}

func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date(time.Time{})
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case time.Time:
		*d = Date(v.UTC())
		return nil
	}
	return fmt.Errorf("cannot scan type %T into Date", value)
}

func (d *Date) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, err = time.Parse(time.DateTime, s)
		if err != nil {
			return err
		}
	}
	*d = Date(t.UTC())
	return nil
}

func (d Date) String() string {
	return time.Time(d).UTC().Format(dateLayout)
}

func (d Date) Time() time.Time {
	return time.Time(d)
}
