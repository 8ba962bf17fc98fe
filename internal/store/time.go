package store

import (
	"fmt"
	"time"
)

// MySQL hands back time.Time (parseTime=true); SQLite may hand back text.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

type dbTime struct {
	t *time.Time
}

func scanTime(t *time.Time) dbTime {
	return dbTime{t: t}
}

func (d dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d.t = v.UTC()
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		return fmt.Errorf("scan time: unexpected NULL")
	default:
		return fmt.Errorf("scan time: unsupported type %T", src)
	}
}

func (d dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("scan time: unrecognised format %q", s)
}
