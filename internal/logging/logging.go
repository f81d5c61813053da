// Package logging builds the JSON logrus loggers used by the API and the applicant CLI.
package logging

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a logger that writes one JSON object per line to w. Timestamps are written
// under "ts" in loc. An unknown level falls back to info.
func New(w io.Writer, level string, loc *time.Location) *logrus.Logger {
	if loc == nil {
		loc = time.UTC
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	return &logrus.Logger{
		Out: w,
		Formatter: &zoneFormatter{
			loc: loc,
			next: &logrus.JSONFormatter{
				TimestampFormat: time.RFC3339Nano,
				FieldMap: logrus.FieldMap{
					logrus.FieldKeyTime: "ts",
				},
			},
		},
		Hooks:    make(logrus.LevelHooks),
		Level:    lvl,
		ExitFunc: logrus.StandardLogger().ExitFunc,
	}
}

type zoneFormatter struct {
	loc  *time.Location
	next logrus.Formatter
}

func (f *zoneFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.In(f.loc)
	return f.next.Format(e)
}
