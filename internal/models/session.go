package models

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Session identifies a single analysis run. It namespaces report output
// and correlates log lines; it carries no behavior of its own.
type Session struct {
	// RunID is a unique identifier for log correlation.
	RunID string

	// Name is the base name of the analyzed root directory.
	Name string

	// Started is the session creation time.
	Started time.Time
}

// NewSession creates a Session for the given root directory.
func NewSession(root string) Session {
	return Session{
		RunID:   uuid.NewString(),
		Name:    filepath.Base(root),
		Started: time.Now(),
	}
}

// DirName returns the session output directory name,
// "<name>_<dd>_<mm>_<yy>_<hh>_<mm>".
func (s Session) DirName() string {
	return fmt.Sprintf("%s_%s", s.Name, s.Started.Format("02_01_06_15_04"))
}

// Stamp returns the timestamp suffix used in report filenames.
func (s Session) Stamp() string {
	return s.Started.Format("20060102_150405")
}
