package schedule

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrUnknownSection    = errors.New("unknown section")
	ErrUnknownReference  = errors.New("unknown reference")
	ErrMidnightCrossing  = errors.New("time block crosses midnight")
	ErrInvalidValue      = errors.New("invalid value")
	ErrInternal          = errors.New("internal consistency error")
)

// ConfigError attributes a load failure to a file, section and key.
// Err is one of the sentinels above so callers can use errors.Is.
type ConfigError struct {
	File    string
	Section string
	Key     string
	// Ref and RefKind are set for ErrUnknownReference.
	Ref     string
	RefKind EntryKind
	Detail  string
	Err     error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
	}
	if e.Section != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		fmt.Fprintf(&b, "[%s]", e.Section)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	if e.Ref != "" {
		fmt.Fprintf(&b, " %q (%s)", e.Ref, e.RefKind)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// OverlapWarning reports two block instances whose [start,end) intervals
// intersect on one day. It never fails a load.
type OverlapWarning struct {
	Day  string        `json:"day"`
	A    CompiledEvent `json:"a"`
	AEnd TimeOfDay     `json:"a_end"`
	B    CompiledEvent `json:"b"`
	BEnd TimeOfDay     `json:"b_end"`
}

func (w OverlapWarning) String() string {
	return fmt.Sprintf("%s: %s %s-%s overlaps %s %s-%s",
		w.Day, w.A.Title, w.A.At, w.AEnd, w.B.Title, w.B.At, w.BEnd)
}
