// Package callbacktypes encodes the inline button payloads of the calendar
// bot. Payloads stay well under Telegram's 64 byte limit.
package callbacktypes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

var ErrInvalidFormat = errors.New("invalid callback format")

// Kind is the prefix of a payload.
type Kind string

const (
	KindNoop     Kind = "noop"
	KindCalendar Kind = "cal"
	KindOpen     Kind = "appt"
	KindMove     Kind = "mv"
	KindResize   Kind = "rs"
	KindReassign Kind = "rr"
	KindStatus   Kind = "st"
	KindDelete   Kind = "del"
)

// Nav is a calendar navigation command.
type Nav string

const (
	NavPrev    Nav = "prev"
	NavNext    Nav = "next"
	NavToday   Nav = "today"
	NavAxis    Nav = "axis"
	NavRefresh Nav = "refresh"
	NavBack    Nav = "back"
)

func (n Nav) valid() bool {
	switch n {
	case NavPrev, NavNext, NavToday, NavAxis, NavRefresh, NavBack:
		return true
	}
	return false
}

// Data is a decoded payload. Only the fields of its Kind are set.
type Data struct {
	Kind          Kind
	Nav           Nav
	AppointmentID int64
	DeltaMinutes  int
	Resource      model.Resource
	Status        model.AppointmentStatus
}

func Noop() string { return string(KindNoop) }

func Calendar(n Nav) string { return fmt.Sprintf("%s:%s", KindCalendar, n) }

func Open(id int64) string { return fmt.Sprintf("%s:%d", KindOpen, id) }

func Move(id int64, delta int) string { return fmt.Sprintf("%s:%d:%d", KindMove, id, delta) }

func Resize(id int64, delta int) string { return fmt.Sprintf("%s:%d:%d", KindResize, id, delta) }

// Reassign encodes e.g. rr:12:room:4.
func Reassign(id int64, r model.Resource) string {
	return fmt.Sprintf("%s:%d:%s", KindReassign, id, r)
}

func Status(id int64, s model.AppointmentStatus) string {
	return fmt.Sprintf("%s:%d:%s", KindStatus, id, s)
}

func Delete(id int64) string { return fmt.Sprintf("%s:%d", KindDelete, id) }

// String encodes d.
func (d Data) String() string {
	switch d.Kind {
	case KindCalendar:
		return Calendar(d.Nav)
	case KindOpen:
		return Open(d.AppointmentID)
	case KindMove:
		return Move(d.AppointmentID, d.DeltaMinutes)
	case KindResize:
		return Resize(d.AppointmentID, d.DeltaMinutes)
	case KindReassign:
		return Reassign(d.AppointmentID, d.Resource)
	case KindStatus:
		return Status(d.AppointmentID, d.Status)
	case KindDelete:
		return Delete(d.AppointmentID)
	}
	return Noop()
}

// Parse decodes a payload.
func Parse(raw string) (Data, error) {
	if raw == string(KindNoop) {
		return Data{Kind: KindNoop}, nil
	}
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) < 2 {
		return Data{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
	d := Data{Kind: Kind(parts[0])}

	if d.Kind == KindCalendar {
		d.Nav = Nav(parts[1])
		if len(parts) != 2 || !d.Nav.valid() {
			return Data{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
		}
		return d, nil
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return Data{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
	d.AppointmentID = id

	switch d.Kind {
	case KindOpen, KindDelete:
		if len(parts) != 2 {
			return Data{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
		}
		return d, nil
	}
	if len(parts) != 3 {
		return Data{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}

	switch d.Kind {
	case KindMove, KindResize:
		delta, err := strconv.Atoi(parts[2])
		if err != nil || delta == 0 {
			return Data{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
		}
		d.DeltaMinutes = delta
	case KindReassign:
		r, err := model.ParseResource(parts[2])
		if err != nil {
			return Data{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		d.Resource = r
	case KindStatus:
		d.Status = model.AppointmentStatus(parts[2])
		if !d.Status.Valid() {
			return Data{}, fmt.Errorf("%w: unknown status %q", ErrInvalidFormat, parts[2])
		}
	default:
		return Data{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
	return d, nil
}
