// Package query models the lifecycle of a single remote query as an explicit
// finite state with a pure reducer.
package query

import (
	"time"
)

// Status is the resolution state of one query.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "idle"
	}
}

// DefaultNotice is shown when a failure carries no message of its own.
const DefaultNotice = "Failed to load data. Please try again."

// State is the current knowledge about one query key.
//
// Data holds the last successfully resolved payload and survives later
// failures. Seq is the newest request issued, AppliedSeq the newest request
// whose resolution was accepted. Expired marks data invalidated upstream that
// must be fetched again before it is trusted.
type State struct {
	Status     Status
	Data       any
	HasData    bool
	Expired    bool
	Err        error
	Fetching   bool
	Seq        uint64
	AppliedSeq uint64
	ResolvedAt time.Time
	Notice     string
}

// Pending reports whether the query has no data to show yet.
func (s State) Pending() bool {
	return !s.HasData && (s.Status == Idle || s.Status == Loading)
}

// Event drives a State transition.
type Event interface {
	sequence() uint64
}

// Started records that request Seq was issued.
type Started struct {
	Seq uint64
}

// Succeeded resolves request Seq with a payload.
type Succeeded struct {
	Seq  uint64
	Data any
	At   time.Time
}

// Failed resolves request Seq with an error. Notice overrides the message
// surfaced to the user.
type Failed struct {
	Seq    uint64
	Err    error
	Notice string
	At     time.Time
}

func (e Started) sequence() uint64   { return e.Seq }
func (e Succeeded) sequence() uint64 { return e.Seq }
func (e Failed) sequence() uint64    { return e.Seq }

// Reduce applies ev to prev and returns the next state. Resolutions of a
// request older than the last accepted one are ignored so the newest resolved
// response always wins.
func Reduce(prev State, ev Event) State {
	next := prev
	switch e := ev.(type) {
	case Started:
		if e.Seq > next.Seq {
			next.Seq = e.Seq
		}
		if next.HasData {
			next.Fetching = true
		} else {
			next.Status = Loading
			next.Fetching = true
		}
	case Succeeded:
		if e.Seq < prev.AppliedSeq {
			return prev
		}
		next.Status = Success
		next.Data = e.Data
		next.HasData = true
		next.Err = nil
		next.Notice = ""
		next.Expired = false
		next.AppliedSeq = e.Seq
		next.ResolvedAt = e.At
		next.Fetching = e.Seq < next.Seq
	case Failed:
		if e.Seq < prev.AppliedSeq {
			return prev
		}
		next.Status = Failure
		next.Err = e.Err
		next.Notice = noticeFor(e)
		next.Expired = false
		next.AppliedSeq = e.Seq
		next.ResolvedAt = e.At
		next.Fetching = e.Seq < next.Seq
	}
	if next.AppliedSeq > next.Seq {
		next.Seq = next.AppliedSeq
	}
	return next
}

func noticeFor(e Failed) string {
	if e.Notice != "" {
		return e.Notice
	}
	return DefaultNotice
}
