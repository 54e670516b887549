// Package policy decides whether a proposed clock action is allowed.
//
// Evaluate is a pure function: it performs no I/O, reads no clocks and keeps
// no state, so identical inputs always produce identical decisions.
package policy

import (
	"fmt"
	"sort"
	"time"
)

// TrailingWindow is the period over which weekly hours are accumulated.
const TrailingWindow = 7 * 24 * time.Hour

// Action is a requested clock action, in wire form.
type Action string

const (
	ActionClockIn  Action = "clock-in"
	ActionClockOut Action = "clock-out"
)

// Record is one historical clock event, decoupled from the storage model.
type Record struct {
	StaffID   string
	TenantID  string
	Action    Action
	Timestamp time.Time
}

// Rules is the tenant-scoped clock policy.
type Rules struct {
	MinShiftHours  float64
	MaxShiftHours  float64
	MaxWeeklyHours float64
}

// Outcome of an evaluation.
type Outcome string

const (
	Accepted Outcome = "accepted"
	Rejected Outcome = "rejected"
)

// Reason classifies a rejection.
type Reason string

const (
	ReasonInvalidAction           Reason = "invalid_action"
	ReasonAlreadyClockedIn        Reason = "already_clocked_in"
	ReasonNoOpenShift             Reason = "no_open_shift"
	ReasonShiftDurationOutOfRange Reason = "shift_duration_out_of_range"
	ReasonWeeklyHoursExceeded     Reason = "weekly_hours_exceeded"
)

// Decision is the result of evaluating one clock action.
// DurationHours and WeeklyHours are meaningful only when the corresponding
// Has flag is set; both are computed only for clock-out evaluations.
type Decision struct {
	Outcome       Outcome
	Reason        Reason // empty when accepted
	Detail        string // human-readable rejection detail
	DurationHours float64
	WeeklyHours   float64
	HasDuration   bool
	HasWeekly     bool
}

// Evaluate decides whether the requested action is allowed at instant now
// under rules, given the staff member's record history.
//
// Caller contract: history must contain at least every record of this staff
// member within the trailing 7 days of now, plus the single most recent
// record overall. Evaluate cannot detect a narrower window; supplying one is
// a caller bug and silently skews the weekly total.
func Evaluate(staffID, tenantID string, action Action, now time.Time, rules Rules, history []Record) Decision {
	if action != ActionClockIn && action != ActionClockOut {
		return Decision{
			Outcome: Rejected,
			Reason:  ReasonInvalidAction,
			Detail:  fmt.Sprintf("unknown action %q", action),
		}
	}

	records := ownRecordsAscending(staffID, tenantID, history)

	if action == ActionClockIn {
		if n := len(records); n > 0 && records[n-1].Action == ActionClockIn {
			return Decision{
				Outcome: Rejected,
				Reason:  ReasonAlreadyClockedIn,
				Detail:  "an open shift already exists; clock out first",
			}
		}
		return Decision{Outcome: Accepted}
	}

	// clock-out: the open shift is the latest record iff it is a clock-in
	n := len(records)
	if n == 0 || records[n-1].Action != ActionClockIn {
		return Decision{
			Outcome: Rejected,
			Reason:  ReasonNoOpenShift,
			Detail:  "no open shift to clock out of",
		}
	}
	openShiftStart := records[n-1].Timestamp

	duration := now.Sub(openShiftStart).Hours()
	if duration < rules.MinShiftHours || duration > rules.MaxShiftHours {
		return Decision{
			Outcome: Rejected,
			Reason:  ReasonShiftDurationOutOfRange,
			Detail: fmt.Sprintf("shift duration %.2fh outside allowed range [%.2fh, %.2fh]",
				duration, rules.MinShiftHours, rules.MaxShiftHours),
			DurationHours: duration,
			HasDuration:   true,
		}
	}

	weekly := completedHoursWithin(records[:n-1], now.Add(-TrailingWindow), now) + duration
	if weekly > rules.MaxWeeklyHours {
		return Decision{
			Outcome: Rejected,
			Reason:  ReasonWeeklyHoursExceeded,
			Detail: fmt.Sprintf("weekly total %.2fh exceeds cap %.2fh",
				weekly, rules.MaxWeeklyHours),
			DurationHours: duration,
			WeeklyHours:   weekly,
			HasDuration:   true,
			HasWeekly:     true,
		}
	}

	return Decision{
		Outcome:       Accepted,
		DurationHours: duration,
		WeeklyHours:   weekly,
		HasDuration:   true,
		HasWeekly:     true,
	}
}

// ownRecordsAscending filters history to the given key and sorts it by
// timestamp ascending. The input slice is not modified.
func ownRecordsAscending(staffID, tenantID string, history []Record) []Record {
	records := make([]Record, 0, len(history))
	for _, r := range history {
		if r.StaffID == staffID && r.TenantID == tenantID {
			records = append(records, r)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records
}

// Shift is one paired clock-in/clock-out interval.
type Shift struct {
	Start time.Time
	End   time.Time
}

// Hours reports the shift duration in fractional hours.
func (s Shift) Hours() float64 { return s.End.Sub(s.Start).Hours() }

// PairShifts pairs an ascending record sequence into completed shifts,
// closing each clock-out against the nearest preceding unpaired clock-in.
// This mirrors the alternation invariant and stays unambiguous on dirty
// histories: unpaired clock-outs are skipped. The returned open timestamp
// is the start of a trailing unclosed shift, if any.
func PairShifts(records []Record) (shifts []Shift, open *time.Time) {
	var pending *time.Time
	for i := range records {
		switch records[i].Action {
		case ActionClockIn:
			ts := records[i].Timestamp
			pending = &ts
		case ActionClockOut:
			if pending == nil {
				continue
			}
			shifts = append(shifts, Shift{Start: *pending, End: records[i].Timestamp})
			pending = nil
		}
	}
	return shifts, pending
}

// completedHoursWithin sums the duration of every completed shift whose
// clock-out falls within [from, to].
func completedHoursWithin(records []Record, from, to time.Time) float64 {
	shifts, _ := PairShifts(records)
	var total float64
	for _, sh := range shifts {
		if !sh.End.Before(from) && !sh.End.After(to) {
			total += sh.Hours()
		}
	}
	return total
}
