// Package schedule models optional send dates and times and decides when
// they are due.
//
// A contact may carry a calendar [Date], a wall-clock [Clock], both, or
// neither. Two [Policy] values interpret them:
//
//   - [SchedulerPolicy] requires a date. A date alone fires at [DefaultClock]
//     (10:00); a time alone never fires.
//   - [BatchPolicy] treats missing fields as "due now" and compares a bare
//     date by calendar day.
//
// Both are evaluated in the location of the instant passed to [Policy.IsDue]:
//
//	loc, _ := time.LoadLocation("America/Chicago")
//	d, _ := schedule.ParseDate("2025-03-14")
//	due := schedule.SchedulerPolicy.IsDue(schedule.Schedule{Date: &d}, time.Now().In(loc))
package schedule
