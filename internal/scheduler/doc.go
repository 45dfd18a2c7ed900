// Package scheduler runs the background send loop.
//
// Every interval the scheduler lists contacts with a schedule, keeps those
// due under schedule.SchedulerPolicy and dispatches them with bounded
// concurrency. A contact is skipped when its (recipient, template) pair was
// already sent since the start of its scheduled day. Contacts without a send
// date are never picked up.
//
// Pass is exported so the loop can be driven with an injected clock:
//
//	s, _ := scheduler.New(contacts, dispatcher, scheduler.WithLocation(loc))
//	report, err := s.Pass(ctx, time.Now())
package scheduler
