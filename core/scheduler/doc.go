// Package scheduler projects completion dates for an ordered list of tasks.
// Work advances one business day at a time: each day the active task
// receives its per-crew rate times the crews in effect that day, and the
// next task only starts on the following business day. Runs are pure
// functions of their inputs and may be executed concurrently.
package scheduler
