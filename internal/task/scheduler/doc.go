// Package scheduler triggers the bot in daemon mode.
//
// A schedule is either a cron expression (robfig/cron, optional seconds field)
// or a fixed interval. Runs never overlap: a trigger that fires while the
// previous run is still going is skipped.
package scheduler
