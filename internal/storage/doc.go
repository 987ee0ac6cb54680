// Package storage persists the dedup state of the bot: the key of the last
// session whose results were posted.
//
// Backends implement the narrow Store contract (Load/Save) so the pipeline never
// knows where the value lives:
//   - "file": a pretty-printed JSON object (default, human-editable)
//   - "sqlite": a key-value table in an embedded SQLite database
package storage
