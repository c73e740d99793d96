// Package docubot runs a list of documentation tasks to completion. An Orchestrator works through the tasks one at a time on the calling goroutine:
// it re-checks whether each element still needs a comment, asks the generator for one, and hands the text to the mutator. A failed task is recorded
// and the run moves on; only the first failure of a run is announced. Cancellation is checked between tasks, never inside one, so a file is never
// left half-edited.
package docubot
