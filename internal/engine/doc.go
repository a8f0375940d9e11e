// Package engine folds game events into game states.
//
// The core is Apply, a pure reducer over the sealed ir.Event variants. It has
// no clock, no I/O and no randomness beyond the seeded substitute-note
// generator, so a recorded event sequence always refolds to the same states.
//
// Single-Writer Event Loop:
// Runner wraps the reducer in a loop for live play. Sources (the tick clock,
// the note schedule, the keyboard) run in their own goroutines and call
// Enqueue. Run dequeues in arrival order, applies each event, and hands the
// resulting Step to every sink (renderer, audio, session recorder). Only the
// Run goroutine touches the current state.
//
// Each step is stamped with a monotonic seq from Clock. Seq orders recorded
// events; it never feeds back into game arithmetic.
package engine
