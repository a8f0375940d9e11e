// Package ir provides the value types shared by every other package: the
// game state, the notes it carries, and the closed set of events that drive
// it.
//
// This package contains type definitions and their canonical encodings only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - State, FallingNote and PlayableNote are values. Handlers build new
//     slices rather than mutating the ones they were given.
//   - Event is sealed. Tick, SpawnNote, KeyPress and End are the only
//     implementations, so a type switch over them is exhaustive.
//   - Fingerprints use canonical JSON with floats carried as their IEEE-754
//     bit patterns, so "identical" means bit-identical.
//   - All JSON tags use snake_case.
package ir
