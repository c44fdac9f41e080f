// Package demo implements the scripted scenario subsystem: read-only script
// loading from the blob store, exact trigger matching, token-overlap step
// continuation, and the stateless state machine that re-derives replay
// progress from typed annotations embedded in the conversation history.
package demo
