// ABOUTME: Choreography package for scripted, randomized playback
// ABOUTME: Loads tracks and instruments and runs them concurrently
// Package choreo runs the installation's choreography.
//
// A Choreography lists instruments and tracks. Each track loops over play
// and sleep cues in its own goroutine. A play cue builds a fresh stream,
// bounds it with a fade, queues it on the instrument's mixer channel and
// records it in the registry until it has been played out.
package choreo
