// ABOUTME: Synthesized sources package
// ABOUTME: Beat oscillator and plain sine generators
// Package synth provides unbounded synthesized sources.
//
// Synthesized sources never end on their own; callers truncate them with
// effect.NewFade.
package synth
