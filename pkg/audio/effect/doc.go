// ABOUTME: Stream transforms package
// ABOUTME: Fade envelopes, gain and instrumentation wrappers
// Package effect provides transforms that take exclusive ownership of a
// wrapped stream.
//
// Transforms chain by wrapping: a play call typically builds
//
//	effect.NewInstrumented(effect.NewFade(effect.Amplify(src, gain), d, fade), label, obs)
//
// so the instrumentation sees the truncation performed by the fade.
package effect
