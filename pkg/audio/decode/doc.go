// ABOUTME: Audio file decoder package
// ABOUTME: Opens MP3, FLAC, WAV and Ogg Opus files as sample streams
// Package decode turns audio files into audio.Stream values.
//
// Supports: MP3 (go-mp3), FLAC (mewkiz/flac), WAV (go-audio/wav) and
// Ogg Opus (hraban/opus, requires libopusfile).
//
// Files loop by default so a decoded instrument behaves like an unbounded
// synthesized one; callers truncate with effect.NewFade.
//
// Example:
//
//	s, err := decode.Open("sounds/M35-perma.mp3")
//	faded := effect.NewFade(s, 20*time.Second, time.Second)
package decode
