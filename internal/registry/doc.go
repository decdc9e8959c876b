// ABOUTME: Registry package tracking active sounds
// ABOUTME: Lock-free keyed map from label to play window
// Package registry tracks which sounds are currently playing.
//
// Each play call Puts an entry and a dedicated watcher Removes it once the
// sound has finished. Remove only deletes the exact entry it was given, so a
// late watcher never removes a newer entry under the same label.
package registry
