// ABOUTME: Tests for file decoding
// ABOUTME: Round-trips WAV files and checks looping and error handling
package decode

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwambient/gwambient/pkg/audio"
)

func writeWAV(t *testing.T, samples []int, channels, rate int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func TestOpenWAV(t *testing.T) {
	path := writeWAV(t, []int{0, 16384, -16384, 32767}, 2, 22050)

	s, err := Open(path, WithoutLoop())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Channels())
	assert.Equal(t, 22050, s.SampleRate())
	_, bounded := s.TotalDuration()
	assert.False(t, bounded)

	got := audio.Collect(s, 100)
	require.Len(t, got, 4)
	assert.InDelta(t, 0, got[0], 1e-6)
	assert.InDelta(t, 0.5, got[1], 1e-6)
	assert.InDelta(t, -0.5, got[2], 1e-6)
	assert.InDelta(t, 32767.0/32768.0, got[3], 1e-6)

	_, ok := s.Next()
	assert.False(t, ok)
}

func TestOpenWAVLoops(t *testing.T) {
	path := writeWAV(t, []int{100, 200, 300}, 1, 8000)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	got := audio.Collect(s, 9)
	require.Len(t, got, 9)
	for i := 0; i < 3; i++ {
		assert.Equal(t, got[i], got[i+3])
		assert.Equal(t, got[i], got[i+6])
	}
}

func TestOpenUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	_, err := Open(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio file not found")
}

func TestOpenCorruptMP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not an mp3"), 0644))

	_, err := Open(path)
	assert.Error(t, err)
}
