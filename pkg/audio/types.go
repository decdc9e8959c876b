// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats and sample conversion helpers
package audio

import "time"

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes the shape of a sample stream
type Format struct {
	SampleRate int
	Channels   int
}

// FormatOf returns the format declared by a stream
func FormatOf(s Stream) Format {
	return Format{SampleRate: s.SampleRate(), Channels: s.Channels()}
}

// FramesFor converts a duration to a whole number of frames at rate
func FramesFor(d time.Duration, rate int) int64 {
	if d <= 0 || rate <= 0 {
		return 0
	}
	// split to avoid overflowing d*rate for long durations
	secs := int64(d / time.Second)
	rem := int64(d % time.Second)
	return secs*int64(rate) + rem*int64(rate)/int64(time.Second)
}

// DurationOf converts a frame count at rate back into a duration
func DurationOf(frames int64, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	secs := frames / int64(rate)
	rem := frames % int64(rate)
	return time.Duration(secs)*time.Second + time.Duration(rem)*time.Second/time.Duration(rate)
}

// FloatToInt16 converts a float sample to int16, clamping to [-1, 1]
func FloatToInt16(sample float32) int16 {
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}
	return int16(sample * 32767)
}

// Int16ToFloat converts an int16 sample to float
func Int16ToFloat(sample int16) float32 {
	return float32(sample) / 32768
}

// IntToFloat converts a signed integer sample of the given bit depth to float
func IntToFloat(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	return float32(float64(sample) / float64(int64(1)<<(bitDepth-1)))
}

// FloatTo24Bit converts a float sample to the 24-bit range, clamping
func FloatTo24Bit(sample float32) int32 {
	scaled := int64(float64(sample) * Max24Bit)
	if scaled > Max24Bit {
		scaled = Max24Bit
	} else if scaled < Min24Bit {
		scaled = Min24Bit
	}
	return int32(scaled)
}
