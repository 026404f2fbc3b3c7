// Package audio owns the two device boundaries of the widget: microphone
// capture (PortAudio, encoded to WAV) and playback through an external
// player process.
package audio

import "time"

// Clip is one finalized recording ready for upload.
type Clip struct {
	Data        []byte
	Filename    string
	ContentType string
	SampleRate  int
	Channels    int
	Samples     int
}

// Duration returns the length of the recording.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := c.Samples / c.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// Empty reports whether the clip holds no audio. Clips read from files
// carry no sample count and are judged by their bytes alone.
func (c Clip) Empty() bool {
	if len(c.Data) == 0 {
		return true
	}
	return c.SampleRate > 0 && c.Samples == 0
}
