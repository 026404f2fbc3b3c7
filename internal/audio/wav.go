package audio

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

const (
	wavFilename    = "audio.wav"
	wavContentType = "audio/wav"
	bitDepth       = 16
	pcmFormat      = 1
)

// EncodeWAV packs interleaved 16-bit samples into a WAV clip.
func EncodeWAV(samples []int16, rate, channels int) (Clip, error) {
	if rate <= 0 {
		return Clip{}, errors.Errorf("invalid sample rate %d", rate)
	}
	if channels <= 0 {
		return Clip{}, errors.Errorf("invalid channel count %d", channels)
	}

	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, rate, bitDepth, channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  rate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i := range samples {
		buf.Data[i] = int(samples[i])
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return Clip{}, errors.Wrap(err, "write wav samples")
	}
	if err := enc.Close(); err != nil {
		return Clip{}, errors.Wrap(err, "finalize wav header")
	}

	return Clip{
		Data:        ws.buf,
		Filename:    wavFilename,
		ContentType: wavContentType,
		SampleRate:  rate,
		Channels:    channels,
		Samples:     len(samples),
	}, nil
}

// writeSeeker is an in-memory io.WriteSeeker; the wav encoder seeks back to
// patch chunk sizes when it closes.
type writeSeeker struct {
	buf []byte
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	end := w.pos + len(p)
	if end > len(w.buf) {
		if end > cap(w.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, w.buf)
			w.buf = grown
		} else {
			w.buf = w.buf[:end]
		}
	}
	copy(w.buf[w.pos:], p)
	w.pos = end
	return len(p), nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(w.pos) + offset
	case io.SeekEnd:
		abs = int64(len(w.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	w.pos = int(abs)
	return abs, nil
}
