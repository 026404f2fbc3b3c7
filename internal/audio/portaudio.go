package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	framesPerBuffer = 1024

	// a device that keeps failing this many reads in a row is gone
	maxReadFailures = 25
	readRetryDelay  = 20 * time.Millisecond
)

// PortAudioRecorder records from the default input device.
type PortAudioRecorder struct {
	SampleRate int
	Channels   int
}

// NewPortAudioRecorder creates a recorder for the given format
func NewPortAudioRecorder(sampleRate, channels int) *PortAudioRecorder {
	return &PortAudioRecorder{SampleRate: sampleRate, Channels: channels}
}

// Start implements Recorder
func (r *PortAudioRecorder) Start(ctx context.Context) (Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, errors.Wrap(err, "initialize portaudio")
	}

	in := make([]int16, framesPerBuffer*r.Channels)
	stream, err := portaudio.OpenDefaultStream(r.Channels, 0, float64(r.SampleRate), framesPerBuffer, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, errors.Wrap(err, "open input stream")
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, errors.Wrap(err, "start input stream")
	}

	c := newCapture(stream, in, r.SampleRate, r.Channels, portaudio.Terminate)

	log.Debug().Int("sample_rate", r.SampleRate).Int("channels", r.Channels).Msg("audio: microphone acquired")
	return c, nil
}

// inputStream is the part of *portaudio.Stream a capture uses.
type inputStream interface {
	Read() error
	Stop() error
	Close() error
}

type portAudioCapture struct {
	stream    inputStream
	terminate func() error
	in        []int16
	samples   []int16
	rate      int
	channels  int

	stop    chan struct{}
	done    chan struct{}
	readErr error

	once sync.Once
	clip Clip
	err  error
}

func newCapture(stream inputStream, in []int16, rate, channels int, terminate func() error) *portAudioCapture {
	c := &portAudioCapture{
		stream:    stream,
		terminate: terminate,
		in:        in,
		rate:      rate,
		channels:  channels,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *portAudioCapture) readLoop() {
	defer close(c.done)
	failures := 0
	for {
		select {
		case <-c.stop:
			return
		default:
		}
		if err := c.stream.Read(); err != nil {
			failures++
			if failures >= maxReadFailures {
				c.readErr = errors.Wrap(err, "read input stream")
				log.Warn().Err(err).Int("failures", failures).Msg("audio: input device stopped delivering audio")
				return
			}
			// overflows are transient; keep what we have
			log.Debug().Err(err).Msg("audio: stream read error")
			select {
			case <-c.stop:
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}
		failures = 0
		c.samples = append(c.samples, c.in...)
	}
}

// Stop implements Capture
func (c *portAudioCapture) Stop() (Clip, error) {
	c.once.Do(func() {
		close(c.stop)
		<-c.done

		if err := c.stream.Stop(); err != nil {
			log.Debug().Err(err).Msg("audio: stop stream")
		}
		if err := c.stream.Close(); err != nil {
			log.Debug().Err(err).Msg("audio: close stream")
		}
		if err := c.terminate(); err != nil {
			log.Debug().Err(err).Msg("audio: terminate portaudio")
		}
		log.Debug().Int("samples", len(c.samples)).Msg("audio: microphone released")

		if c.readErr != nil {
			c.err = c.readErr
			return
		}
		c.clip, c.err = EncodeWAV(c.samples, c.rate, c.channels)
	})
	return c.clip, c.err
}
