package audio

import "context"

// Recorder acquires the microphone.
type Recorder interface {
	// Start opens the input device and begins buffering samples.
	Start(ctx context.Context) (Capture, error)
}

// Capture is one in-progress recording holding the microphone.
type Capture interface {
	// Stop finalizes the buffered audio into a clip and releases the device.
	// Stop is safe to call more than once; later calls return the first result.
	Stop() (Clip, error)
}
