package audio

import (
	"bytes"
	"context"
	"os/exec"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Playback is one running audio output.
type Playback interface {
	// Wait blocks until playback finishes. A stopped playback finishes with nil.
	Wait() error
	// Stop interrupts playback. Safe to call at any time, more than once.
	Stop()
}

// Player plays encoded audio bytes.
type Player interface {
	Play(ctx context.Context, data []byte) (Playback, error)
}

// CommandPlayer pipes audio to an external player on stdin, e.g.
// ffplay -nodisp -autoexit -.
type CommandPlayer struct {
	Command []string
}

// NewCommandPlayer creates a player for the given argv
func NewCommandPlayer(command []string) *CommandPlayer {
	return &CommandPlayer{Command: command}
}

// Play implements Player
func (p *CommandPlayer) Play(ctx context.Context, data []byte) (Playback, error) {
	if len(p.Command) == 0 {
		return nil, errors.New("player command is empty")
	}
	if len(data) == 0 {
		return nil, errors.New("no audio to play")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, p.Command[0], p.Command[1:]...)
	cmd.Stdin = bytes.NewReader(data)
	return StartProcess(cmd)
}

// ProcessPlayback tracks an audio-producing child process.
type ProcessPlayback struct {
	cmd     *exec.Cmd
	done    chan struct{}
	err     error
	stopped atomic.Bool
}

// StartProcess starts cmd and returns a handle for it.
func StartProcess(cmd *exec.Cmd) (*ProcessPlayback, error) {
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "start %s", cmd.Path)
	}
	p := &ProcessPlayback{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

// Wait implements Playback
func (p *ProcessPlayback) Wait() error {
	<-p.done
	if p.stopped.Load() {
		return nil
	}
	if p.err != nil {
		return errors.Wrap(p.err, "playback process")
	}
	return nil
}

// Stop implements Playback
func (p *ProcessPlayback) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}
	select {
	case <-p.done:
		return
	default:
	}
	_ = p.cmd.Process.Kill()
}
