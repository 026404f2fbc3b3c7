package audio

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func requireCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

func TestCommandPlayerRejectsEmptyInput(t *testing.T) {
	_, err := NewCommandPlayer(nil).Play(context.Background(), []byte("x"))
	require.Error(t, err)

	_, err = NewCommandPlayer([]string{"cat"}).Play(context.Background(), nil)
	require.Error(t, err)
}

func TestCommandPlayerFinishes(t *testing.T) {
	requireCommand(t, "cat")

	p, err := NewCommandPlayer([]string{"cat"}).Play(context.Background(), []byte("audio"))
	require.NoError(t, err)
	require.NoError(t, p.Wait())
}

func TestProcessPlaybackReportsFailure(t *testing.T) {
	requireCommand(t, "false")

	p, err := StartProcess(exec.Command("false"))
	require.NoError(t, err)
	require.Error(t, p.Wait())
}

func TestProcessPlaybackStop(t *testing.T) {
	requireCommand(t, "sleep")

	p, err := StartProcess(exec.Command("sleep", "30"))
	require.NoError(t, err)

	waited := make(chan error, 1)
	go func() { waited <- p.Wait() }()

	p.Stop()
	p.Stop()

	select {
	case err := <-waited:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not stop")
	}
}

func TestCommandPlayerEndsWithContext(t *testing.T) {
	requireCommand(t, "sleep")

	ctx, cancel := context.WithCancel(context.Background())
	p, err := NewCommandPlayer([]string{"sleep", "30"}).Play(ctx, []byte("audio"))
	require.NoError(t, err)

	waited := make(chan error, 1)
	go func() { waited <- p.Wait() }()

	cancel()

	select {
	case err := <-waited:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("player outlived its context")
	}
}
