package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cruciblehq/provision/internal/protocol"
	"github.com/cruciblehq/provision/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Engine whose containers never start.
type failingEngine struct {
	closed atomic.Bool
}

func (e *failingEngine) Start(context.Context, target.Base, string, string) (target.Target, error) {
	return nil, errors.New("pull access denied")
}

func (e *failingEngine) Close() error {
	e.closed.Store(true)
	return nil
}

func startServer(t *testing.T) (*Server, *failingEngine, string) {
	t.Helper()

	// Unix socket paths are length-limited, so avoid the long test temp dir.
	dir, err := os.MkdirTemp("", "prov")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "provision.sock")
	engine := &failingEngine{}

	srv, err := New(Config{SocketPath: socket, Engine: engine, EngineName: "fake"})
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })

	return srv, engine, socket
}

func TestNewRequiresEngine(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrServer)
}

func TestStatus(t *testing.T) {
	_, _, socket := startServer(t)

	var status protocol.StatusResult
	require.NoError(t, protocol.Request(context.Background(), socket, protocol.CmdStatus, nil, &status))

	assert.True(t, status.Running)
	assert.Equal(t, "fake", status.Engine)
	assert.Equal(t, os.Getpid(), status.Pid)
	assert.Zero(t, status.Builds)

	pid, err := os.ReadFile(strings.TrimSuffix(socket, ".sock") + ".pid")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(pid))
}

func TestUnknownCommand(t *testing.T) {
	_, _, socket := startServer(t)

	err := protocol.Request(context.Background(), socket, protocol.Command("explode"), nil, nil)

	var res *protocol.ErrorResult
	require.ErrorAs(t, err, &res)
	assert.Equal(t, "unknown command: explode", res.Message)
}

func TestBuildReportsFailedStage(t *testing.T) {
	_, _, socket := startServer(t)

	err := protocol.Request(context.Background(), socket, protocol.CmdBuild,
		&protocol.BuildRequest{Context: t.TempDir()}, nil)

	var res *protocol.ErrorResult
	require.ErrorAs(t, err, &res)
	assert.Equal(t, "provision", res.Stage)
	assert.Contains(t, res.Message, "pull access denied")
}

func TestBuildRejectsBadPayload(t *testing.T) {
	_, _, socket := startServer(t)

	err := protocol.Request(context.Background(), socket, protocol.CmdBuild, map[string]string{"ctx": "."}, nil)

	var res *protocol.ErrorResult
	require.ErrorAs(t, err, &res)
	assert.Empty(t, res.Stage)
}

func TestShutdown(t *testing.T) {
	srv, engine, socket := startServer(t)

	require.NoError(t, protocol.Request(context.Background(), socket, protocol.CmdShutdown, nil, nil))

	select {
	case <-srv.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	assert.Eventually(t, func() bool {
		_, err := os.Stat(socket)
		return os.IsNotExist(err) && engine.closed.Load()
	}, 5*time.Second, 10*time.Millisecond)
}
