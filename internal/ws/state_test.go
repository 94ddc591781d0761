package ws

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	diag "github.com/coreman2200/funtimes-qotd/internal/diagnostics"
	"github.com/coreman2200/funtimes-qotd/internal/render"
	"github.com/coreman2200/funtimes-qotd/internal/tests"
)

type fakeDriver struct {
	frames int
	err    error
}

func (d *fakeDriver) Write(frame []render.Pixel) error {
	d.frames++
	return d.err
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	return c
}

func readStatus(t *testing.T, c *websocket.Conn) Status {
	t.Helper()
	var st Status
	require.NoError(t, c.ReadJSON(&st))
	return st
}

func TestWriteTeesFramesToClients(t *testing.T) {
	drv := &fakeDriver{}
	s := NewState(2, drv)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := dial(t, srv, "/ws")
	assert.Equal(t, 2, readStatus(t, c).Pixels)

	require.NoError(t, s.Write([]render.Pixel{{R: 1, G: 2, B: 3}, {R: 255}}))
	assert.Equal(t, 1, drv.frames)

	var f frameMsg
	require.NoError(t, c.ReadJSON(&f))
	assert.Equal(t, uint64(1), f.FrameID)
	assert.Equal(t, []byte{1, 2, 3, 255, 0, 0}, f.RGB)

	// the second frame lands inside the throttle window and is not sent
	s.Throttle = time.Hour
	require.NoError(t, s.Write([]render.Pixel{{}, {}}))
	assert.Equal(t, 2, drv.frames)
	assert.Equal(t, uint64(2), s.Status().FrameID)
}

func TestWriteReportsDriverError(t *testing.T) {
	boom := errors.New("spi gone")
	s := NewState(1, &fakeDriver{err: boom})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := dial(t, srv, "/diag")
	readStatus(t, c)

	assert.ErrorIs(t, s.Write([]render.Pixel{{}}), boom)
	var d diag.Diagnostic
	require.NoError(t, c.ReadJSON(&d))
	assert.Equal(t, diag.CodeDriverWrite, d.Code)
	assert.Equal(t, diag.Err, d.Severity)
}

func TestControlQueuesCommands(t *testing.T) {
	s := NewState(1, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := dial(t, srv, "/control")
	require.NoError(t, c.WriteJSON(map[string]string{"cmd": "next"}))
	readStatus(t, c)
	require.NoError(t, c.WriteJSON(map[string]string{"cmd": "dance"}))
	readStatus(t, c)
	require.NoError(t, c.WriteJSON(map[string]string{"cmd": "test", "test": "plane_z"}))
	readStatus(t, c)
	require.NoError(t, c.WriteJSON(map[string]string{"cmd": "clear"}))
	readStatus(t, c)
	require.NoError(t, c.WriteJSON(map[string]string{"cmd": "test", "test": "seat_groups"}))
	readStatus(t, c)

	assert.Equal(t, Control{Cmd: CmdNext}, <-s.Commands())
	assert.Equal(t, Control{Cmd: CmdClear}, <-s.Commands())
	assert.Equal(t, Control{Cmd: CmdTest, Test: tests.SeatGroups}, <-s.Commands())
	assert.Empty(t, s.Commands())
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	s := NewState(1, nil)
	for i := 0; i < cap(s.cmds); i++ {
		require.True(t, s.Enqueue(Control{Cmd: CmdNext}))
	}
	assert.False(t, s.Enqueue(Control{Cmd: CmdNext}))
}

func TestHealth(t *testing.T) {
	s := NewState(3, nil)
	s.Name = "sim"
	s.SetSeated(2)
	require.NoError(t, s.Prompt("Press to start new game!"))
	require.NoError(t, s.Write(make([]render.Pixel, 3)))

	rec := httptest.NewRecorder()
	s.HandleHealth(rec, httptest.NewRequest("GET", "/health", nil))

	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, uint64(1), st.FrameID)
	assert.Equal(t, 3, st.Pixels)
	assert.Equal(t, 2, st.Seated)
	assert.Equal(t, "Press to start new game!", st.Prompt)
	assert.Equal(t, "sim", st.Driver)
}
