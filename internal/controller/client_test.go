package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAgent is a minimal device agent: it answers each request frame with a
// scripted response.
func fakeAgent(t *testing.T, handle func(req request) response) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		for {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				return
			}
			var req request
			if err := json.Unmarshal(line, &req); err != nil {
				return
			}
			frame, _ := json.Marshal(handle(req))
			frame = append(frame, '\n')
			if _, err := conn.Write(frame); err != nil {
				return
			}
		}
	}()

	return listener.Addr().String()
}

func TestExecute(t *testing.T) {
	addr := fakeAgent(t, func(req request) response {
		if req.Action == "echo" {
			payload, _ := req.Params["payload"].(string)
			return response{OK: true, Output: "echo:" + payload}
		}
		return response{OK: false, Error: "unknown action"}
	})

	client := New(addr, time.Second)
	defer client.Close()

	out, err := client.Execute(context.Background(), "echo", map[string]interface{}{"payload": "probe"})
	require.NoError(t, err)
	assert.Equal(t, "echo:probe", out)
}

func TestExecuteAgentFailure(t *testing.T) {
	addr := fakeAgent(t, func(req request) response {
		return response{OK: false, Error: "permission denied"}
	})

	client := New(addr, time.Second)
	defer client.Close()

	_, err := client.Execute(context.Background(), "mod_flow", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestExecuteReusesConnection(t *testing.T) {
	var connections atomic.Int32
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			connections.Add(1)
			go func(conn net.Conn) {
				defer conn.Close()
				reader := bufio.NewReader(conn)
				for {
					if _, err := reader.ReadBytes('\n'); err != nil {
						return
					}
					frame, _ := json.Marshal(response{OK: true, Output: "ok"})
					conn.Write(append(frame, '\n'))
				}
			}(conn)
		}
	}()

	client := New(listener.Addr().String(), time.Second)
	defer client.Close()

	for i := 0; i < 3; i++ {
		_, err := client.Execute(context.Background(), "echo", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), connections.Load())
}

func TestExecuteDialFailure(t *testing.T) {
	// A closed listener's port refuses connections.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	client := New(addr, 200*time.Millisecond)
	_, err = client.Execute(context.Background(), "echo", nil)
	require.Error(t, err)
}

func TestCloseWithoutConnect(t *testing.T) {
	client := New("127.0.0.1:1", time.Second)
	assert.NoError(t, client.Close())
}
