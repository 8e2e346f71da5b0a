package logging

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogstashWriter_ForwardsLines(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		received <- line
	}()

	w, err := NewLogstashWriter(ln.Addr().String())
	require.NoError(t, err)
	defer w.Close()

	n, err := w.Write([]byte(`{"msg":"listing submitted"}`))
	require.NoError(t, err)
	assert.Equal(t, len(`{"msg":"listing submitted"}`), n)

	select {
	case line := <-received:
		assert.Equal(t, "{\"msg\":\"listing submitted\"}\n", line)
	case <-time.After(2 * time.Second):
		t.Fatal("logstash listener received nothing")
	}
}

func TestLogstashWriter_DropsWhileUnreachable(t *testing.T) {
	dials := 0
	w, err := NewLogstashWriter("logstash:5000",
		WithRetryInterval(time.Hour),
		withDialer(func(network, addr string, timeout time.Duration) (net.Conn, error) {
			dials++
			return nil, errors.New("connection refused")
		}),
	)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		n, err := w.Write([]byte("line"))
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	}
	assert.Equal(t, 1, dials, "retry window should suppress redials")
	assert.Equal(t, uint64(3), w.Dropped())
}

func TestLogstashWriter_RejectsAfterClose(t *testing.T) {
	w, err := NewLogstashWriter("logstash:5000")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late"))
	assert.Error(t, err)
}

func TestNewLogstashWriter_EmptyAddress(t *testing.T) {
	_, err := NewLogstashWriter("  ")
	assert.Error(t, err)
}

func TestOptionalLogstash(t *testing.T) {
	var warn bytes.Buffer

	assert.Nil(t, OptionalLogstash("", &warn))
	assert.Empty(t, warn.String())

	assert.Nil(t, OptionalLogstash("   ", &warn))
	assert.Contains(t, warn.String(), "logstash sink disabled")

	w := OptionalLogstash("127.0.0.1:5000", &warn)
	require.NotNil(t, w)
	assert.NoError(t, w.Close())
}
