package server_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/outreach/internal/server"
)

func TestRun_ServesAndShutsDown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan net.Addr, 1)
	var order []string

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, server.Config{
			Addr: "127.0.0.1:0",
			Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "ok")
			}),
			OnListen: func(a net.Addr) { addrCh <- a },
			StartupHooks: []server.Hook{func(context.Context) error {
				order = append(order, "start")
				return nil
			}},
			ShutdownHooks: []server.Hook{func(context.Context) error {
				order = append(order, "stop")
				return nil
			}},
		})
	}()

	addr := <-addrCh
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/", addr))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return string(body) == "ok"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"start", "stop"}, order)
}

func TestRun_StartupHookFailure(t *testing.T) {
	t.Parallel()

	stopped := false
	boom := errors.New("boom")
	err := server.Run(context.Background(), server.Config{
		Addr:          "127.0.0.1:0",
		Handler:       http.NotFoundHandler(),
		StartupHooks:  []server.Hook{func(context.Context) error { return boom }},
		ShutdownHooks: []server.Hook{func(context.Context) error { stopped = true; return nil }},
	})

	require.ErrorIs(t, err, boom)
	assert.True(t, stopped)
}
