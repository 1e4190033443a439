// Package testutil contains utilities for testing.
package testutil

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"testing"
	"time"
)

const (
	clientTimeout             = 5 * time.Second
	waitForReadyRetryInterval = 250 * time.Millisecond
	readyTimeout              = 10 * time.Second
	shutdownTimeout           = 10 * time.Second
)

// SignalCtx returns a context that is canceled when the test is interrupted
// (e.g., via the Stop button in an IDE).
func SignalCtx(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	ctx, stop := signal.NotifyContext(t.Context(), os.Interrupt)
	t.Cleanup(stop)

	return ctx, stop
}

// Getenv returns a getenv function reading from env.
func Getenv(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

// TestWriter is an io.Writer that forwards writes to tb.Log.
// Writes after the test finished are dropped.
type TestWriter struct {
	tb   testing.TB
	mu   sync.Mutex
	done bool
}

// NewTestWriter creates a new TestWriter that forwards writes to tb.Log.
func NewTestWriter(tb testing.TB) *TestWriter {
	tb.Helper()

	w := &TestWriter{tb: tb}
	tb.Cleanup(func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.done = true
	})

	return w
}

// Write forwards writes to tb.Log.
func (w *TestWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.done {
		w.tb.Logf("%s", string(p))
	}

	return len(p), nil
}

// RunFunc is the signature of the server entrypoint.
type RunFunc func(ctx context.Context, getenv func(string) string, stdout io.Writer, ln net.Listener) error

// StartServer runs run on a random localhost port with env as its environment and waits until /healthz answers.
// The server is stopped, and its return value checked, when the test ends.
func StartServer(t *testing.T, run RunFunc, env map[string]string) string {
	t.Helper()

	ctx, stop := SignalCtx(t)

	listenConfig := &net.ListenConfig{}
	ln, err := listenConfig.Listen(ctx, "tcp", net.JoinHostPort("localhost", "0"))
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, Getenv(env), NewTestWriter(t), ln)
	}()

	addr := ln.Addr().String()
	t.Cleanup(func() {
		stop()
		select {
		case runErr := <-errCh:
			if runErr != nil {
				t.Errorf("server exited with error: %v", runErr)
			}
		case <-time.After(shutdownTimeout):
			t.Error("server failed to shutdown in time")
		}
	})

	if err = WaitForReady(ctx, t, readyTimeout, fmt.Sprintf("http://%s/healthz", addr)); err != nil {
		t.Fatalf("error waiting for server to be ready: %v", err)
	}

	return addr
}

// WaitForReady calls the specified endpoint until it gets a 200
// response or until the context is canceled or the timeout is
// reached.
func WaitForReady(
	ctx context.Context,
	t *testing.T,
	timeout time.Duration,
	endpoint string,
) error {
	t.Helper()

	client := http.Client{
		Timeout: clientTimeout,
	}
	ticker := time.NewTicker(waitForReadyRetryInterval)
	defer ticker.Stop()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err == nil {
			if closeErr := resp.Body.Close(); closeErr != nil {
				return fmt.Errorf("failed to close response body: %w", closeErr)
			}
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-timeoutCtx.Done():
			return fmt.Errorf("timeout waiting for endpoint: %w", timeoutCtx.Err())
		case <-ticker.C:
		}
	}
}
