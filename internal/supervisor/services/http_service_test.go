// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// fakeHTTPServer is a scripted HTTPServer.
type fakeHTTPServer struct {
	listenErr   error
	shutdownErr error
	block       bool

	listens   atomic.Int32
	shutdowns atomic.Int32
	started   chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
}

func newFakeHTTPServer(block bool) *fakeHTTPServer {
	return &fakeHTTPServer{
		block:   block,
		started: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	f.listens.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	if f.block {
		<-f.stop
		return http.ErrServerClosed
	}
	return nil
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	f.stopOnce.Do(func() { close(f.stop) })
	return f.shutdownErr
}

func (f *fakeHTTPServer) waitStarted(t *testing.T) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
}

func TestStatusServerService_Interface(t *testing.T) {
	var _ suture.Service = (*StatusServerService)(nil)
}

func TestNewStatusServerService_DefaultTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Second} {
		svc := NewStatusServerService(newFakeHTTPServer(false), timeout)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("timeout %v: shutdownTimeout = %v, want 10s", timeout, svc.shutdownTimeout)
		}
	}
	if got := NewStatusServerService(newFakeHTTPServer(false), 0).String(); got != "status-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestStatusServerService_Serve(t *testing.T) {
	t.Run("shuts down on cancellation", func(t *testing.T) {
		server := newFakeHTTPServer(true)
		svc := NewStatusServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		server.waitStarted(t)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
		if server.shutdowns.Load() != 1 {
			t.Errorf("Shutdown calls = %d, want 1", server.shutdowns.Load())
		}
	})

	t.Run("listener failure is returned", func(t *testing.T) {
		bindErr := errors.New("bind: address already in use")
		server := newFakeHTTPServer(false)
		server.listenErr = bindErr

		err := NewStatusServerService(server, time.Second).Serve(context.Background())
		if !errors.Is(err, bindErr) {
			t.Errorf("Serve() = %v, want wrapped bind error", err)
		}
	})

	t.Run("shutdown failure is returned", func(t *testing.T) {
		shutdownErr := errors.New("shutdown timeout")
		server := newFakeHTTPServer(true)
		server.shutdownErr = shutdownErr
		svc := NewStatusServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		server.waitStarted(t)
		cancel()

		if err := <-errCh; !errors.Is(err, shutdownErr) {
			t.Errorf("Serve() = %v, want shutdown error", err)
		}
	})
}

func TestStatusServerService_UnderSupervisor(t *testing.T) {
	server := newFakeHTTPServer(true)

	sup := suture.New("test", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(NewStatusServerService(server, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	server.waitStarted(t)
	cancel()
	<-errCh

	if server.shutdowns.Load() < 1 {
		t.Error("Shutdown was not called")
	}
}
