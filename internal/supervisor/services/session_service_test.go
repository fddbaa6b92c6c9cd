// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/pollsync/internal/transport"
)

// fakeSession returns errs in order from successive Run calls, then blocks
// until cancelled.
type fakeSession struct {
	runs atomic.Int32
	errs []error
}

func (f *fakeSession) Run(ctx context.Context) error {
	n := int(f.runs.Add(1)) - 1
	if n < len(f.errs) {
		return f.errs[n]
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestSessionService_Interface(t *testing.T) {
	var _ suture.Service = (*SessionService)(nil)
	if got := NewSessionService(&fakeSession{}).String(); got != "poll-session" {
		t.Errorf("String() = %q", got)
	}
}

func TestSessionService_Serve(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"closed session is not restarted", transport.ErrClosed, suture.ErrDoNotRestart},
		{"wrapped close", fmt.Errorf("run: %w", transport.ErrClosed), suture.ErrDoNotRestart},
		{"other errors pass through", boom, boom},
		{"cancellation passes through", context.Canceled, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSessionService(&fakeSession{errs: []error{tt.err}})
			if err := svc.Serve(context.Background()); !errors.Is(err, tt.want) {
				t.Errorf("Serve() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSessionService_RestartPolicy(t *testing.T) {
	t.Run("failure is restarted", func(t *testing.T) {
		session := &fakeSession{errs: []error{errors.New("boom")}}
		sup := suture.New("test", suture.Spec{
			FailureThreshold: 5,
			FailureBackoff:   10 * time.Millisecond,
			Timeout:          time.Second,
		})
		sup.Add(NewSessionService(session))

		ctx, cancel := context.WithCancel(context.Background())
		errCh := sup.ServeBackground(ctx)

		deadline := time.Now().Add(2 * time.Second)
		for session.runs.Load() < 2 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
		<-errCh

		if session.runs.Load() < 2 {
			t.Errorf("runs = %d, want a restart", session.runs.Load())
		}
	})

	t.Run("closed session is not restarted", func(t *testing.T) {
		session := &fakeSession{errs: []error{transport.ErrClosed}}
		sup := suture.New("test", suture.Spec{
			FailureThreshold: 5,
			FailureBackoff:   10 * time.Millisecond,
			Timeout:          time.Second,
		})
		sup.Add(NewSessionService(session))

		ctx, cancel := context.WithCancel(context.Background())
		errCh := sup.ServeBackground(ctx)

		time.Sleep(100 * time.Millisecond)
		cancel()
		<-errCh

		if session.runs.Load() != 1 {
			t.Errorf("runs = %d, want 1", session.runs.Load())
		}
	})
}
