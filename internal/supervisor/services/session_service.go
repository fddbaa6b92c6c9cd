// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package services

import (
	"context"
	"errors"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/pollsync/internal/transport"
)

// SessionRunner matches engine.Session's Run method.
type SessionRunner interface {
	Run(ctx context.Context) error
}

// SessionService runs a poll session under supervision.
//
// A session cannot be reopened once closed, so a session that stopped
// because it was closed is reported to the supervisor as
// suture.ErrDoNotRestart. Any other error is returned as-is and the
// supervisor's failure policy applies.
//
//	session := engine.NewSession(cfg)
//	tree.AddSessionService(services.NewSessionService(session))
type SessionService struct {
	session SessionRunner
	name    string
}

// NewSessionService wraps session.
func NewSessionService(session SessionRunner) *SessionService {
	return &SessionService{
		session: session,
		name:    "poll-session",
	}
}

// Serve implements suture.Service.
func (s *SessionService) Serve(ctx context.Context) error {
	err := s.session.Run(ctx)
	if errors.Is(err, transport.ErrClosed) {
		return suture.ErrDoNotRestart
	}
	return err
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *SessionService) String() string {
	return s.name
}
