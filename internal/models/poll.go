// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package models

import "time"

// Poll is a question with a fixed set of options as returned by the poll server.
// The server is authoritative for every field; the engine never patches a
// single field except for the optimistic like projection.
type Poll struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	CreatorID       int64      `json:"creator_id"`
	CreatorUsername *string    `json:"creator_username,omitempty"`
	CreatedAt       Timestamp  `json:"created_at"`
	UpdatedAt       Timestamp  `json:"updated_at"`
	IsActive        bool       `json:"is_active"`
	ClosesAt        *Timestamp `json:"closes_at,omitempty"`
	Options         []Option   `json:"options"`
	TotalVotes      int        `json:"total_votes"`
	TotalLikes      int        `json:"total_likes"`
	UserVoted       bool       `json:"user_voted"`
	UserLiked       bool       `json:"user_liked"`
}

// Option is one selectable answer of a poll.
type Option struct {
	ID        int64     `json:"id"`
	PollID    int64     `json:"poll_id"`
	Text      string    `json:"text"`
	CreatedAt Timestamp `json:"created_at"`
	VoteCount int       `json:"vote_count"`
}

// Clone returns a deep copy of the poll. The options slice and every pointer
// field are copied so the result shares no memory with p.
func (p *Poll) Clone() Poll {
	c := *p
	if p.Options != nil {
		c.Options = make([]Option, len(p.Options))
		copy(c.Options, p.Options)
	}
	if p.Description != nil {
		d := *p.Description
		c.Description = &d
	}
	if p.CreatorUsername != nil {
		u := *p.CreatorUsername
		c.CreatorUsername = &u
	}
	if p.ClosesAt != nil {
		t := *p.ClosesAt
		c.ClosesAt = &t
	}
	return c
}

// Closed reports whether the poll no longer accepts votes.
func (p *Poll) Closed() bool {
	return !p.IsActive
}

// Option returns the option with the given id.
func (p *Poll) Option(id int64) (Option, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// PollCreatePayload is the body of a create-poll request.
type PollCreatePayload struct {
	Title           string     `json:"title" validate:"required,notblank,max=200"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	Options         []string   `json:"options" validate:"required,min=2,max=20,dive,notblank,max=200"`
	DurationMinutes *int       `json:"duration_minutes,omitempty" validate:"omitempty,min=1"`
	ClosesAt        *time.Time `json:"closes_at,omitempty"`
}

// VoteRequest is the body of a cast-vote request.
type VoteRequest struct {
	PollID   int64 `json:"poll_id"`
	OptionID int64 `json:"option_id"`
}

// VoteResponse is the vote record created by the server.
type VoteResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PollID    int64     `json:"poll_id"`
	OptionID  int64     `json:"option_id"`
	CreatedAt Timestamp `json:"created_at"`
}

// LikeRequest is the body of a toggle-like request.
type LikeRequest struct {
	PollID int64 `json:"poll_id"`
}

// LikeResponse covers both shapes the server returns from a like toggle:
// the created like record, or a message with liked=false when a like was removed.
type LikeResponse struct {
	ID        int64      `json:"id,omitempty"`
	UserID    int64      `json:"user_id,omitempty"`
	PollID    int64      `json:"poll_id,omitempty"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
	Message   string     `json:"message,omitempty"`
	Liked     *bool      `json:"liked,omitempty"`
}

// IsLiked reports whether the toggle left the poll liked by the user.
func (r *LikeResponse) IsLiked() bool {
	if r.Liked != nil {
		return *r.Liked
	}
	return r.ID != 0
}

// Viewer identifies the user a session acts for. UserID zero is anonymous.
type Viewer struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
}

// Authenticated reports whether the viewer is a known user.
func (v Viewer) Authenticated() bool {
	return v.UserID > 0
}

// OutboundEvent is the change notification the client publishes on the
// event stream after a successful mutation.
type OutboundEvent struct {
	Type   string `json:"type"`
	PollID int64  `json:"poll_id,omitempty"`
}

// Event types exchanged on the event stream.
const (
	EventPollUpdated = "poll_updated"
	EventPollClosed  = "poll_closed"
	EventPollDeleted = "poll_deleted"
	EventHeartbeat   = "heartbeat"
)
