package domain

import (
	"context"
	"errors"
)

// ErrMissingCode rejects a callback that carries no authorization
// code. No outbound call is made.
var ErrMissingCode = errors.New("no authorization code provided")

// Identity is the verified remote user, as stored in the web session.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// EnrollmentStatus is the tri-state outcome of the membership add.
type EnrollmentStatus string

const (
	EnrollmentCreated       EnrollmentStatus = "created"
	EnrollmentAlreadyMember EnrollmentStatus = "already_member"
	EnrollmentFailed        EnrollmentStatus = "failed"
)

// EnrollmentResult is logged and consumed immediately; never persisted.
type EnrollmentResult struct {
	Status EnrollmentStatus
	Reason string
}

// Succeeded reports whether the user is (or already was) a member.
func (r EnrollmentResult) Succeeded() bool {
	return r.Status == EnrollmentCreated || r.Status == EnrollmentAlreadyMember
}

// Service runs the synchronous half of the verification pipeline:
// token exchange, identity fetch, membership enrollment, role-grant
// hand-off. The role grant itself completes asynchronously in the bot
// runtime after Verify returns.
type Service interface {
	Verify(ctx context.Context, code string) (*Identity, error)
}
