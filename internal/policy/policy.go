// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package policy decides who may create, edit, or delete blog content.
// Decisions depend only on the acting identity, the action, and the owner
// of the target resource, so handlers stay free of permission branching.
package policy

import (
	"github.com/google/uuid"
)

// Identity is an authenticated actor. A nil *Identity is anonymous.
type Identity struct {
	UserID uuid.UUID
	Staff  bool
}

// Action is an operation subject to the policy.
type Action int

const (
	View Action = iota
	CreatePost
	UpdatePost
	DeletePost
	CreateComment
	UpdateComment
	DeleteComment
	ManageCategory
)

var actionNames = map[Action]string{
	View:           "view",
	CreatePost:     "create-post",
	UpdatePost:     "update-post",
	DeletePost:     "delete-post",
	CreateComment:  "create-comment",
	UpdateComment:  "update-comment",
	DeleteComment:  "delete-comment",
	ManageCategory: "manage-category",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Outcome is how a denied request should surface to the client.
type Outcome int

const (
	Allow Outcome = iota
	// Redirect sends the client back to the post listing.
	Redirect
	// Unauthorized means the action needs a signed-in user.
	Unauthorized
	// Forbidden means the signed-in user lacks the role or ownership.
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Decision is the result of evaluating one request.
type Decision struct {
	Outcome Outcome
	Reason  string
}

// Allowed reports whether the action may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

func allow() Decision { return Decision{Outcome: Allow} }

func deny(o Outcome, reason string) Decision {
	return Decision{Outcome: o, Reason: reason}
}

// Evaluate decides whether id may perform action on a resource owned by
// owner. owner is nil for creation actions and for posts whose author
// account was removed; such posts cannot be edited by anyone.
func Evaluate(id *Identity, action Action, owner *uuid.UUID) Decision {
	switch action {
	case View:
		return allow()

	case CreatePost:
		if id == nil || !id.Staff {
			return deny(Redirect, "only staff may write posts")
		}
		return allow()

	case UpdatePost, DeletePost:
		if id == nil {
			return deny(Unauthorized, "sign in to change posts")
		}
		if !owns(id, owner) {
			return deny(Forbidden, "only the author may change this post")
		}
		return allow()

	case CreateComment:
		if id == nil {
			return deny(Forbidden, "sign in to comment")
		}
		return allow()

	case UpdateComment, DeleteComment:
		if id == nil || !owns(id, owner) {
			return deny(Forbidden, "only the author may change this comment")
		}
		return allow()

	case ManageCategory:
		if id == nil {
			return deny(Unauthorized, "sign in to manage categories")
		}
		if !id.Staff {
			return deny(Forbidden, "only staff may manage categories")
		}
		return allow()
	}

	return deny(Forbidden, "unknown action")
}

func owns(id *Identity, owner *uuid.UUID) bool {
	return owner != nil && *owner == id.UserID
}
