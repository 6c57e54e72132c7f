package account

import (
	"github.com/roach88/bookstore/internal/model"
)

// Frame is one login: a user snapshot and that login's pending catalog selection.
type Frame struct {
	SessionID string
	User      model.User
	Selection string // ISBN, "" when nothing is selected
}

// Stack is the session stack owned by one execution context.
// It is never empty: the bottom frame is the anonymous user and cannot be popped.
type Stack struct {
	frames []Frame
	ids    SessionIDGenerator
}

// NewStack creates a stack holding only the anonymous frame.
// A nil ids falls back to UUIDv7Generator.
func NewStack(anonymous model.User, ids SessionIDGenerator) *Stack {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	s := &Stack{ids: ids}
	s.frames = append(s.frames, Frame{SessionID: ids.Generate(), User: anonymous})
	return s
}

// Push opens a new frame for u with no selection.
func (s *Stack) Push(u model.User) Frame {
	f := Frame{SessionID: s.ids.Generate(), User: u}
	s.frames = append(s.frames, f)
	return f
}

// Pop closes the top frame. The anonymous floor is never popped.
func (s *Stack) Pop() (Frame, error) {
	if len(s.frames) <= 1 {
		return Frame{}, model.Errorf(model.CodeStackUnderflow, "no session to end")
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top, nil
}

// Top returns the current frame.
func (s *Stack) Top() Frame {
	return s.frames[len(s.frames)-1]
}

// Depth returns the number of frames including the anonymous floor.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Frames returns a copy of every frame, bottom first.
func (s *Stack) Frames() []Frame {
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// Contains reports whether any frame belongs to userID.
func (s *Stack) Contains(userID string) bool {
	for _, f := range s.frames {
		if f.User.ID == userID {
			return true
		}
	}
	return false
}

// Authorize checks the top frame's tier against required and returns the
// capability that mutating operations demand.
func (s *Stack) Authorize(required model.Privilege) (Grant, error) {
	top := s.Top()
	if top.User.Privilege < required {
		return Grant{}, model.Errorf(model.CodeInsufficientPrivilege,
			"%s has %s, need %s", top.User.ID, top.User.Privilege, required)
	}
	return Grant{stack: s, tier: top.User.Privilege, userID: top.User.ID}, nil
}

// Selection returns the top frame's selected ISBN.
func (s *Stack) Selection() string {
	return s.Top().Selection
}

// Select sets the top frame's selected ISBN.
func (s *Stack) Select(isbn string) {
	s.frames[len(s.frames)-1].Selection = isbn
}

// RenameSelections rewrites every frame selecting oldISBN to select newISBN
// and returns how many frames changed.
func (s *Stack) RenameSelections(oldISBN, newISBN string) int {
	n := 0
	for i := range s.frames {
		if s.frames[i].Selection == oldISBN && oldISBN != "" {
			s.frames[i].Selection = newISBN
			n++
		}
	}
	return n
}
