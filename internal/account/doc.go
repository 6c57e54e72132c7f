// Package account implements the user directory and the login session stack.
//
// The Directory persists users in the store's users table (id -> JSON record,
// bcrypt password hash). The Stack is the explicit, in-memory session handle:
// an ordered list of frames whose bottom frame is always the anonymous user.
//
// Authorization is capability based. Stack.Authorize returns a Grant only when
// the top frame's tier is high enough; mutating Directory and catalog
// operations take a Grant, and the zero Grant authorizes nothing.
//
// Tier policy that depends on the target of an operation (which tier may
// create which, who may switch user without a password) lives in policy.go and
// is applied by the caller before it asks for a Grant.
package account
