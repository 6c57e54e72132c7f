// Package shell is the line-oriented command dispatcher.
//
// Each input line is checked (at most 1024 characters, printable ASCII and
// spaces), split on runs of spaces and dispatched by its first word. A
// handler authorizes against the session stack, performs the catalog or
// directory operation and writes any output. When the handler succeeds the
// line is appended to the command ledger under the user on top of the stack,
// with password arguments masked.
//
// Every failure is reported to the operator as the single word "Invalid";
// the underlying error, with its model.ErrorCode, is logged at debug level.
package shell
