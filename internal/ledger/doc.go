// Package ledger keeps the two append-only histories: trades and commands.
//
// Each history is one binary file of fixed-size slots. Slot 0 holds the
// record count as a little-endian uint64; record i (1-based) lives in slot i.
// Appending writes slot count+1 and then rewrites slot 0, so a crash between
// the two writes loses at most the record being appended.
//
// File layout for a ledger opened with prefix "data/log":
//
//	data/log_trade.bin  16-byte slots:   direction(1) pad(7) amount(8)
//	data/log_cmd.bin    1064-byte slots: userLen(2) cmdLen(2) pad(4) user(32) command(1024)
//
// Readers take the count once per call, so iterators are finite and a
// restarted iterator sees records appended since the previous run.
package ledger
