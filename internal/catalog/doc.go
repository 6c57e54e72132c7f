// Package catalog maintains the book table and its three secondary indices.
//
// The primary table maps ISBN to the JSON record. The secondary indices map a
// field value to the ISBN that carries it:
//   - name_index:    one entry per book, including the empty name of a stub
//   - author_index:  one entry per book, including the empty author of a stub
//   - keyword_index: one entry per keyword token; an empty keyword field has none
//
// Every mutation is staged as a Commit (old snapshot, new snapshot). The
// Commit turns into an ordered op list, secondary removes and inserts first
// and the primary replace last, and the list reaches the store in a single
// Apply call.
//
// Lookups by secondary field return books in ascending ISBN order, which is
// the value order the store yields for one key.
package catalog
