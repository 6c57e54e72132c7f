package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// slotFile is a file of fixed-size slots with the record count in slot 0.
type slotFile struct {
	f     *os.File
	size  int
	count int64
	sync  bool
}

func openSlotFile(path string, size int, sync bool) (*slotFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s := &slotFile{f: f, size: size, sync: sync}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		if err := s.writeCount(0); err != nil {
			f.Close()
			return nil, err
		}
		return s, nil
	}

	count, err := s.readCount()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if need := (count + 1) * int64(size); info.Size() < need {
		f.Close()
		return nil, fmt.Errorf("%s: count %d needs %d bytes, file has %d", path, count, need, info.Size())
	}
	s.count = count
	return s, nil
}

func (s *slotFile) readCount() (int64, error) {
	var buf [8]byte
	if _, err := s.f.ReadAt(buf[:], 0); err != nil {
		return 0, fmt.Errorf("read count: %w", err)
	}
	n := binary.LittleEndian.Uint64(buf[:])
	if n > 1<<40 {
		return 0, fmt.Errorf("implausible record count %d", n)
	}
	return int64(n), nil
}

func (s *slotFile) writeCount(n int64) error {
	slot := make([]byte, s.size)
	binary.LittleEndian.PutUint64(slot, uint64(n))
	if _, err := s.f.WriteAt(slot, 0); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	return nil
}

// append writes slot into position count+1, then the new count, and
// returns the record's sequence number.
func (s *slotFile) append(slot []byte) (int64, error) {
	if len(slot) != s.size {
		return 0, fmt.Errorf("slot is %d bytes, want %d", len(slot), s.size)
	}
	seq := s.count + 1
	if _, err := s.f.WriteAt(slot, seq*int64(s.size)); err != nil {
		return 0, fmt.Errorf("write record %d: %w", seq, err)
	}
	if err := s.writeCount(seq); err != nil {
		return 0, err
	}
	if s.sync {
		if err := s.f.Sync(); err != nil {
			return 0, fmt.Errorf("sync: %w", err)
		}
	}
	s.count = seq
	return seq, nil
}

// read returns slot seq, 1 <= seq <= count.
func (s *slotFile) read(seq int64) ([]byte, error) {
	slot := make([]byte, s.size)
	if _, err := s.f.ReadAt(slot, seq*int64(s.size)); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("record %d truncated: %w", seq, err)
		}
		return nil, fmt.Errorf("read record %d: %w", seq, err)
	}
	return slot, nil
}

func (s *slotFile) close() error {
	if s == nil || s.f == nil {
		return nil
	}
	return s.f.Close()
}
