package app

import "golang.org/x/sys/unix"

// fdSet wraps unix.FdSet with the set/clear/isset helpers the raw
// struct doesn't provide, for building the readiness wait's read-set
// each tick.
type fdSet struct {
	unix.FdSet
}

const fdBits = 64 // unix.FdSet.Bits is an array of int64 words on linux

func (s *fdSet) zero() { s.FdSet = unix.FdSet{} }

func (s *fdSet) set(fd int) {
	s.Bits[fd/fdBits] |= 1 << uint(fd%fdBits)
}

func (s *fdSet) isSet(fd int) bool {
	return s.Bits[fd/fdBits]&(1<<uint(fd%fdBits)) != 0
}
