// Package signature finds byte patterns in buffers and in the address space of a live process.
package signature

import (
	"fmt"

	"gosplit/process"
)

const (
	pageSize  = 0x1000
	chunkSize = 0x10000
)

// Signature is a byte pattern with optional wildcard bytes
type Signature struct {
	aob process.AOB
}

// Parse builds a Signature from text such as "89 43 60 8B 05" or "48 8B ?? ?? 05"
func Parse(text string) (Signature, error) {
	aob, err := process.ParseAOB(text)
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature %q: %w", text, err)
	}
	return Signature{aob: aob}, nil
}

// MustParse is Parse for package-level constants
func MustParse(text string) Signature {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

// FromAOB wraps an existing pattern and mask
func FromAOB(aob process.AOB) (Signature, error) {
	if !aob.IsValid() {
		return Signature{}, fmt.Errorf("invalid pattern: %d bytes, %d mask bytes", len(aob.Pattern), len(aob.Mask))
	}
	return Signature{aob: aob}, nil
}

// Len is the pattern length in bytes
func (s Signature) Len() int {
	return len(s.aob.Pattern)
}

func (s Signature) String() string {
	return s.aob.String()
}

// Find returns the offset of the leftmost match in data
func (s Signature) Find(data []byte) (int, bool) {
	pattern, mask := s.aob.Pattern, s.aob.Mask
	if len(pattern) == 0 || len(data) < len(pattern) {
		return 0, false
	}

	for i := 0; i <= len(data)-len(pattern); i++ {
		matched := true
		for j := 0; j < len(pattern); j++ {
			// mask 0 is a wildcard, otherwise only the masked bits are compared
			if mask[j] == 0 {
				continue
			}
			if data[i+j]&mask[j] != pattern[j]&mask[j] {
				matched = false
				break
			}
		}
		if matched {
			return i, true
		}
	}

	return 0, false
}

// ScanRange returns the address of the leftmost match inside [base, base+size) of a process.
// Unreadable pages are skipped. Absence is the only failure signal.
func (s Signature) ScanRange(r process.MemoryReader, base process.ProcessMemoryAddress, size process.ProcessMemorySize) (process.ProcessMemoryAddress, bool) {
	n := s.Len()
	if n == 0 || uint64(size) < uint64(n) {
		return 0, false
	}

	end := uint64(base) + uint64(size)
	if end < uint64(base) {
		// Clamp ranges that wrap the address space
		end = ^uint64(0)
	}

	// carry holds the tail of the previous readable chunk so matches spanning
	// a chunk boundary are still found
	var carry []byte
	var carryAddr uint64

	scan := func(addr uint64, data []byte) (process.ProcessMemoryAddress, bool) {
		window := data
		windowAddr := addr
		if len(carry) > 0 && carryAddr+uint64(len(carry)) == addr {
			window = append(carry, data...)
			windowAddr = carryAddr
		}

		if off, ok := s.Find(window); ok {
			return process.ProcessMemoryAddress(windowAddr + uint64(off)), true
		}

		keep := n - 1
		if keep > len(window) {
			keep = len(window)
		}
		carry = append([]byte(nil), window[len(window)-keep:]...)
		carryAddr = windowAddr + uint64(len(window)-keep)
		return 0, false
	}

	for addr := uint64(base); addr < end; {
		next := alignDown(addr, chunkSize) + chunkSize
		if next > end || next < addr {
			next = end
		}

		data, err := r.ReadMemory(process.ProcessMemoryAddress(addr), process.ProcessMemorySize(next-addr))
		if err == nil {
			if match, ok := scan(addr, data); ok {
				return match, true
			}
			addr = next
			continue
		}

		// Fall back to single pages so one unmapped page does not hide the whole chunk
		for page := addr; page < next; {
			pageEnd := alignDown(page, pageSize) + pageSize
			if pageEnd > next {
				pageEnd = next
			}

			data, err := r.ReadMemory(process.ProcessMemoryAddress(page), process.ProcessMemorySize(pageEnd-page))
			if err != nil {
				carry = nil
			} else if match, ok := scan(page, data); ok {
				return match, true
			}
			page = pageEnd
		}
		addr = next
	}

	return 0, false
}

func alignDown(addr, align uint64) uint64 {
	return addr &^ (align - 1)
}
