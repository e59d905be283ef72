package autosplitter

import (
	"errors"
	"fmt"

	"gosplit/process"
	"gosplit/signature"
)

var (
	// ErrSignatureNotFound is returned when the module does not contain the signature
	ErrSignatureNotFound = errors.New("signature not found")

	// ErrNoStrategy is returned by an empty ResolverChain
	ErrNoStrategy = errors.New("no resolution strategy")
)

// Module is the scan window of the game's main executable
type Module struct {
	Name string
	Base process.ProcessMemoryAddress
	Size process.ProcessMemorySize
}

// Addresses are the locations found for one attachment. They never change while the process lives.
type Addresses struct {
	// IsLoading holds one byte, non-zero while the game is loading
	IsLoading process.ProcessMemoryAddress
}

// Resolver finds Addresses inside a freshly attached module
type Resolver interface {
	Resolve(r process.MemoryReader, m Module) (Addresses, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(r process.MemoryReader, m Module) (Addresses, error)

func (f ResolverFunc) Resolve(r process.MemoryReader, m Module) (Addresses, error) {
	return f(r, m)
}

// RelativeSignatureResolver finds an instruction by signature and follows the
// 32-bit RIP-relative displacement it encodes.
//
// With the match at m the displacement is read at m+DisplacementOffset and the
// target is the address right after the displacement plus its signed value.
type RelativeSignatureResolver struct {
	Signature          signature.Signature
	DisplacementOffset int64
}

func (s RelativeSignatureResolver) Resolve(r process.MemoryReader, m Module) (Addresses, error) {
	match, ok := s.Signature.ScanRange(r, m.Base, m.Size)
	if !ok {
		return Addresses{}, fmt.Errorf("%s in %s [%s +0x%x]: %w", s.Signature, m.Name, m.Base.ToString(), uint64(m.Size), ErrSignatureNotFound)
	}

	target, err := FollowRelative(r, match.Add(s.DisplacementOffset))
	if err != nil {
		return Addresses{}, err
	}

	return Addresses{IsLoading: target}, nil
}

// FollowRelative reads the little-endian int32 displacement at addr and returns
// the absolute address it points to, relative to the end of the displacement
func FollowRelative(r process.MemoryReader, addr process.ProcessMemoryAddress) (process.ProcessMemoryAddress, error) {
	disp, err := process.ReadINT32(r, addr)
	if err != nil {
		return 0, fmt.Errorf("read displacement at %s: %w", addr.ToString(), err)
	}
	return addr.Add(4 + int64(disp)), nil
}

// PointerPathResolver locates the flag by a fixed pointer path from the module base.
// The last offset is applied without dereferencing.
type PointerPathResolver struct {
	Offsets []process.ProcessMemorySize
}

func (p PointerPathResolver) Resolve(r process.MemoryReader, m Module) (Addresses, error) {
	addr, err := process.WalkPath(r, m.Base, p.Offsets...)
	if err != nil {
		return Addresses{}, fmt.Errorf("pointer path in %s: %w", m.Name, err)
	}
	// The flag must be readable now, or the path is wrong
	if _, err := process.ReadUINT8(r, addr); err != nil {
		return Addresses{}, fmt.Errorf("pointer path in %s ends at unreadable %s: %w", m.Name, addr.ToString(), err)
	}
	return Addresses{IsLoading: addr}, nil
}

// ResolverChain tries each strategy in order; the first success wins
type ResolverChain []Resolver

func (c ResolverChain) Resolve(r process.MemoryReader, m Module) (Addresses, error) {
	if len(c) == 0 {
		return Addresses{}, ErrNoStrategy
	}

	var errs []error
	for _, res := range c {
		addrs, err := res.Resolve(r, m)
		if err == nil {
			return addrs, nil
		}
		errs = append(errs, err)
	}
	return Addresses{}, errors.Join(errs...)
}
