package process

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ReadPath reads a value of type T at the end of a pointer path.
// It starts at base, adds the first offset, reads a pointer, adds the next offset, reads a pointer, etc.
// The last offset is added to the final pointer, and then T is read from that address.
// If offsets is empty, it reads T from base.
func ReadPath[T any](r MemoryReader, base ProcessMemoryAddress, offsets ...ProcessMemorySize) (T, error) {
	var zero T

	addr, err := WalkPath(r, base, offsets...)
	if err != nil {
		return zero, err
	}

	val, err := Read[T](r, addr)
	if err != nil {
		return zero, fmt.Errorf("failed to read final value at 0x%x: %w", uint64(addr), err)
	}

	return val, nil
}

// WalkPath follows the pointer path like ReadPath and returns the final address without reading it
func WalkPath(r MemoryReader, base ProcessMemoryAddress, offsets ...ProcessMemorySize) (ProcessMemoryAddress, error) {
	currentAddr := base

	// Every offset but the last names a pointer to dereference
	for i := 0; i < len(offsets)-1; i++ {
		ptrAddr := currentAddr + ProcessMemoryAddress(offsets[i])

		ptrVal, err := ReadPOINTER(r, ptrAddr)
		if err != nil {
			return 0, fmt.Errorf("failed to read pointer at offset %d (addr 0x%x): %w", i, uint64(ptrAddr), err)
		}

		if ptrVal == 0 {
			return 0, fmt.Errorf("pointer at offset %d (addr 0x%x) is null: %w", i, uint64(ptrAddr), ErrInvalidPointer)
		}

		currentAddr = ptrVal
	}

	if len(offsets) > 0 {
		currentAddr += ProcessMemoryAddress(offsets[len(offsets)-1])
	}

	return currentAddr, nil
}

// Read reads a single fixed-size little-endian value of type T from memory
func Read[T any](r MemoryReader, addr ProcessMemoryAddress) (T, error) {
	var t T
	size := binary.Size(t)
	if size < 0 {
		return t, fmt.Errorf("type %T has no fixed size", t)
	}
	if size == 0 {
		return t, nil
	}

	data, err := r.ReadMemory(addr, ProcessMemorySize(size))
	if err != nil {
		return t, err
	}

	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &t); err != nil {
		return t, fmt.Errorf("decode %T at 0x%x: %w", t, uint64(addr), err)
	}
	return t, nil
}
