package process

import (
	"encoding/binary"
)

// ReadUINT8 reads an unsigned 8-bit integer from the specified address
func ReadUINT8(r MemoryReader, addr ProcessMemoryAddress) (uint8, error) {
	data, err := r.ReadMemory(addr, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// ReadUINT32 reads an unsigned little-endian 32-bit integer from the specified address
func ReadUINT32(r MemoryReader, addr ProcessMemoryAddress) (uint32, error) {
	data, err := r.ReadMemory(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

// ReadINT32 reads a signed little-endian 32-bit integer from the specified address
func ReadINT32(r MemoryReader, addr ProcessMemoryAddress) (int32, error) {
	v, err := ReadUINT32(r, addr)
	return int32(v), err
}

// ReadUINT64 reads an unsigned little-endian 64-bit integer from the specified address
func ReadUINT64(r MemoryReader, addr ProcessMemoryAddress) (uint64, error) {
	data, err := r.ReadMemory(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(data), nil
}

// ReadPOINTER reads a 64-bit pointer value from the specified address
func ReadPOINTER(r MemoryReader, addr ProcessMemoryAddress) (ProcessMemoryAddress, error) {
	v, err := ReadUINT64(r, addr)
	if err != nil {
		return 0, err
	}
	return ProcessMemoryAddress(v), nil
}
