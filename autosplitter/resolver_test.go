package autosplitter

import (
	"encoding/binary"
	"errors"
	"testing"

	"gosplit/process"
	"gosplit/process_blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func module(size int) Module {
	return Module{Name: gameName, Base: gameBase, Size: process.ProcessMemorySize(size)}
}

func TestDefaultResolverForwardDisplacement(t *testing.T) {
	image := gameImage(t, 0x1234, 0x2800)
	blob := process_blob.NewModuleBlob(1, gameName, gameBase, image)

	addrs, err := DefaultResolver().Resolve(blob, module(len(image)))
	require.NoError(t, err)
	assert.Equal(t, gameBase+0x2800, addrs.IsLoading)
}

func TestDefaultResolverBackwardDisplacement(t *testing.T) {
	image := gameImage(t, 0x3000, 0x100)
	blob := process_blob.NewModuleBlob(1, gameName, gameBase, image)

	addrs, err := DefaultResolver().Resolve(blob, module(len(image)))
	require.NoError(t, err)
	assert.Equal(t, gameBase+0x100, addrs.IsLoading)
}

func TestDefaultResolverTargetOutsideModule(t *testing.T) {
	// Globals may live in a separate mapping; the target is not range checked
	image := make([]byte, imageSize)
	copy(image[0x10:], []byte{0x89, 0x43, 0x60, 0x8B, 0x05})
	binary.LittleEndian.PutUint32(image[0x15:], 0x100000)
	blob := process_blob.NewModuleBlob(1, gameName, gameBase, image)

	addrs, err := DefaultResolver().Resolve(blob, module(len(image)))
	require.NoError(t, err)
	assert.Equal(t, gameBase+0x19+0x100000, addrs.IsLoading)
}

func TestDefaultResolverSignatureMissing(t *testing.T) {
	blob := process_blob.NewModuleBlob(1, gameName, gameBase, make([]byte, imageSize))

	_, err := DefaultResolver().Resolve(blob, module(imageSize))
	assert.True(t, errors.Is(err, ErrSignatureNotFound))
}

func TestDefaultResolverDisplacementUnreadable(t *testing.T) {
	// The match ends exactly at the end of the mapping
	image := make([]byte, 0x100)
	copy(image[0x100-5:], []byte{0x89, 0x43, 0x60, 0x8B, 0x05})
	blob := process_blob.NewModuleBlob(1, gameName, gameBase, image)

	_, err := DefaultResolver().Resolve(blob, module(len(image)))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSignatureNotFound))
	assert.True(t, errors.Is(err, process.ErrAddressNotMapped))
}

func TestFollowRelative(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data, uint32(0xFFFFFFF0)) // -16
	blob := process_blob.NewProcessBlob(0x1000, data)

	addr, err := FollowRelative(blob, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(0x1000+4-16), addr)
}

func TestPointerPathResolver(t *testing.T) {
	image := make([]byte, imageSize)
	binary.LittleEndian.PutUint64(image[0x100:], uint64(gameBase+0x2000))
	blob := process_blob.NewModuleBlob(1, gameName, gameBase, image)

	addrs, err := PointerPathResolver{Offsets: []process.ProcessMemorySize{0x100, 0x8}}.Resolve(blob, module(len(image)))
	require.NoError(t, err)
	assert.Equal(t, gameBase+0x2008, addrs.IsLoading)

	// A null pointer on the path fails
	_, err = PointerPathResolver{Offsets: []process.ProcessMemorySize{0x200, 0x8}}.Resolve(blob, module(len(image)))
	assert.True(t, errors.Is(err, process.ErrInvalidPointer))

	// So does a path that ends outside mapped memory
	_, err = PointerPathResolver{Offsets: []process.ProcessMemorySize{0x100, 0x10000}}.Resolve(blob, module(len(image)))
	assert.True(t, errors.Is(err, process.ErrAddressNotMapped))
}

func TestResolverChain(t *testing.T) {
	image := make([]byte, imageSize)
	binary.LittleEndian.PutUint64(image[0x100:], uint64(gameBase+0x2000))
	blob := process_blob.NewModuleBlob(1, gameName, gameBase, image)

	fallback := PointerPathResolver{Offsets: []process.ProcessMemorySize{0x100, 0x8}}

	addrs, err := ResolverChain{DefaultResolver(), fallback}.Resolve(blob, module(len(image)))
	require.NoError(t, err)
	assert.Equal(t, gameBase+0x2008, addrs.IsLoading)

	calls := 0
	counting := ResolverFunc(func(r process.MemoryReader, m Module) (Addresses, error) {
		calls++
		return Addresses{IsLoading: 1}, nil
	})
	addrs, err = ResolverChain{counting, fallback}.Resolve(blob, module(len(image)))
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(1), addrs.IsLoading, "first success wins")
	assert.Equal(t, 1, calls)

	broken := PointerPathResolver{Offsets: []process.ProcessMemorySize{0x200, 0x8}}
	_, err = ResolverChain{DefaultResolver(), broken}.Resolve(blob, module(len(image)))
	assert.True(t, errors.Is(err, ErrSignatureNotFound))
	assert.True(t, errors.Is(err, process.ErrInvalidPointer))

	_, err = ResolverChain{}.Resolve(blob, module(len(image)))
	assert.True(t, errors.Is(err, ErrNoStrategy))
}
