package autosplitter

import (
	"testing"

	"gosplit/process"
	"gosplit/process_blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingResolver(calls *int) Resolver {
	return ResolverFunc(func(r process.MemoryReader, m Module) (Addresses, error) {
		*calls++
		return DefaultResolver().Resolve(r, m)
	})
}

func TestInitWithoutProcess(t *testing.T) {
	a := newTestAutosplitter(process_blob.NewBlobAttacher(), &fakeTimer{})

	assert.False(t, a.Init())
	assert.Equal(t, Unattached, a.Phase())
	assert.Nil(t, a.Game())

	// Nothing to sample
	a.Update()
	_, ok := a.LoadingPair()
	assert.False(t, ok)
}

func TestInitResolvesOnce(t *testing.T) {
	attacher := process_blob.NewBlobAttacher()
	_, flag := newGame(t, attacher, 100, gameBase)

	calls := 0
	a := newTestAutosplitter(attacher, &fakeTimer{}, WithResolver(countingResolver(&calls)))

	for i := 0; i < 3; i++ {
		require.True(t, a.Init())
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, attacher.Attaches())
	assert.Equal(t, Ready, a.Phase())

	game := a.Game()
	require.NotNil(t, game)
	require.NotNil(t, game.Addresses)
	assert.Equal(t, flag, game.Addresses.IsLoading)
	assert.Equal(t, Module{Name: gameName, Base: gameBase, Size: imageSize}, game.Module)
}

func TestInitMissingSignatureRetries(t *testing.T) {
	attacher := process_blob.NewBlobAttacher()
	attacher.Set(gameName, process_blob.NewModuleBlob(1, gameName, gameBase, make([]byte, imageSize)))

	calls := 0
	a := newTestAutosplitter(attacher, &fakeTimer{}, WithResolver(countingResolver(&calls)))

	assert.False(t, a.Init())
	assert.False(t, a.Init())
	assert.Equal(t, Attached, a.Phase())
	assert.Equal(t, 2, calls, "resolution is retried every call")
	assert.Equal(t, 1, attacher.Attaches(), "the process stays attached")
}

func TestInitModuleMissing(t *testing.T) {
	attacher := process_blob.NewBlobAttacher()
	// Running under the right name but without the module mapped
	attacher.Set(gameName, process_blob.NewProcessBlob(gameBase, make([]byte, imageSize)))

	a := newTestAutosplitter(attacher, &fakeTimer{})
	assert.False(t, a.Init())
	assert.Equal(t, Unattached, a.Phase())

	assert.False(t, a.Init())
	assert.Equal(t, 2, attacher.Attaches(), "attach is retried from scratch")
}

func TestInitProcessNamesInOrder(t *testing.T) {
	attacher := process_blob.NewBlobAttacher()
	_, flag := newGame(t, attacher, 1, gameBase)

	a := newTestAutosplitter(attacher, &fakeTimer{}, WithProcessNames("Other.exe", gameName))
	require.True(t, a.Init())
	assert.Equal(t, flag, a.Game().Addresses.IsLoading)
}

func TestProcessLossAndReattach(t *testing.T) {
	attacher := process_blob.NewBlobAttacher()
	blob, _ := newGame(t, attacher, 100, gameBase)

	var phases []Phase
	a := newTestAutosplitter(attacher, &fakeTimer{}, OnPhaseChange(func(p Phase) {
		phases = append(phases, p)
	}))

	require.True(t, a.Init())
	require.NoError(t, blob.WriteUINT8(a.Game().Addresses.IsLoading, 1))
	a.Update()
	loading, _ := a.IsLoading()
	assert.True(t, loading)

	blob.Kill()
	assert.False(t, a.Init())
	assert.Equal(t, Unattached, a.Phase())
	assert.Nil(t, a.Game())
	_, ok := a.LoadingPair()
	assert.False(t, ok, "samples from the dead process are forgotten")

	// The game restarts at a different base, so the old address is stale
	const newBase = process.ProcessMemoryAddress(0x7ff600000000)
	_, newFlag := newGame(t, attacher, 200, newBase)

	require.True(t, a.Init())
	assert.Equal(t, process.ProcessID(200), a.Game().Process.GetPID())
	assert.Equal(t, newFlag, a.Game().Addresses.IsLoading)

	assert.Equal(t, []Phase{Ready, Unattached, Ready}, phases)
}

func TestUpdateSamples(t *testing.T) {
	attacher := process_blob.NewBlobAttacher()
	blob, flag := newGame(t, attacher, 1, gameBase)

	a := newTestAutosplitter(attacher, &fakeTimer{})
	require.True(t, a.Init())

	a.Update()
	pair, ok := a.LoadingPair()
	require.True(t, ok)
	assert.False(t, pair.Old)
	assert.False(t, pair.Current)

	// Any non-zero byte means loading
	require.NoError(t, blob.WriteUINT8(flag, 0x80))
	a.Update()
	pair, _ = a.LoadingPair()
	assert.True(t, pair.ChangedTo(true))
}

func TestUpdateReadFailureIsNotLoading(t *testing.T) {
	attacher := process_blob.NewBlobAttacher()
	newGame(t, attacher, 1, gameBase)

	unmapped := ResolverFunc(func(process.MemoryReader, Module) (Addresses, error) {
		return Addresses{IsLoading: 0x10}, nil
	})
	a := newTestAutosplitter(attacher, &fakeTimer{}, WithResolver(unmapped))
	require.True(t, a.Init())

	a.Update()
	loading, ok := a.IsLoading()
	assert.True(t, ok)
	assert.False(t, loading)
	_, sampled := a.LoadingPair()
	assert.True(t, sampled)
}

func TestDefaultPredicates(t *testing.T) {
	a := newTestAutosplitter(process_blob.NewBlobAttacher(), &fakeTimer{})

	assert.False(t, a.Start())
	assert.False(t, a.Split())
	assert.False(t, a.Reset())
	_, ok := a.GameTime()
	assert.False(t, ok)

	loading, ok := a.IsLoading()
	assert.True(t, ok, "the flag is always reported")
	assert.False(t, loading)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "Unattached", Unattached.String())
	assert.Equal(t, "Attached", Attached.String())
	assert.Equal(t, "Ready", Ready.String())
}
