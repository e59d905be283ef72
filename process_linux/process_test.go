//go:build linux

package process_linux

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"gosplit/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStat(t *testing.T) {
	stat := "4242 (Mugen (Engine) x) S 1 4242 4242 0 -1 4194560 100 0 0 0 5 3 0 0 20 0 12 0 987654 123456789 1000 18446744073709551615\n"

	st, err := parseStat([]byte(stat))
	require.NoError(t, err)
	assert.Equal(t, "S", st.State)
	assert.Equal(t, uint64(987654), st.StartTime)

	_, err = parseStat([]byte("4242 Mugen S 1"))
	assert.Error(t, err)

	_, err = parseStat([]byte("4242 (Mugen) S 1 2 3"))
	assert.Error(t, err)
}

func TestMatchesName(t *testing.T) {
	const name = "MugenEngine-Win64-Shipping.exe"

	tests := []struct {
		name string
		info process.ProcessInfo
		want bool
	}{
		{name: "comm", info: process.ProcessInfo{Name: name}, want: true},
		{name: "truncated comm", info: process.ProcessInfo{Name: name[:commLen]}, want: true},
		{name: "exe link", info: process.ProcessInfo{Name: "x", Exe: "/opt/game/mugenengine-win64-shipping.exe"}, want: true},
		{name: "wine argv0", info: process.ProcessInfo{Name: "wine64-preloader", Cmdline: []string{`Z:\games\Mugen\Binaries\Win64\MugenEngine-Win64-Shipping.exe`, "-dx12"}}, want: true},
		{name: "other", info: process.ProcessInfo{Name: "bash", Exe: "/usr/bin/bash", Cmdline: []string{"bash"}}, want: false},
		{name: "prefix only", info: process.ProcessInfo{Name: "MugenEngine"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesName(&tt.info, name))
		})
	}
}

func TestSplitCmdline(t *testing.T) {
	assert.Equal(t, []string{"a", "", "b"}, splitCmdline([]byte("a\x00\x00b\x00\x00")))
	assert.Equal(t, []string{"a", "b"}, splitCmdline([]byte("a\x00b\x00")))
	assert.Nil(t, splitCmdline(nil))
}

func writeFakeProc(t *testing.T, root string, pid int, comm string, cmdline string) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comm"), []byte(comm+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), []byte(cmdline), 0644))
}

func TestFindProcessByName(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 4100900, "MugenEngine-Win", "MugenEngine-Win64-Shipping.exe\x00")
	writeFakeProc(t, root, 4100300, "wine64-preload", `C:\Mugen\MugenEngine-Win64-Shipping.exe`+"\x00")
	writeFakeProc(t, root, 4100500, "bash", "bash\x00")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "self"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "uptime"), []byte("1 1"), 0644))

	f := &LinuxProcessFinder{root: root}
	found, err := f.FindProcessByName("MugenEngine-Win64-Shipping.exe")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, process.ProcessID(4100300), found[0].PID)
	assert.Equal(t, process.ProcessID(4100900), found[1].PID)

	found, err = f.FindProcessByName("missing")
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = f.FindProcessByName("")
	assert.Error(t, err)
}

func TestAttachNotFound(t *testing.T) {
	a := &LinuxAttacher{Finder: &LinuxProcessFinder{root: t.TempDir()}}

	_, err := a.Attach("MugenEngine-Win64-Shipping.exe")
	assert.True(t, errors.Is(err, process.ErrProcessNotFound))
}

func TestOpenSelf(t *testing.T) {
	p, err := NewWithPID(process.ProcessID(os.Getpid()))
	require.NoError(t, err)
	defer p.Close()

	assert.True(t, p.IsOpen())

	exe, err := os.Executable()
	require.NoError(t, err)
	exe, err = filepath.EvalSymlinks(exe)
	require.NoError(t, err)

	base, err := p.GetModuleAddress(filepath.Base(exe))
	require.NoError(t, err)
	assert.NotZero(t, base)
	size, err := p.GetModuleSize(filepath.Base(exe))
	require.NoError(t, err)
	assert.NotZero(t, size)

	_, err = p.GetModuleAddress("not-a-module.so")
	assert.True(t, errors.Is(err, process.ErrModuleNotFound))

	_, err = p.ReadMemory(0x1000, 1)
	assert.True(t, errors.Is(err, process.ErrAddressNotMapped))

	require.NoError(t, p.Close())
	assert.False(t, p.IsOpen())
	_, err = p.ReadMemory(base, 1)
	assert.True(t, errors.Is(err, process.ErrProcessNotOpen))
}

func TestOpenMissingPID(t *testing.T) {
	_, err := NewWithPID(process.ProcessID(1 << 30))
	assert.Error(t, err)
}

func TestUnmappedReadsRefreshMapsSparingly(t *testing.T) {
	p, err := NewWithPID(process.ProcessID(os.Getpid()))
	require.NoError(t, err)
	defer p.Close()
	lp := p.(*LinuxProcess)

	const hole = process.ProcessMemoryAddress(0x20000)

	fresh := time.Now()
	lp.mu.Lock()
	lp.lastRefresh = fresh
	lp.mu.Unlock()

	// A page-by-page scan over a hole must not re-read the maps for every page
	for i := 0; i < 64; i++ {
		_, err := p.ReadMemory(hole+process.ProcessMemoryAddress(i*0x1000), 1)
		require.True(t, errors.Is(err, process.ErrAddressNotMapped))
	}
	lp.mu.Lock()
	assert.Equal(t, fresh, lp.lastRefresh)
	lp.lastRefresh = fresh.Add(-time.Second)
	lp.mu.Unlock()

	_, err = p.ReadMemory(hole, 1)
	assert.True(t, errors.Is(err, process.ErrAddressNotMapped))
	lp.mu.Lock()
	assert.True(t, lp.lastRefresh.After(fresh), "a stale map is refreshed on a miss")
	lp.mu.Unlock()
}
