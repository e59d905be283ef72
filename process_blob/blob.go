// Package process_blob provides a process.Process backed by in-memory regions.
// It stands in for the game in tests and serves saved module dumps offline.
package process_blob

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"gosplit/process"
	"gosplit/process/memory_map"
)

// Region is one contiguous mapped range
type Region struct {
	Address process.ProcessMemoryAddress
	Data    []byte
	Perms   string
	Path    string
}

func (r *Region) end() uint64 {
	return uint64(r.Address) + uint64(len(r.Data))
}

// ProcessBlob is a fake process whose memory is a set of regions
type ProcessBlob struct {
	mu      sync.Mutex
	pid     process.ProcessID
	open    bool
	regions []*Region
}

var _ process.Process = (*ProcessBlob)(nil)

// NewProcessBlob creates an open process with a single anonymous region at baseAddress
func NewProcessBlob(baseAddress process.ProcessMemoryAddress, data []byte) *ProcessBlob {
	p := &ProcessBlob{open: true}
	if len(data) > 0 {
		p.AddRegion(Region{Address: baseAddress, Data: data})
	}
	return p
}

// NewModuleBlob creates an open process whose only region is the image of module name
func NewModuleBlob(pid process.ProcessID, name string, base process.ProcessMemoryAddress, image []byte) *ProcessBlob {
	p := &ProcessBlob{pid: pid, open: true}
	p.AddRegion(Region{Address: base, Data: image, Path: name})
	return p
}

// AddRegion maps another region. Regions must not overlap.
func (p *ProcessBlob) AddRegion(r Region) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r.Perms == "" {
		r.Perms = "rw-p"
	}
	p.regions = append(p.regions, &r)
	sort.Slice(p.regions, func(i, j int) bool {
		return p.regions[i].Address < p.regions[j].Address
	})
}

// Kill simulates the process exiting
func (p *ProcessBlob) Kill() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
}

func (p *ProcessBlob) Open(pid process.ProcessID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pid = pid
	p.open = true
	return nil
}

// Close releases nothing; the blob stays alive until Kill, like a real process outliving its handle
func (p *ProcessBlob) Close() error {
	return nil
}

func (p *ProcessBlob) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *ProcessBlob) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *ProcessBlob) UpdateMemoryMap() error {
	return nil // Regions are static
}

func (p *ProcessBlob) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.findLocked(uint64(addr)) != nil
}

func (p *ProcessBlob) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([]memory_map.MemoryMapItem, 0, len(p.regions))
	for _, r := range p.regions {
		result = append(result, memory_map.MemoryMapItem{
			Address: uint64(r.Address),
			Size:    uint64(len(r.Data)),
			Perms:   r.Perms,
			Path:    r.Path,
		})
	}
	return result, nil
}

func (p *ProcessBlob) findLocked(addr uint64) *Region {
	i := sort.Search(len(p.regions), func(i int) bool {
		return p.regions[i].end() > addr
	})
	if i < len(p.regions) && uint64(p.regions[i].Address) <= addr {
		return p.regions[i]
	}
	return nil
}

// ReadMemory returns a copy of size bytes at addr. Reads may not cross regions.
func (p *ProcessBlob) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return nil, process.ErrProcessNotOpen
	}

	r := p.findLocked(uint64(addr))
	if r == nil {
		return nil, process.ErrAddressNotMapped
	}

	offset := uint64(addr) - uint64(r.Address)
	if uint64(size) > uint64(len(r.Data))-offset {
		return nil, fmt.Errorf("read of %d bytes at %s: %w", uint64(size), addr.ToString(), errors.New("address out of bounds"))
	}

	result := make([]byte, size)
	copy(result, r.Data[offset:offset+uint64(size)])
	return result, nil
}

// WriteUINT8 changes one byte, simulating the game updating its own memory
func (p *ProcessBlob) WriteUINT8(addr process.ProcessMemoryAddress, v uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.findLocked(uint64(addr))
	if r == nil {
		return process.ErrAddressNotMapped
	}
	r.Data[uint64(addr)-uint64(r.Address)] = v
	return nil
}

func (p *ProcessBlob) GetModuleAddress(name string) (process.ProcessMemoryAddress, error) {
	base, _, err := p.moduleRange(name)
	return base, err
}

func (p *ProcessBlob) GetModuleSize(name string) (process.ProcessMemorySize, error) {
	_, size, err := p.moduleRange(name)
	return size, err
}

func (p *ProcessBlob) moduleRange(name string) (process.ProcessMemoryAddress, process.ProcessMemorySize, error) {
	mm, _ := p.GetMemoryMap()
	base, size, ok := memory_map.ModuleRange(name, mm)
	if !ok {
		return 0, 0, fmt.Errorf("%s: %w", name, process.ErrModuleNotFound)
	}
	return process.ProcessMemoryAddress(base), process.ProcessMemorySize(size), nil
}
