package process_blob

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gosplit/process"
	"gosplit/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

const (
	metadataFile  = "metadata.json"
	memoryMapFile = "process_memory_map.json"
	saveChunkSize = 0x10000
)

var log = logger.NewLogger(coloransi.Color(coloransi.Yellow, coloransi.ColorOrange, "dump"))

// DumpModule describes the module a dump was taken from
type DumpModule struct {
	Name string `json:"name"`
	Base uint64 `json:"base"`
	Size uint64 `json:"size"`
}

// DumpMetadata is stored as metadata.json next to the blobs
type DumpMetadata struct {
	PID    process.ProcessID `json:"pid"`
	Module DumpModule        `json:"module"`
}

func blobFileName(dirname string, item memory_map.MemoryMapItem) string {
	return filepath.Join(dirname, fmt.Sprintf("blob_0x%x_%d.bin", item.Address, item.Size))
}

// SaveModule writes the readable parts of the named module to dirname.
// Unreadable chunks are left out; contiguous readable chunks become one blob.
func SaveModule(proc process.Process, dirname string, module string) error {
	base, err := proc.GetModuleAddress(module)
	if err != nil {
		return fmt.Errorf("failed to find module: %w", err)
	}
	size, err := proc.GetModuleSize(module)
	if err != nil {
		return fmt.Errorf("failed to find module size: %w", err)
	}

	if err := os.MkdirAll(dirname, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	log.Infoln("Saving", module, base.ToString(), size.ToString(), "to", dirname)

	// Permissions come from the live map when the backend has one
	liveMap, _ := proc.GetMemoryMap()
	perms := func(addr uint64) string {
		if item := memory_map.FindRegion(addr, liveMap); item != nil {
			return item.Perms
		}
		return "r--p"
	}

	var saved []memory_map.MemoryMapItem
	var run []byte
	var runStart uint64

	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		item := memory_map.MemoryMapItem{
			Address: runStart,
			Size:    uint64(len(run)),
			Perms:   perms(runStart),
			Path:    module,
		}
		if err := os.WriteFile(blobFileName(dirname, item), run, 0644); err != nil {
			return fmt.Errorf("failed to write blob: %w", err)
		}
		saved = append(saved, item)
		run = nil
		return nil
	}

	end := uint64(base) + uint64(size)
	skipped := 0
	for addr := uint64(base); addr < end; addr += saveChunkSize {
		n := uint64(saveChunkSize)
		if end-addr < n {
			n = end - addr
		}

		data, err := proc.ReadMemory(process.ProcessMemoryAddress(addr), process.ProcessMemorySize(n))
		if err != nil {
			skipped++
			if err := flush(); err != nil {
				return err
			}
			continue
		}

		if len(run) == 0 {
			runStart = addr
		}
		run = append(run, data...)
	}
	if err := flush(); err != nil {
		return err
	}

	if len(saved) == 0 {
		return fmt.Errorf("no readable memory in %s", module)
	}

	metadata := DumpMetadata{
		PID:    proc.GetPID(),
		Module: DumpModule{Name: module, Base: uint64(base), Size: uint64(size)},
	}
	if err := writeJSON(filepath.Join(dirname, metadataFile), metadata); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dirname, memoryMapFile), saved); err != nil {
		return err
	}

	log.Infoln("Dump saved:", len(saved), "regions,", skipped, "unreadable chunks skipped")
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadDump loads a directory written by SaveModule as an open ProcessBlob
func LoadDump(dirname string) (*ProcessBlob, DumpMetadata, error) {
	var metadata DumpMetadata
	if err := readJSON(filepath.Join(dirname, metadataFile), &metadata); err != nil {
		return nil, metadata, err
	}

	var mm []memory_map.MemoryMapItem
	if err := readJSON(filepath.Join(dirname, memoryMapFile), &mm); err != nil {
		return nil, metadata, err
	}

	p := &ProcessBlob{pid: metadata.PID, open: true}
	for _, item := range mm {
		data, err := os.ReadFile(blobFileName(dirname, item))
		if err != nil {
			return nil, metadata, fmt.Errorf("failed to read blob: %w", err)
		}
		if uint64(len(data)) != item.Size {
			return nil, metadata, fmt.Errorf("blob 0x%x has %d bytes, expected %d", item.Address, len(data), item.Size)
		}
		path := item.Path
		if path == "" {
			path = metadata.Module.Name
		}
		p.AddRegion(Region{
			Address: process.ProcessMemoryAddress(item.Address),
			Data:    data,
			Perms:   item.Perms,
			Path:    path,
		})
	}

	return p, metadata, nil
}
