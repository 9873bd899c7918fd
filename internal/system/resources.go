package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// BatchWorkers picks how many thumbnails may render at once. It starts from the
// logical CPU count and lowers it so that every worker can hold two canvases of
// maxPixels in the memory currently available.
func BatchWorkers(maxPixels int) int {
	workers, err := cpu.Counts(true)
	if err != nil || workers < 1 {
		workers = runtime.NumCPU()
	}

	if maxPixels > 0 {
		if vm, err := mem.VirtualMemory(); err == nil && vm.Available > 0 {
			perJob := uint64(maxPixels) * 4 * 2
			byMem := int(vm.Available / perJob)
			if byMem < 1 {
				byMem = 1
			}
			if byMem < workers {
				workers = byMem
			}
		}
	}
	return workers
}
