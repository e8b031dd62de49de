package sysinfo

import (
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// Snapshot is an immutable view of the resources available to the process at
// the moment Probe was called. Callers cache it as needed; the probe does not.
type Snapshot struct {
	TotalRAMMB     int
	AvailableRAMMB int
	CPUPhysical    int
	CPULogical     int
	CPUMHz         float64
	DiskFreeMB     int
	Accelerator    bool
	AcceleratorMB  int
}

// Quality buckets devices the way the mobile clients do; the selector uses it
// only as a tie-break signal.
type Quality string

const (
	QualityLow     Quality = "low"
	QualityMedium  Quality = "medium"
	QualityHigh    Quality = "high"
	QualityPremium Quality = "premium"
)

// Quality derives the device tier from RAM, core count and clock speed.
func (s Snapshot) Quality() Quality {
	switch {
	case s.TotalRAMMB >= 8192 && s.CPUPhysical >= 4 && s.CPUMHz >= 2500:
		return QualityPremium
	case s.TotalRAMMB >= 4096 && s.CPUPhysical >= 2 && s.CPUMHz >= 2000:
		return QualityHigh
	case s.TotalRAMMB >= 2048 && s.CPUPhysical >= 2 && s.CPUMHz >= 1500:
		return QualityMedium
	default:
		return QualityLow
	}
}

// Probe collects current memory, CPU, disk and accelerator information.
// Accelerator detection fails soft: absence yields Accelerator=false, never
// an error. Memory probing failures are the only hard error.
func Probe() (Snapshot, error) {
	var snap Snapshot

	vm, err := mem.VirtualMemory()
	if err != nil {
		return snap, err
	}
	snap.TotalRAMMB = int(vm.Total / (1024 * 1024))
	snap.AvailableRAMMB = int(vm.Available / (1024 * 1024))

	if n, err := cpu.Counts(false); err == nil && n > 0 {
		snap.CPUPhysical = n
	} else {
		snap.CPUPhysical = 1
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		snap.CPULogical = n
	} else {
		snap.CPULogical = snap.CPUPhysical
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		snap.CPUMHz = infos[0].Mhz
	}
	if du, err := disk.Usage("/"); err == nil {
		snap.DiskFreeMB = int(du.Free / (1024 * 1024))
	}

	snap.Accelerator, snap.AcceleratorMB = detectAccelerator()
	return snap, nil
}

// detectAccelerator reports NVIDIA GPU presence and total memory in MB.
// Any failure along the way means "no accelerator".
func detectAccelerator() (bool, int) {
	if _, err := os.Stat("/dev/nvidia0"); err != nil {
		if _, err := exec.LookPath("nvidia-smi"); err != nil {
			return false, 0
		}
	}
	out, err := exec.Command("nvidia-smi", "--query-gpu=memory.total", "--format=csv,noheader,nounits").Output()
	if err != nil {
		return false, 0
	}
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	mb, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || mb <= 0 {
		// Device node present but memory unknown; report presence only.
		return true, 0
	}
	return true, mb
}
