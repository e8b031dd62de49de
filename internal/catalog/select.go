package catalog

import (
	"fmt"
	"sort"

	"assistd/internal/sysinfo"
)

// Request captures everything the selector needs to rank descriptors.
type Request struct {
	Domain         string
	Complexity     string // low|medium|high
	PreferAccuracy bool
	ForceID        string
	NeedImage      bool
	NeedAudio      bool
}

// Selector ranks catalog entries against probed resources. It is read-only
// after construction and safe for concurrent use.
type Selector struct {
	entries []Descriptor
}

// NewSelector builds a selector over the given entries; nil means Default().
func NewSelector(entries []Descriptor) *Selector {
	if entries == nil {
		entries = Default()
	}
	return &Selector{entries: entries}
}

// List returns a copy of the catalog entries.
func (s *Selector) List() []Descriptor {
	out := make([]Descriptor, len(s.entries))
	copy(out, s.entries)
	return out
}

// ByID resolves a descriptor by identifier.
func (s *Selector) ByID(id string) (Descriptor, bool) {
	for _, d := range s.entries {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Select returns the primary descriptor followed by its fallback chain.
// The chain is never empty on success, and the primary always fits the
// snapshot's available RAM. Pure function of its inputs.
func (s *Selector) Select(snap sysinfo.Snapshot, req Request) ([]Descriptor, error) {
	if len(s.entries) == 0 {
		return nil, ErrNoViableModel("catalog is empty")
	}

	var fitting []Descriptor
	for _, d := range s.entries {
		if d.RAMRequirementMB <= snap.AvailableRAMMB {
			fitting = append(fitting, d)
		}
	}
	if len(fitting) == 0 {
		return nil, ErrResourceInsufficient(fmt.Sprintf(
			"no model fits: %d MB available, smallest requirement %d MB",
			snap.AvailableRAMMB, minRequirement(s.entries)))
	}

	var covering []Descriptor
	for _, d := range fitting {
		if coversRequest(d, req) {
			covering = append(covering, d)
		}
	}
	if len(covering) == 0 {
		return nil, ErrNoViableModel("no fitting model covers the requested capabilities")
	}

	rank(covering, snap, req)

	if req.ForceID != "" {
		forced, ok := s.ByID(req.ForceID)
		if !ok {
			return nil, ErrModelNotFound(req.ForceID)
		}
		if forced.RAMRequirementMB > snap.AvailableRAMMB {
			return nil, ErrResourceInsufficient(fmt.Sprintf(
				"forced model %s needs %d MB, %d MB available",
				forced.ID, forced.RAMRequirementMB, snap.AvailableRAMMB))
		}
		chain := []Descriptor{forced}
		for _, d := range covering {
			if d.ID != forced.ID {
				chain = append(chain, d)
			}
		}
		return chain, nil
	}
	return covering, nil
}

func minRequirement(entries []Descriptor) int {
	min := entries[0].RAMRequirementMB
	for _, d := range entries[1:] {
		if d.RAMRequirementMB < min {
			min = d.RAMRequirementMB
		}
	}
	return min
}

func coversRequest(d Descriptor, req Request) bool {
	if !d.HasCapability(CapText) {
		return false
	}
	if req.NeedImage && !d.HasCapability(CapImage) {
		return false
	}
	if req.NeedAudio && !d.HasCapability(CapAudio) {
		return false
	}
	return true
}

// rank orders descriptors best-first. Tie-break order: domain affinity,
// quantized preference under tight RAM, then size (largest first for
// accuracy-preferring or high-complexity callers, smallest first otherwise),
// then id for determinism.
func rank(ds []Descriptor, snap sysinfo.Snapshot, req Request) {
	wantLarge := req.PreferAccuracy || req.Complexity == "high"
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if am, bm := a.HasAffinity(req.Domain), b.HasAffinity(req.Domain); am != bm {
			return am
		}
		if aq, bq := quantPreferred(a, snap), quantPreferred(b, snap); aq != bq {
			return aq
		}
		if a.RAMRequirementMB != b.RAMRequirementMB {
			if wantLarge {
				return a.RAMRequirementMB > b.RAMRequirementMB
			}
			return a.RAMRequirementMB < b.RAMRequirementMB
		}
		return a.ID < b.ID
	})
}

// quantPreferred reports whether a quantized variant should win the tie when
// available RAM is below 1.5x the descriptor's requirement.
func quantPreferred(d Descriptor, snap sysinfo.Snapshot) bool {
	tight := snap.AvailableRAMMB < d.RAMRequirementMB*3/2
	return tight && d.Quant == Quant4Bit
}
