package catalog

import (
	"testing"

	"assistd/internal/sysinfo"
)

func snapWithRAM(mb int) sysinfo.Snapshot {
	return sysinfo.Snapshot{TotalRAMMB: mb * 2, AvailableRAMMB: mb, CPUPhysical: 4, CPULogical: 8, CPUMHz: 2600}
}

func TestSelectEmptyCatalog(t *testing.T) {
	s := NewSelector([]Descriptor{})
	_, err := s.Select(snapWithRAM(8192), Request{Domain: DomainGeneral})
	if err == nil || !IsNoViableModel(err) {
		t.Fatalf("expected NoViableModel, got %v", err)
	}
}

func TestSelectNothingFits(t *testing.T) {
	s := NewSelector(nil)
	_, err := s.Select(snapWithRAM(256), Request{Domain: DomainMedical})
	if err == nil || !IsResourceInsufficient(err) {
		t.Fatalf("expected ResourceInsufficient, got %v", err)
	}
}

func TestSelectBoundaryExcludesExactMinusOne(t *testing.T) {
	s := NewSelector([]Descriptor{
		{ID: "big", RAMRequirementMB: 2048, Capabilities: []Capability{CapText}},
		{ID: "small", RAMRequirementMB: 512, Capabilities: []Capability{CapText}},
	})
	chain, err := s.Select(snapWithRAM(2047), Request{Domain: DomainGeneral})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for _, d := range chain {
		if d.ID == "big" {
			t.Fatalf("descriptor over the RAM line must be excluded from the chain")
		}
	}
	if chain[0].ID != "small" {
		t.Fatalf("expected small as primary, got %s", chain[0].ID)
	}
}

func TestSelectAffinityWins(t *testing.T) {
	s := NewSelector(nil)
	chain, err := s.Select(snapWithRAM(8192), Request{Domain: DomainMedical})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !chain[0].HasAffinity(DomainMedical) {
		t.Fatalf("primary %s should carry the medical affinity", chain[0].ID)
	}
}

func TestSelectAccuracyPrefersLargest(t *testing.T) {
	s := NewSelector(nil)
	fast, err := s.Select(snapWithRAM(8192), Request{Domain: DomainGeneral})
	if err != nil {
		t.Fatalf("select fast: %v", err)
	}
	acc, err := s.Select(snapWithRAM(8192), Request{Domain: DomainGeneral, PreferAccuracy: true})
	if err != nil {
		t.Fatalf("select accurate: %v", err)
	}
	if acc[0].RAMRequirementMB < fast[0].RAMRequirementMB {
		t.Fatalf("accuracy primary %s smaller than speed primary %s", acc[0].ID, fast[0].ID)
	}
}

func TestSelectHighComplexityBiasesLarge(t *testing.T) {
	s := NewSelector(nil)
	low, _ := s.Select(snapWithRAM(8192), Request{Domain: DomainGeneral, Complexity: "low"})
	high, _ := s.Select(snapWithRAM(8192), Request{Domain: DomainGeneral, Complexity: "high"})
	if high[0].RAMRequirementMB < low[0].RAMRequirementMB {
		t.Fatalf("high complexity should not pick a smaller primary (%s vs %s)", high[0].ID, low[0].ID)
	}
}

func TestSelectForceIDFits(t *testing.T) {
	s := NewSelector(nil)
	chain, err := s.Select(snapWithRAM(8192), Request{Domain: DomainGeneral, ForceID: "gemma3n-e2b"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if chain[0].ID != "gemma3n-e2b" {
		t.Fatalf("forced id not primary: %s", chain[0].ID)
	}
	if len(chain) < 2 {
		t.Fatalf("forced selection must keep the fallback chain")
	}
}

func TestSelectForceIDTooBig(t *testing.T) {
	s := NewSelector(nil)
	_, err := s.Select(snapWithRAM(1024), Request{Domain: DomainGeneral, ForceID: "gemma3n-e4b"})
	if err == nil || !IsResourceInsufficient(err) {
		t.Fatalf("expected ResourceInsufficient for oversized forced model, got %v", err)
	}
}

func TestSelectForceIDUnknown(t *testing.T) {
	s := NewSelector(nil)
	_, err := s.Select(snapWithRAM(8192), Request{Domain: DomainGeneral, ForceID: "nope"})
	if err == nil || !IsModelNotFound(err) {
		t.Fatalf("expected ModelNotFound, got %v", err)
	}
}

func TestSelectMultimodalNeedsCapabilities(t *testing.T) {
	s := NewSelector(nil)
	chain, err := s.Select(snapWithRAM(8192), Request{Domain: DomainMultimodal, NeedImage: true})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for _, d := range chain {
		if !d.HasCapability(CapImage) {
			t.Fatalf("chain entry %s lacks image capability", d.ID)
		}
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	s := NewSelector(nil)
	req := Request{Domain: DomainAgriculture, Complexity: "medium"}
	first, err := s.Select(snapWithRAM(4096), req)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := s.Select(snapWithRAM(4096), req)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("chain length changed")
		}
		for j := range again {
			if again[j].ID != first[j].ID {
				t.Fatalf("chain order changed at %d: %s vs %s", j, again[j].ID, first[j].ID)
			}
		}
	}
}
