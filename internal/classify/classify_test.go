package classify

import (
	"strings"
	"testing"
)

func TestFactualShortQuestion(t *testing.T) {
	cls, cfg := Classify("O que é malária?")
	if cls != ClassFactual {
		t.Fatalf("class=%s", cls)
	}
	if cfg.MaxNewTokens != 108 {
		t.Fatalf("max_new_tokens=%d want 108", cfg.MaxNewTokens)
	}
	if cfg.Temperature != 0.3 || !cfg.EarlyStop || cfg.MaxWallClockSeconds != 15 {
		t.Fatalf("unexpected factual cfg: %+v", cfg)
	}
}

func TestSingleWordQuestionIsFactual(t *testing.T) {
	cls, _ := Classify("Malária?")
	if cls != ClassFactual {
		t.Fatalf("class=%s want factual", cls)
	}
}

func TestComplexByMarker(t *testing.T) {
	cls, cfg := Classify("Analise vantagens e desvantagens de plantar arroz na estação seca em solos argilosos")
	if cls != ClassComplex {
		t.Fatalf("class=%s want complex", cls)
	}
	if cfg.EarlyStop {
		t.Fatalf("complex queries must not early-stop")
	}
	if cfg.MaxWallClockSeconds != 90 {
		t.Fatalf("wall clock=%v", cfg.MaxWallClockSeconds)
	}
}

func TestComplexByLength(t *testing.T) {
	words := make([]string, 21)
	for i := range words {
		words[i] = "palavra"
	}
	cls, _ := Classify(strings.Join(words, " "))
	if cls != ClassComplex {
		t.Fatalf("class=%s want complex for 21 plain words", cls)
	}
}

func TestCreativeMarkerWinsOverComplex(t *testing.T) {
	cls, cfg := Classify("Crie uma história sobre a colheita e analise seus personagens")
	if cls != ClassCreative {
		t.Fatalf("class=%s want creative", cls)
	}
	if cfg.Temperature != 0.9 || cfg.TopK != 80 {
		t.Fatalf("unexpected creative cfg: %+v", cfg)
	}
}

func TestStandardDefault(t *testing.T) {
	cls, cfg := Classify("Preciso melhorar a irrigação da minha horta este mês")
	if cls != ClassStandard {
		t.Fatalf("class=%s want standard", cls)
	}
	if cfg.MaxWallClockSeconds != 45 {
		t.Fatalf("wall clock=%v", cfg.MaxWallClockSeconds)
	}
}

func TestDeterministic(t *testing.T) {
	q := "Como plantar milho?"
	c1, cfg1 := Classify(q)
	for i := 0; i < 10; i++ {
		c2, cfg2 := Classify(q)
		if c1 != c2 || cfg1 != cfg2 {
			t.Fatalf("classification not deterministic: %v/%+v vs %v/%+v", c1, cfg1, c2, cfg2)
		}
	}
}

func TestBudgetOrderingAcrossClasses(t *testing.T) {
	// The per-class wall-clock budgets must be strictly increasing in the
	// order factual < standard < complex < creative.
	_, f := Classify("Onde fica Bissau?")
	_, s := Classify("Quero preparar o solo para a próxima plantação")
	_, c := Classify("Compare os métodos de irrigação por gotejamento e por sulco")
	_, cr := Classify("Invente um poema sobre o rio Geba")
	if !(f.MaxWallClockSeconds < s.MaxWallClockSeconds && s.MaxWallClockSeconds < c.MaxWallClockSeconds && c.MaxWallClockSeconds < cr.MaxWallClockSeconds) {
		t.Fatalf("wall-clock ordering broken: %v %v %v %v", f.MaxWallClockSeconds, s.MaxWallClockSeconds, c.MaxWallClockSeconds, cr.MaxWallClockSeconds)
	}
}
