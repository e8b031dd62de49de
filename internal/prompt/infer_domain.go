package prompt

import "strings"

// domainKeywords backs InferDomain. First matching domain by score wins;
// ties resolve in the iteration order below for determinism.
var domainKeywords = []struct {
	domain   string
	keywords []string
}{
	{DomainMedical, []string{
		"saúde", "saude", "médico", "medico", "doença", "doenca", "sintoma",
		"remédio", "remedio", "febre", "dor", "ferimento", "hospital", "malária", "malaria", "gravidez",
	}},
	{DomainAgriculture, []string{
		"agricultura", "plantar", "plantio", "colheita", "semente", "solo",
		"irrigação", "irrigacao", "praga", "cultivo", "mandioca", "arroz", "milho", "horta",
	}},
	{DomainEducation, []string{
		"escola", "professor", "aluno", "aula", "ensino", "estudar",
		"matemática", "matematica", "aprender", "educação", "educacao", "livro",
	}},
	{DomainEnvironmental, []string{
		"ambiente", "clima", "chuva", "seca", "enchente", "poluição", "poluicao",
		"reciclagem", "lixo", "desmatamento",
	}},
	{DomainWellness, []string{
		"estresse", "ansiedade", "sono", "bem-estar", "relaxar", "meditação", "meditacao",
	}},
	{DomainTranslation, []string{
		"traduza", "traduzir", "tradução", "traducao", "crioulo", "significa",
	}},
}

// InferDomain guesses the subject domain of a query from keywords. It is
// used only when a request omits the domain; an explicit domain always wins.
func InferDomain(text string) string {
	lower := strings.ToLower(text)
	best := DomainGeneral
	bestScore := 0
	for _, dk := range domainKeywords {
		score := 0
		for _, kw := range dk.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = dk.domain
			bestScore = score
		}
	}
	return best
}
