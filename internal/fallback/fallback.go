package fallback

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Per-domain safe responses used when every driver attempt fails. The texts
// are deliberately generic and advisory; they must never pretend to come
// from the model.
var responses = map[string][]string{
	"medical": {
		"Para questões de saúde, sempre consulte um profissional médico qualificado.",
		"Mantenha uma dieta equilibrada, pratique exercícios e durma bem.",
		"Em caso de emergência médica, procure atendimento imediato.",
		"Consulte seu médico para orientações personalizadas sobre sua saúde.",
	},
	"education": {
		"O aprendizado é um processo contínuo. Continue estudando e praticando.",
		"Use diferentes métodos de estudo para melhor compreensão.",
		"Faça pausas regulares durante os estudos para melhor retenção.",
		"Procure recursos educacionais confiáveis para aprofundar seus conhecimentos.",
	},
	"agriculture": {
		"Consulte um técnico agrícola para orientações específicas.",
		"Mantenha o solo bem drenado e com nutrientes adequados.",
		"Monitore suas plantas regularmente para detectar problemas cedo.",
		"Use práticas sustentáveis de agricultura para proteger o meio ambiente.",
	},
	"wellness": {
		"Pratique técnicas de respiração para reduzir o estresse.",
		"Mantenha uma rotina de exercícios adequada ao seu nível.",
		"Cuide da sua saúde mental tanto quanto da física.",
		"Estabeleça limites saudáveis entre trabalho e descanso.",
	},
	"translation": {
		"Para traduções precisas, consulte um tradutor profissional.",
		"Use dicionários confiáveis para verificar traduções.",
		"Considere o contexto cultural ao traduzir expressões.",
		"Pratique idiomas regularmente para melhorar sua fluência.",
	},
	"environmental": {
		"Reduza, reutilize e recicle para proteger o meio ambiente.",
		"Economize água e energia em suas atividades diárias.",
		"Em caso de alerta climático, siga as orientações das autoridades locais.",
	},
	"general": {
		"Obrigado por usar o Bu Fala. Estamos aqui para ajudar!",
		"Continue explorando e aprendendo coisas novas.",
		"Se precisar de ajuda específica, consulte um profissional da área.",
		"Mantenha-se curioso e sempre busque conhecimento confiável.",
	},
}

// Generate returns a domain-tagged canned response for the query. The pick
// is pseudo-random but seeded by the query so repeated failures of the same
// request read consistently. Output is never cached.
func Generate(domain, query string) string {
	table, ok := responses[domain]
	if !ok {
		table = responses["general"]
	}
	base := table[seed(query)%uint32(len(table))]

	q := strings.TrimSpace(query)
	if q != "" {
		if strings.Contains(strings.ToLower(q), "como") {
			base = fmt.Sprintf("Para sua pergunta sobre '%s': %s", truncate(q, 50), base)
		} else if strings.HasSuffix(q, "?") {
			base = "Sobre sua pergunta: " + base
		}
	}
	return base + "\n\n[Resposta de emergência - assistente temporariamente indisponível]"
}

func seed(query string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	return h.Sum32()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
