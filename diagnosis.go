package main

import "strings"

// diagnosisPattern maps normalized keywords to a protocol condition.
// Priority orders specificity: lower values are more specific patterns and
// win at one-best-match call sites. RequiresAll demands every keyword be
// present, used for compound conditions. With lists secondary markers, at
// least one of which must also appear; it expresses "any disease variant
// plus any decompensation marker" without enumerating every pair.
// Excludes suppresses the pattern when a phrase containing the keyword
// means something else entirely ("pre eclampsia" contains "eclampsia").
type diagnosisPattern struct {
	Condition   string
	Keywords    []string
	With        []string
	Excludes    []string
	Priority    int
	RequiresAll bool
}

// ConditionSet maps condition ids to the best (lowest) priority of the
// patterns that matched them.
type ConditionSet map[string]int

// Keywords below are stored pre-normalized (lower-case, no diacritics, no
// punctuation) so they can be matched directly against normalizeText output.
var diagnosisPatterns = []diagnosisPattern{
	// Hypertensive disease
	{Condition: "sindrome_hellp", Keywords: []string{"hellp"}, Priority: 1},
	{Condition: "eclampsia", Keywords: []string{"eclampsia"}, Excludes: []string{"pre eclampsia"}, Priority: 2},
	{Condition: "pre_eclampsia_grave", Keywords: []string{"pre eclampsia grave", "pe grave", "dheg", "sheg", "pe com deterioracao"}, Priority: 1},
	{Condition: "pre_eclampsia_sem_deterioracao", Keywords: []string{"pre eclampsia", "pe sem deterioracao"}, Priority: 2},
	{Condition: "hipertensao_gestacional", Keywords: []string{"hipertensao gestacional", "hg"}, Priority: 2},
	{Condition: "hac_dificil", Keywords: []string{"hac dificil", "hac 3 drogas", "hipertensao dificil controle", "3 drogas"}, Priority: 1},
	{Condition: "hac", Keywords: []string{"hac", "hipertensao arterial cronica", "has cronica", "hipertensao cronica"}, Priority: 3},

	// Diabetes. Decompensation markers move a diabetic to the earlier
	// interruption protocols; missing them schedules two weeks late.
	{Condition: "dm_pregestacional_descomp", Keywords: []string{"dm", "dm1", "dm2", "dm 1", "dm 2", "dm pregestacional", "diabetes tipo 1", "diabetes tipo 2", "mody"}, With: []string{"descomp", "descontrole", "complicacao"}, Priority: 1},
	{Condition: "dm_pregestacional", Keywords: []string{"dm1", "dm2", "dm 1", "dm 2", "dm pregestacional", "diabetes tipo 1", "diabetes tipo 2", "mody"}, Priority: 2},
	{Condition: "dmg_insulina_descomp", Keywords: []string{"dmg", "insulina"}, With: []string{"descomp", "descontrole", "complicacao"}, Priority: 1, RequiresAll: true},
	{Condition: "dmg_insulina", Keywords: []string{"dmg", "insulina"}, Priority: 2, RequiresAll: true},
	{Condition: "dmg_sem_insulina_descomp", Keywords: []string{"dmg", "diabetes gestacional"}, With: []string{"descomp", "descontrole", "complicacao"}, Priority: 2},
	{Condition: "dmg_sem_insulina", Keywords: []string{"dmg", "diabetes gestacional", "dmg dieta"}, Priority: 3},

	// Placenta
	{Condition: "placenta_percreta", Keywords: []string{"placenta percreta", "percretismo"}, Priority: 1},
	{Condition: "placenta_acreta", Keywords: []string{"placenta acreta", "acretismo"}, Priority: 1},
	{Condition: "placenta_previa_total", Keywords: []string{"placenta previa total", "pp centro total"}, Priority: 1},
	{Condition: "placenta_previa_parcial", Keywords: []string{"placenta previa parcial"}, Priority: 1},
	{Condition: "placenta_baixa", Keywords: []string{"placenta previa", "placenta baixa", "insercao baixa"}, Priority: 2},
	{Condition: "dpp", Keywords: []string{"dpp", "descolamento prematuro"}, Priority: 1},

	// Twin pregnancy
	{Condition: "gemelar_monoamniotico", Keywords: []string{"gemelar", "monoamniotic"}, Priority: 1, RequiresAll: true},
	{Condition: "gemelar_monocorionico", Keywords: []string{"gemelar", "monocorionic"}, Priority: 2, RequiresAll: true},
	{Condition: "gemelar_bicorionico", Keywords: []string{"gemelar", "bicorionic"}, Priority: 2, RequiresAll: true},
	{Condition: "gemelar_bicorionico", Keywords: []string{"gemelar", "dicorionic"}, Priority: 2, RequiresAll: true},

	// Fetal presentation
	{Condition: "pelvico", Keywords: []string{"pelvic", "apresentacao pelvica", "sentado", "podica"}, Priority: 2},
	{Condition: "cormica", Keywords: []string{"cormica", "transversa", "situacao transversa"}, Priority: 2},

	// Membrane rupture
	{Condition: "rpmo_pretermo", Keywords: []string{"rpmo pretermo", "rotura prematura pretermo", "rpmo pre termo"}, Priority: 1},
	{Condition: "rpmo_termo", Keywords: []string{"rpmo", "rotura prematura", "bolsa rota", "amniorrexe"}, Priority: 2},

	// Fetal growth
	{Condition: "rcf_grave", Keywords: []string{"rcf grave", "rciu grave", "doppler critico", "diastole zero", "diastole reversa", "centralizacao"}, Priority: 1},
	{Condition: "rcf", Keywords: []string{"rcf", "rciu", "ciur", "restricao de crescimento", "pig"}, Priority: 2},
	{Condition: "macrossomia_severa", Keywords: []string{"macrossomia severa", "pfe 4500"}, Priority: 1},
	{Condition: "macrossomia", Keywords: []string{"macrossomia", "feto gig", "gig"}, Priority: 2},

	// Amniotic fluid
	{Condition: "oligodramnia_severa", Keywords: []string{"oligodramnia severa", "anidramnia", "anidramnio"}, Priority: 1},
	{Condition: "oligodramnia", Keywords: []string{"oligodramnia", "oligodramnio", "oligoamnio", "ila 5"}, Priority: 2},
	{Condition: "polidramnia", Keywords: []string{"polidramnia", "polidramnio", "poliamnio", "ila 24"}, Priority: 2},

	// Repeat cesarean
	{Condition: "cesarea_corporal", Keywords: []string{"cesarea corporal", "incisao corporal"}, Priority: 1},
	{Condition: "iteratividade_2cesarea", Keywords: []string{"2 cesareas", "duas cesareas", "multiplas cesareas", "iteratividade"}, Priority: 2},
	{Condition: "iteratividade_1cesarea", Keywords: []string{"1 cesarea", "uma cesarea", "cesarea previa", "cesarea anterior"}, Priority: 3},

	// Fetal malformation
	{Condition: "hidrocefalia", Keywords: []string{"hidrocefalia"}, Priority: 1},
	{Condition: "cardiopatia_fetal", Keywords: []string{"cardiopatia fetal"}, Priority: 1},
	{Condition: "malformacao_grave", Keywords: []string{"malformacao", "anomalia fetal", "gastrosquise", "mielomeningocele", "onfalocele"}, Priority: 2},

	// Maternal disease
	{Condition: "cardiopatia_grave", Keywords: []string{"cardiopatia grave", "cf iii", "cf iv"}, Priority: 1},
	{Condition: "cardiopatia_materna", Keywords: []string{"cardiopatia"}, Priority: 2},
	{Condition: "doenca_renal", Keywords: []string{"doenca renal", "insuficiencia renal", "nefropatia"}, Priority: 2},
	{Condition: "lupus", Keywords: []string{"lupus", "les"}, Priority: 2},
	{Condition: "epilepsia", Keywords: []string{"epilepsia"}, Priority: 2},
	{Condition: "trombofilia", Keywords: []string{"trombofilia", "saf", "sindrome antifosfolipide"}, Priority: 2},

	// Infection
	{Condition: "hiv", Keywords: []string{"hiv", "aids"}, Priority: 2},
	{Condition: "hepatite_b", Keywords: []string{"hepatite b"}, Priority: 2},
	{Condition: "hepatite_c", Keywords: []string{"hepatite c"}, Priority: 2},
	{Condition: "herpes_ativo", Keywords: []string{"herpes", "ativ"}, Priority: 1, RequiresAll: true},

	// Uterine surgery
	{Condition: "miomectomia_previa", Keywords: []string{"miomectomia"}, Priority: 1},
	{Condition: "miomatose", Keywords: []string{"mioma", "miomatose"}, Priority: 2},

	// Special
	{Condition: "tpp_atual", Keywords: []string{"tpp", "trabalho de parto prematuro"}, Priority: 1},
	{Condition: "obito_fetal_anterior", Keywords: []string{"obito fetal anterior", "natimorto anterior", "ofu"}, Priority: 2},
	{Condition: "gestacao_prolongada", Keywords: []string{"gestacao prolongada", "41 semanas"}, Priority: 2},
	{Condition: "idade_materna_avancada", Keywords: []string{"idade materna avancada", "ima"}, Priority: 3},
	{Condition: "obesidade_morbida", Keywords: []string{"obesidade morbida", "imc 40"}, Priority: 2},
	{Condition: "aloimunizacao_rh", Keywords: []string{"aloimunizacao", "isoimunizacao", "incompatibilidade rh"}, Priority: 2},
	{Condition: "cerclagem", Keywords: []string{"cerclagem", "iic", "incompetencia istmo", "colo curto", "pessario"}, Priority: 2},

	// Elective
	{Condition: "desejo_materno", Keywords: []string{"desejo materno", "a pedido"}, Priority: 3},
	{Condition: "laqueadura", Keywords: []string{"laqueadura"}, Priority: 3},
}

// matchPattern reports whether a pattern fires on already-normalized text.
func matchPattern(normalized string, p diagnosisPattern) bool {
	for _, excl := range p.Excludes {
		if containsToken(normalized, excl) {
			return false
		}
	}

	keywordHit := false
	for _, kw := range p.Keywords {
		if containsToken(normalized, kw) {
			keywordHit = true
			if !p.RequiresAll {
				break
			}
		} else if p.RequiresAll {
			return false
		}
	}
	if !keywordHit {
		return false
	}

	if len(p.With) == 0 {
		return true
	}
	for _, marker := range p.With {
		if containsToken(normalized, marker) {
			return true
		}
	}
	return false
}

// containsToken is a substring check anchored at a word start. When the
// token's final word has four or more characters it also matches as a
// word prefix, so gendered and inflected endings ("descompensada",
// "pelvica") still fire; short final words like "pe", "dm" or the "b" in
// "hepatite b" require an exact word boundary so they cannot fire inside
// unrelated words.
func containsToken(text, token string) bool {
	lastWord := token[strings.LastIndexByte(token, ' ')+1:]
	allowPrefix := len(lastWord) >= 4
	for start := 0; ; {
		i := strings.Index(text[start:], token)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(token)
		leftOk := i == 0 || text[i-1] == ' '
		rightOk := allowPrefix || end == len(text) || text[end] == ' '
		if leftOk && rightOk {
			return true
		}
		start = i + 1
	}
}

// matchConditions scans the whole pattern table against combined free-text
// input and collects every matching condition, not just the first. Blank
// input yields an empty set; callers must treat that as "no diagnosis",
// never as low risk.
func matchConditions(combinedText string) ConditionSet {
	conditions := ConditionSet{}

	normalized := normalizeText(combinedText)
	if normalized == "" {
		return conditions
	}

	for _, pattern := range diagnosisPatterns {
		if !matchPattern(normalized, pattern) {
			continue
		}
		if prev, ok := conditions[pattern.Condition]; !ok || pattern.Priority < prev {
			conditions[pattern.Condition] = pattern.Priority
		}
	}

	return conditions
}

// IDs returns the matched condition ids in no particular order.
func (cs ConditionSet) IDs() []string {
	ids := make([]string, 0, len(cs))
	for id := range cs {
		ids = append(ids, id)
	}
	return ids
}
