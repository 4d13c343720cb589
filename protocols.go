package main

import (
	"sort"
	"strconv"
	"strings"
)

// ProtocolEntry is one row of the clinical protocol table. IdealGA is in
// completed weeks, either a single value ("39") or an inclusive range
// ("37-38"); "0" means delivery is already indicated (immediate
// interruption protocols). MarginDays is extra slack allowed past the
// ceiling only; early delivery below the floor is never covered by margin.
type ProtocolEntry struct {
	Condition      string
	IdealGA        string
	MarginDays     int
	Priority       int
	PreferredRoute string
	Notes          string
}

// GARange is the parsed form of ProtocolEntry.IdealGA.
type GARange struct {
	FloorWeeks int
	CeilWeeks  int
}

func (r GARange) FloorDays() int { return r.FloorWeeks * 7 }
func (r GARange) CeilDays() int  { return r.CeilWeeks * 7 }

// ProtocolTable is injected wherever protocols are consulted so tests can
// swap in fixture tables. defaultProtocolTable carries the hand-curated
// clinical entries; config.json may override individual rows.
type ProtocolTable map[string]ProtocolEntry

var defaultProtocolTable = ProtocolTable{
	// Elective
	"desejo_materno": {IdealGA: "39", MarginDays: 7, Priority: 3, PreferredRoute: "cesarea", Notes: "39 weeks, maternal request"},
	"laqueadura":     {IdealGA: "39", MarginDays: 7, Priority: 3, PreferredRoute: "cesarea", Notes: "39 weeks, tubal ligation"},

	// Hypertensive disease
	"hac":                            {IdealGA: "39", MarginDays: 7, Priority: 3, PreferredRoute: "obstetric", Notes: "chronic hypertension, compensated"},
	"hac_dificil":                    {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "3 drugs, difficult control"},
	"hipertensao_gestacional":        {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: ">36wk weekly Doppler and BPP"},
	"pre_eclampsia_sem_deterioracao": {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "no clinical deterioration"},
	"pre_eclampsia_grave":            {IdealGA: "34", MarginDays: 7, Priority: 1, PreferredRoute: "obstetric", Notes: "severe features >28wk"},
	"eclampsia":                      {IdealGA: "0", MarginDays: 0, Priority: 1, PreferredRoute: "obstetric", Notes: "obstetric emergency, immediate interruption"},
	"sindrome_hellp":                 {IdealGA: "34", MarginDays: 7, Priority: 1, PreferredRoute: "obstetric", Notes: "after maternal stabilization"},

	// Diabetes
	"dmg_sem_insulina":          {IdealGA: "39", MarginDays: 7, Priority: 3, PreferredRoute: "obstetric", Notes: "good control, no fetal repercussion"},
	"dmg_sem_insulina_descomp":  {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "poor control or fetal repercussion"},
	"dmg_insulina":              {IdealGA: "38", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "insulin, good control"},
	"dmg_insulina_descomp":      {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "glycemic decompensation"},
	"dm_pregestacional":         {IdealGA: "38", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "DM1/DM2 good control"},
	"dm_pregestacional_descomp": {IdealGA: "36", MarginDays: 7, Priority: 1, PreferredRoute: "obstetric", Notes: "decompensation or clinical complications"},

	// Placenta
	"placenta_previa_total":   {IdealGA: "36", MarginDays: 7, Priority: 1, PreferredRoute: "cesarea", Notes: "mandatory cesarean, bleeding risk"},
	"placenta_previa_parcial": {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "cesarea", Notes: "assess cervix distance"},
	"placenta_baixa":          {IdealGA: "38", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "bleeding surveillance"},
	"placenta_acreta":         {IdealGA: "34", MarginDays: 7, Priority: 1, PreferredRoute: "cesarea", Notes: "specialized team, hysterectomy risk"},
	"placenta_percreta":       {IdealGA: "34", MarginDays: 7, Priority: 1, PreferredRoute: "cesarea", Notes: "tertiary center, ICU, blood products"},
	"dpp":                     {IdealGA: "0", MarginDays: 0, Priority: 1, PreferredRoute: "obstetric", Notes: "obstetric emergency"},

	// Twin pregnancy
	"gemelar_monocorionico": {IdealGA: "34", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "TTTS surveillance, weekly Doppler"},
	"gemelar_bicorionico":   {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "fetal growth surveillance"},
	"gemelar_monoamniotico": {IdealGA: "32", MarginDays: 7, Priority: 1, PreferredRoute: "cesarea", Notes: "cord entanglement risk"},

	// Fetal presentation
	"pelvico": {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "cesarea", Notes: "ECV up to 37wk, cesarean on failure"},
	"cormica": {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "cesarea", Notes: "cesarean indicated"},

	// Membrane rupture
	"rpmo_pretermo": {IdealGA: "34", MarginDays: 7, Priority: 1, PreferredRoute: "obstetric", Notes: "steroids, antibiotics, surveillance"},
	"rpmo_termo":    {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "labor induction within 24h"},

	// Fetal growth
	"rcf":                {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "altered Doppler, fetal surveillance"},
	"rcf_grave":          {IdealGA: "34", MarginDays: 7, Priority: 1, PreferredRoute: "obstetric", Notes: "critical Doppler, absent/reversed diastole"},
	"macrossomia":        {IdealGA: "38", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "EFW >4000g, assess route"},
	"macrossomia_severa": {IdealGA: "38", MarginDays: 7, Priority: 2, PreferredRoute: "cesarea", Notes: "EFW >4500g, cesarean recommended"},

	// Amniotic fluid
	"oligodramnia":        {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "AFI <5 or MVP <2, fetal surveillance"},
	"oligodramnia_severa": {IdealGA: "34", MarginDays: 7, Priority: 1, PreferredRoute: "obstetric", Notes: "anhydramnios, interruption indicated"},
	"polidramnia":         {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "AFI >24, investigate cause"},

	// Repeat cesarean
	"iteratividade_1cesarea": {IdealGA: "39", MarginDays: 7, Priority: 3, PreferredRoute: "obstetric", Notes: "vaginal delivery possible after assessment"},
	"iteratividade_2cesarea": {IdealGA: "39", MarginDays: 7, Priority: 2, PreferredRoute: "cesarea", Notes: "2 or more previous cesareans"},
	"cesarea_corporal":       {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "cesarea", Notes: "uterine rupture risk"},

	// Fetal malformation
	"malformacao_grave": {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "specialized neonatal team"},
	"cardiopatia_fetal": {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "center with pediatric cardiology"},
	"hidrocefalia":      {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "cesarea", Notes: "HC >40cm, cesarean indicated"},

	// Maternal disease
	"cardiopatia_materna": {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "functional class III/IV, assisted delivery"},
	"cardiopatia_grave":   {IdealGA: "36", MarginDays: 7, Priority: 1, PreferredRoute: "obstetric", Notes: "ICU, cardiology team"},
	"doenca_renal":        {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "creatinine >1.5, maternal-fetal surveillance"},
	"lupus":               {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "disease activity surveillance"},
	"epilepsia":           {IdealGA: "38", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "medication control"},
	"trombofilia":         {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "anticoagulation, Doppler surveillance"},

	// Infection
	"hiv":          {IdealGA: "38", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "VL <1000 vaginal, VL >1000 cesarean"},
	"hepatite_b":   {IdealGA: "39", MarginDays: 7, Priority: 3, PreferredRoute: "obstetric", Notes: "newborn immunoglobulin within 12h"},
	"hepatite_c":   {IdealGA: "39", MarginDays: 7, Priority: 3, PreferredRoute: "obstetric", Notes: "no prophylactic cesarean indication"},
	"herpes_ativo": {IdealGA: "38", MarginDays: 7, Priority: 2, PreferredRoute: "cesarea", Notes: "active lesions, cesarean indicated"},

	// Uterine surgery
	"miomatose":          {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "cesarea", Notes: "large or multiple fibroids"},
	"miomectomia_previa": {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "cesarea", Notes: "cavity-opening myomectomy"},

	// Special
	"tpp_atual":              {IdealGA: "34", MarginDays: 7, Priority: 1, PreferredRoute: "obstetric", Notes: "steroids, tocolysis, antibiotics"},
	"obito_fetal_anterior":   {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "intensive surveillance, Doppler"},
	"gestacao_prolongada":    {IdealGA: "41", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "induction at 41wk"},
	"idade_materna_avancada": {IdealGA: "39", MarginDays: 7, Priority: 3, PreferredRoute: "obstetric", Notes: ">35 years, fetal surveillance"},
	"obesidade_morbida":      {IdealGA: "38", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "BMI >40, assess comorbidities"},
	"aloimunizacao_rh":       {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "fetal anemia surveillance, MCA Doppler"},
	"cerclagem":              {IdealGA: "37", MarginDays: 7, Priority: 2, PreferredRoute: "obstetric", Notes: "cerclage removal before delivery"},
}

// Lookup returns the entry for a condition id. Unknown ids report not-found
// and are treated as unrecognized upstream, never defaulted.
func (t ProtocolTable) Lookup(conditionID string) (ProtocolEntry, bool) {
	entry, ok := t[conditionID]
	if ok {
		entry.Condition = conditionID
	}
	return entry, ok
}

// MostRestrictive selects the single governing protocol for a condition
// set: lowest priority tier first, then lowest ideal GA floor, then
// condition id for determinism. Returns false when no condition in the set
// resolves to a protocol entry; callers must treat that as "cannot
// determine protocol", not as elective.
func (t ProtocolTable) MostRestrictive(conditions ConditionSet) (ProtocolEntry, bool) {
	candidates := make([]ProtocolEntry, 0, len(conditions))
	for id := range conditions {
		if entry, ok := t.Lookup(id); ok {
			candidates = append(candidates, entry)
		}
	}
	if len(candidates) == 0 {
		return ProtocolEntry{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		fi := candidates[i].GARange().FloorWeeks
		fj := candidates[j].GARange().FloorWeeks
		if fi != fj {
			return fi < fj
		}
		return candidates[i].Condition < candidates[j].Condition
	})

	return candidates[0], true
}

// GARange parses IdealGA. Malformed table entries collapse to 0-0, which
// surfaces immediately in any window check; the table is static data
// validated by tests.
func (e ProtocolEntry) GARange() GARange {
	return parseGARange(e.IdealGA)
}

func parseGARange(idealGA string) GARange {
	s := strings.TrimSpace(idealGA)
	if i := strings.IndexByte(s, '-'); i > 0 {
		floor, err1 := strconv.Atoi(strings.TrimSpace(s[:i]))
		ceil, err2 := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if err1 == nil && err2 == nil {
			return GARange{FloorWeeks: floor, CeilWeeks: ceil}
		}
	}
	if v, err := strconv.Atoi(s); err == nil {
		return GARange{FloorWeeks: v, CeilWeeks: v}
	}
	return GARange{}
}

// InWindow checks a GA in days against the protocol window. The margin
// applies above the ceiling only; below the floor is always out of window.
func (e ProtocolEntry) InWindow(gaDays int) bool {
	r := e.GARange()
	if gaDays < r.FloorDays() {
		return false
	}
	return gaDays <= r.CeilDays()+e.MarginDays
}
