package scoring

import (
	"fmt"
	"math"
)

// Pattern keys of the communication pattern screening.
const (
	PatternGaslighting     = "gaslighting"
	PatternStonewalling    = "stonewalling"
	PatternLoveBombing     = "love_bombing"
	PatternCriticism       = "criticism"
	PatternContempt        = "contempt"
	PatternDefensiveness   = "defensiveness"
	PatternControl         = "control"
	PatternJealousy        = "jealousy"
	PatternGuiltTripping   = "guilt_tripping"
	PatternSilentTreatment = "silent_treatment"
)

// Frequency bands by yes-percentage.
const (
	FrequencyNotObserved = "not_observed"
	FrequencyOccasional  = "occasional"
	FrequencyRecurring   = "recurring"
	FrequencyPervasive   = "pervasive"
)

// Overall risk levels.
const (
	RiskLow      = "niski"
	RiskModerate = "umiarkowany"
	RiskElevated = "podwyższony"
	RiskHigh     = "wysoki"
)

// Five or more patterns at or above this percentage force the highest risk
// level regardless of the threshold count.
const (
	cpsForcePercentage   = 75
	cpsForcePatternCount = 5
)

// CPSQuestion is one diagnostic yes/no question. Every question belongs to
// exactly one pattern.
type CPSQuestion struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern"`
	Text    string `json:"text"`
}

// CPSPattern groups the questions that probe one communication pattern.
type CPSPattern struct {
	Key         string        `json:"key"`
	DisplayName string        `json:"displayName"`
	Questions   []CPSQuestion `json:"questions"`
}

// CPSAnswer is the model's verdict on one question. A nil Value means the
// material gave no evidence either way; such answers are excluded from
// scoring entirely.
type CPSAnswer struct {
	Value      *bool   `json:"value"`
	Confidence float64 `json:"confidence"`
}

// CPSPatternResult is the scored outcome for one pattern.
type CPSPatternResult struct {
	Key            string  `json:"key"`
	DisplayName    string  `json:"displayName"`
	YesCount       int     `json:"yesCount"`
	Total          int     `json:"total"`
	Percentage     int     `json:"percentage"`
	Frequency      string  `json:"frequency"`
	MeetsThreshold bool    `json:"meetsThreshold"`
	Confidence     float64 `json:"confidence"`
}

func questions(pattern string, texts ...string) []CPSQuestion {
	qs := make([]CPSQuestion, len(texts))
	for i, text := range texts {
		qs[i] = CPSQuestion{
			ID:      fmt.Sprintf("%s_%d", pattern, i+1),
			Pattern: pattern,
			Text:    text,
		}
	}
	return qs
}

// cpsCatalog is the fixed screening catalog: 10 patterns, 63 questions.
// The question set is a scoring contract; changing it invalidates stored
// answers.
var cpsCatalog = []CPSPattern{
	{
		Key:         PatternGaslighting,
		DisplayName: "Gaslighting",
		Questions: questions(PatternGaslighting,
			"Czy jedna ze stron zaprzecza słowom, które padły wcześniej w rozmowie?",
			"Czy pojawiają się sugestie, że druga osoba przesadza lub zmyśla?",
			"Czy wersje wydarzeń są podmieniane po fakcie?",
			"Czy jedna ze stron podważa pamięć drugiej („nigdy tego nie powiedziałem\")?",
			"Czy uczucia drugiej osoby są określane jako nieuzasadnione lub wymyślone?",
			"Czy winą za nieporozumienia obarczana jest wyłącznie percepcja jednej osoby?",
			"Czy konfrontacja z faktami kończy się etykietą „jesteś przewrażliwiony/a\"?",
		),
	},
	{
		Key:         PatternStonewalling,
		DisplayName: "Stonewalling",
		Questions: questions(PatternStonewalling,
			"Czy trudne tematy są zbywane milczeniem?",
			"Czy jedna ze stron ucina rozmowę, gdy robi się poważna?",
			"Czy pytania o uczucia pozostają bez odpowiedzi?",
			"Czy widać wzorzec znikania w środku konfliktu?",
			"Czy próby wyjaśnienia sporu są odraczane bez terminu powrotu do tematu?",
			"Czy odpowiedzi w trudnych momentach ograniczają się do zdawkowych „ok\", „nieważne\"?",
		),
	},
	{
		Key:         PatternLoveBombing,
		DisplayName: "Love bombing",
		Questions: questions(PatternLoveBombing,
			"Czy na wczesnym etapie pojawia się lawina wyznań nieproporcjonalna do znajomości?",
			"Czy deklaracje uczuć pojawiają się gwałtownie zaraz po konflikcie?",
			"Czy intensywna czułość poprzedza wyrażenie oczekiwań lub żądań?",
			"Czy obietnice wspólnej przyszłości padają bardzo wcześnie?",
			"Czy czułość gwałtownie znika, gdy druga osoba stawia granice?",
			"Czy wielkie gesty pojawiają się zaraz po zranieniu drugiej osoby?",
		),
	},
	{
		Key:         PatternCriticism,
		DisplayName: "Krytyka",
		Questions: questions(PatternCriticism,
			"Czy uwagi dotyczą charakteru osoby, a nie konkretnego zachowania?",
			"Czy pojawiają się uogólnienia typu „ty zawsze\", „ty nigdy\"?",
			"Czy drobne potknięcia są wypominane wielokrotnie?",
			"Czy wygląd, inteligencja lub kompetencje drugiej osoby są regularnie podważane?",
			"Czy krytyka pada przy osobach trzecich?",
			"Czy błędy drugiej osoby są wyolbrzymiane, a jej starania pomijane?",
		),
	},
	{
		Key:         PatternContempt,
		DisplayName: "Pogarda",
		Questions: questions(PatternContempt,
			"Czy pojawiają się kpiny lub sarkazm wymierzone w drugą osobę?",
			"Czy jedna ze stron przedrzeźnia lub parodiuje drugą?",
			"Czy używane są obraźliwe przezwiska?",
			"Czy komunikaty sugerują wyższość jednej strony („i tak tego nie zrozumiesz\")?",
			"Czy problemy drugiej osoby są wyśmiewane zamiast traktowane poważnie?",
			"Czy szczere wypowiedzi spotykają się z drwiącymi reakcjami lub emotkami?",
		),
	},
	{
		Key:         PatternDefensiveness,
		DisplayName: "Defensywność",
		Questions: questions(PatternDefensiveness,
			"Czy odpowiedzią na uwagi jest natychmiastowy kontratak?",
			"Czy zarzuty są systematycznie odwracane („a ty to…\")?",
			"Czy przeprosiny są warunkowe („przepraszam, ale…\")?",
			"Czy każda prośba o zmianę jest odbierana jako atak?",
			"Czy tłumaczenie siebie zastępuje wysłuchanie drugiej strony?",
			"Czy jedna ze stron odmawia uznania jakiejkolwiek części winy?",
		),
	},
	{
		Key:         PatternControl,
		DisplayName: "Kontrola",
		Questions: questions(PatternControl,
			"Czy jedna ze stron rozlicza drugą z tego, gdzie jest i z kim?",
			"Czy pojawiają się żądania natychmiastowej odpowiedzi?",
			"Czy spotkania ze znajomymi wymagają zgody drugiej strony?",
			"Czy decyzje finansowe lub życiowe drugiej osoby są nadzorowane?",
			"Czy padają polecenia dotyczące ubioru lub wyglądu?",
			"Czy jedna ze stron sprawdza telefon lub konta drugiej?",
			"Czy odmowa wykonania polecenia spotyka się z karą?",
		),
	},
	{
		Key:         PatternJealousy,
		DisplayName: "Zazdrość",
		Questions: questions(PatternJealousy,
			"Czy kontakty z innymi osobami wywołują przesłuchania?",
			"Czy pojawiają się oskarżenia o flirt bez podstaw?",
			"Czy jedna ze stron żąda zerwania kontaktów z konkretnymi osobami?",
			"Czy polubienia lub komentarze w mediach społecznościowych wywołują awantury?",
			"Czy przeszłość romantyczna drugiej osoby jest stale wypominana?",
			"Czy czas spędzony osobno jest traktowany jak zdrada?",
		),
	},
	{
		Key:         PatternGuiltTripping,
		DisplayName: "Wzbudzanie poczucia winy",
		Questions: questions(PatternGuiltTripping,
			"Czy odmowa prośby kończy się wyliczaniem poświęceń („po tym wszystkim, co zrobiłem\")?",
			"Czy jedna ze stron obarcza drugą odpowiedzialnością za swoje samopoczucie?",
			"Czy padają komunikaty typu „gdybyś mnie kochał/a, to…\"?",
			"Czy własne błędy są usprawiedliwiane dawnymi krzywdami, by zamknąć temat?",
			"Czy druga osoba przeprasza za rzeczy, na które nie miała wpływu?",
			"Czy w reakcji na granice pojawiają się groźby autodestrukcyjne?",
		),
	},
	{
		Key:         PatternSilentTreatment,
		DisplayName: "Ciche dni",
		Questions: questions(PatternSilentTreatment,
			"Czy po konflikcie następują wielogodzinne lub wielodniowe okresy ciszy?",
			"Czy cisza jest stosowana jako kara, a nie potrzeba ochłonięcia?",
			"Czy jedna ze stron ogłasza, że „się nie odzywa\", zamiast rozwiązać spór?",
			"Czy wiadomości pozostają bez odpowiedzi mimo widocznej aktywności?",
			"Czy zakończenie ciszy wymaga przeprosin wyłącznie od jednej strony?",
			"Czy cisza zapada bez wyjaśnienia, czym została spowodowana?",
			"Czy okresy ciszy wydłużają się z czasem?",
		),
	},
}

// Catalog returns the screening catalog in scoring order.
func Catalog() []CPSPattern {
	return cpsCatalog
}

// catalogQuestionCount is the closed size of the question partition.
const catalogQuestionCount = 63

// ValidateCatalog checks the closed-partition invariant: exactly
// catalogQuestionCount questions, unique IDs, and every question attached
// to its own pattern.
func ValidateCatalog() error {
	seen := make(map[string]string, catalogQuestionCount)
	total := 0
	for _, p := range cpsCatalog {
		if len(p.Questions) == 0 {
			return fmt.Errorf("pattern %q has no questions", p.Key)
		}
		for _, q := range p.Questions {
			if q.Pattern != p.Key {
				return fmt.Errorf("question %q claims pattern %q but sits under %q", q.ID, q.Pattern, p.Key)
			}
			if other, dup := seen[q.ID]; dup {
				return fmt.Errorf("question id %q appears in both %q and %q", q.ID, other, p.Key)
			}
			seen[q.ID] = p.Key
			total++
		}
	}
	if total != catalogQuestionCount {
		return fmt.Errorf("catalog has %d questions, want %d", total, catalogQuestionCount)
	}
	return nil
}

// CalculatePatternResults scores every catalog pattern against the supplied
// answers. Missing and null answers carry no weight: they count toward
// neither the percentage nor the confidence.
func CalculatePatternResults(answers map[string]CPSAnswer) map[string]CPSPatternResult {
	results := make(map[string]CPSPatternResult, len(cpsCatalog))
	for _, p := range cpsCatalog {
		var yes, total int
		var confSum float64
		for _, q := range p.Questions {
			ans, ok := answers[q.ID]
			if !ok || ans.Value == nil {
				continue
			}
			total++
			confSum += ans.Confidence
			if *ans.Value {
				yes++
			}
		}

		var percentage int
		var confidence float64
		if total > 0 {
			percentage = int(math.Round(float64(yes) / float64(total) * 100))
			confidence = confSum / float64(total)
		}
		freq := frequencyBand(percentage)
		results[p.Key] = CPSPatternResult{
			Key:            p.Key,
			DisplayName:    p.DisplayName,
			YesCount:       yes,
			Total:          total,
			Percentage:     percentage,
			Frequency:      freq,
			MeetsThreshold: freq == FrequencyRecurring || freq == FrequencyPervasive,
			Confidence:     confidence,
		}
	}
	return results
}

func frequencyBand(percentage int) string {
	switch {
	case percentage == 0:
		return FrequencyNotObserved
	case percentage <= 25:
		return FrequencyOccasional
	case percentage <= 60:
		return FrequencyRecurring
	default:
		return FrequencyPervasive
	}
}

// GetOverallRiskLevel folds the per-pattern results into one verdict by
// counting patterns that meet the frequency threshold. Five or more
// patterns at 75% or higher force the highest verdict on their own.
func GetOverallRiskLevel(results map[string]CPSPatternResult) string {
	var met, severe int
	for _, r := range results {
		if r.MeetsThreshold {
			met++
		}
		if r.Percentage >= cpsForcePercentage {
			severe++
		}
	}
	if severe >= cpsForcePatternCount {
		return RiskHigh
	}
	switch {
	case met == 0:
		return RiskLow
	case met == 1:
		return RiskModerate
	case met <= 3:
		return RiskElevated
	default:
		return RiskHigh
	}
}
