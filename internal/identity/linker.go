package identity

import "strings"

type Strategy string

const (
	StrategyIdentifier Strategy = "identifier"
	StrategyName       Strategy = "name"
	StrategyContact    Strategy = "contact"
	StrategyFuzzyName  Strategy = "fuzzy_name"
	StrategyAddress    Strategy = "address"
)

type Scoring string

const (
	ScoringTiered Scoring = "tiered"
	ScoringRatio  Scoring = "ratio"
)

// Umbrales por contexto: la vinculación de planillas tolera más que las exportaciones.
const (
	LooseThreshold  = 0.70
	ExportThreshold = 0.75
)

// IncomingRecord es una fila entrante (por ejemplo, un turno del rol) por vincular.
type IncomingRecord struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

type LinkOptions struct {
	Threshold float64
	Scoring   Scoring
	Matcher   *Matcher

	// MatchAddress habilita la última estrategia, la más débil.
	MatchAddress bool
	// MatchWithoutCheckDigit permite coincidir por el cuerpo del identificador
	// cuando el dígito verificador falta o no coincide.
	MatchWithoutCheckDigit bool
}

// Match es el resultado de una vinculación exitosa.
type Match struct {
	Record   *IdentityRecord `json:"record"`
	Strategy Strategy        `json:"strategy"`
	Score    float64         `json:"score"`
	// Weak indica una coincidencia aproximada (nombre difuso o dirección) que
	// debería confirmarse antes de escribir sobre el perfil.
	Weak bool `json:"weak"`
	// Backfill indica que el identificador entrante debería guardarse en el perfil:
	// la coincidencia no fue por identificador, la fila trae uno y es distinto del
	// que tiene el registro, ya sea porque está vacío o porque difiere. Cuando difiere,
	// quien llama debe tratarlo como sugerencia y no escribirlo sin confirmación.
	Backfill bool `json:"backfill"`
}

// minAddressKeyLen evita aceptar contenciones triviales como "1" dentro de "AV 1234".
const minAddressKeyLen = 6

// minIdentifierBodyLen evita buscar por cuerpos demasiado cortos.
const minIdentifierBodyLen = 6

func (o LinkOptions) withDefaults() LinkOptions {
	if o.Threshold <= 0 {
		o.Threshold = LooseThreshold
	}
	if o.Scoring == "" {
		o.Scoring = ScoringTiered
	}
	if o.Matcher == nil {
		o.Matcher = defaultMatcher
	}
	return o
}

type strategyFunc func(in IncomingRecord, id string, kb *KnowledgeBase, opts LinkOptions) *Match

// Resolve vincula una fila entrante con el directorio. Devuelve nil si ninguna
// estrategia encuentra a la persona. Es una función pura: escribir el identificador
// de vuelta (Backfill) queda a cargo de quien llama.
//
// Las estrategias se prueban en orden y la primera coincidencia se conserva, salvo
// que no tenga dirección y una estrategia posterior encuentre un registro que sí la tenga.
func Resolve(in IncomingRecord, kb *KnowledgeBase, opts LinkOptions) *Match {
	if kb == nil || kb.Len() == 0 {
		return nil
	}
	opts = opts.withDefaults()

	id := NormalizeIdentifier(in.Identifier)

	cascade := []strategyFunc{matchIdentifier, matchName, matchContact, matchFuzzyName}
	if opts.MatchAddress {
		cascade = append(cascade, matchAddress)
	}

	var found *Match
	for _, strategy := range cascade {
		m := strategy(in, id, kb, opts)
		if m == nil {
			continue
		}
		if found == nil || upgrades(found, m, id) {
			found = m
		}
		if found.Record.Address != "" {
			break
		}
	}

	if found == nil {
		return nil
	}

	found.Backfill = found.Strategy != StrategyIdentifier && id != "" && found.Record.Identifier != id
	return found
}

// upgrades decide si candidate, que tiene dirección, reemplaza a found, que no la
// tiene. Una coincidencia fuerte solo cede ante el mismo registro o ante uno cuyo
// identificador esté vacío o sea el entrante.
func upgrades(found, candidate *Match, id string) bool {
	if found.Record.Address != "" || candidate.Record.Address == "" {
		return false
	}
	if found.Weak {
		return true
	}
	rec := candidate.Record
	return rec == found.Record || rec.Identifier == "" || rec.Identifier == id
}

func matchIdentifier(_ IncomingRecord, id string, kb *KnowledgeBase, opts LinkOptions) *Match {
	if id == "" {
		return nil
	}
	if rec, ok := kb.ByIdentifier[id]; ok {
		return &Match{Record: rec, Strategy: StrategyIdentifier, Score: 1}
	}

	if !opts.MatchWithoutCheckDigit {
		return nil
	}
	// el entrante puede venir sin dígito verificador, o con uno distinto
	for _, body := range []string{id, IdentifierBody(id)} {
		if len(body) < minIdentifierBodyLen {
			continue
		}
		if rec, ok := kb.ByIdentifierBody[body]; ok {
			return &Match{Record: rec, Strategy: StrategyIdentifier, Score: 1}
		}
	}
	return nil
}

func matchName(in IncomingRecord, _ string, kb *KnowledgeBase, _ LinkOptions) *Match {
	key := NormalizeName(in.Name)
	if key == "" {
		return nil
	}
	if rec, ok := kb.ByName[key]; ok {
		return &Match{Record: rec, Strategy: StrategyName, Score: 1}
	}
	return nil
}

func matchContact(in IncomingRecord, _ string, kb *KnowledgeBase, _ LinkOptions) *Match {
	email := NormalizeEmail(in.Email)
	phone := NormalizePhone(in.Phone)
	if email == "" && phone == "" {
		return nil
	}

	for _, rec := range kb.Records {
		if email != "" && rec.Email == email {
			return &Match{Record: rec, Strategy: StrategyContact, Score: 1}
		}
		if phone != "" && NormalizePhone(rec.Phone) == phone {
			return &Match{Record: rec, Strategy: StrategyContact, Score: 1}
		}
	}
	return nil
}

func matchFuzzyName(in IncomingRecord, _ string, kb *KnowledgeBase, opts LinkOptions) *Match {
	// nombres que son solo marcadores ("TURNO EXTRA", "VACANTE") no se adivinan
	if len(opts.Matcher.Tokenize(in.Name)) == 0 {
		return nil
	}

	var best *IdentityRecord
	bestScore := 0.0
	for _, rec := range kb.Records {
		if rec.Name == "" {
			continue
		}

		var score float64
		switch opts.Scoring {
		case ScoringRatio:
			score = opts.Matcher.TokenSimilarity(in.Name, rec.Name)
		default:
			score = opts.Matcher.TieredScore(in.Name, rec.Name)
		}

		if score > bestScore {
			best = rec
			bestScore = score
		}
	}

	if best == nil || bestScore < opts.Threshold {
		return nil
	}
	return &Match{Record: best, Strategy: StrategyFuzzyName, Score: bestScore, Weak: true}
}

func matchAddress(in IncomingRecord, _ string, kb *KnowledgeBase, _ LinkOptions) *Match {
	addr := NormalizeAddress(in.Address)
	if len(addr) < minAddressKeyLen {
		return nil
	}

	for _, rec := range kb.Records {
		known := NormalizeAddress(rec.Address)
		if len(known) < minAddressKeyLen {
			continue
		}
		if strings.Contains(known, addr) || strings.Contains(addr, known) {
			return &Match{Record: rec, Strategy: StrategyAddress, Score: 0, Weak: true}
		}
	}
	return nil
}
