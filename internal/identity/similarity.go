package identity

import (
	"github.com/agnivade/levenshtein"
)

// DefaultStoplist contiene palabras de relleno que aparecen en las planillas de turnos
// y que nunca forman parte del nombre de una persona.
var DefaultStoplist = []string{
	"TEAM", "ROLE", "SHIFT", "TURNO", "EQUIPO", "ROL", "EXTRA",
	"VACANTE", "REEMPLAZO", "PENDIENTE", "DEFINIR", "SIN", "NOMBRE", "XXX",
}

const (
	// strictDropLen se usa en Tokenize: se descartan tokens de hasta dos letras.
	strictDropLen = 2
	// alignDropLen se usa al alinear tokens: solo se descartan iniciales sueltas.
	alignDropLen = 1
)

// Matcher compara nombres por alineación de tokens con tolerancia de edición.
type Matcher struct {
	stoplist map[string]struct{}
}

func NewMatcher(stoplist []string) *Matcher {
	m := &Matcher{
		stoplist: make(map[string]struct{}, len(stoplist)),
	}
	for _, word := range stoplist {
		if key := NormalizeName(word); key != "" {
			m.stoplist[key] = struct{}{}
		}
	}
	return m
}

var defaultMatcher = NewMatcher(DefaultStoplist)

// Tokenize usa la lista de exclusión por defecto.
func Tokenize(name string) []string {
	return defaultMatcher.Tokenize(name)
}

// MatchingTokenCount usa la lista de exclusión por defecto.
func MatchingTokenCount(nameA, nameB string) (matches, lenA, lenB int) {
	return defaultMatcher.MatchingTokenCount(nameA, nameB)
}

// TokenSimilarity usa la lista de exclusión por defecto.
func TokenSimilarity(nameA, nameB string) float64 {
	return defaultMatcher.TokenSimilarity(nameA, nameB)
}

// Tokenize devuelve los tokens significativos del nombre: sin tokens de hasta dos
// letras y sin palabras de la lista de exclusión.
func (m *Matcher) Tokenize(name string) []string {
	return splitTokens(name, strictDropLen, m.stoplist)
}

// MatchingTokenCount alinea cada token de A con el mejor token libre de B.
//
// La alineación es codiciosa y sigue el orden de A: un token de B ya usado no se
// vuelve a considerar y no hay retroceso. Por eso el resultado no es simétrico;
// por convención A es el nombre entrante y B el nombre de la base.
func (m *Matcher) MatchingTokenCount(nameA, nameB string) (matches, lenA, lenB int) {
	tokensA := splitTokens(nameA, alignDropLen, m.stoplist)
	tokensB := splitTokens(nameB, alignDropLen, m.stoplist)

	used := make([]bool, len(tokensB))
	for _, a := range tokensA {
		best := -1
		bestDist := 0

		for j, b := range tokensB {
			if used[j] {
				continue
			}
			if a == b {
				best = j
				bestDist = 0
				break
			}

			dist := levenshtein.ComputeDistance(a, b)
			if !acceptDistance(dist, a, b) {
				continue
			}
			// en empate se queda el primero encontrado
			if best < 0 || dist < bestDist {
				best = j
				bestDist = dist
			}
		}

		if best >= 0 {
			used[best] = true
			matches++
		}
	}

	return matches, len(tokensA), len(tokensB)
}

// TokenSimilarity es matches / max(lenA, lenB), o 0 si algún nombre queda sin tokens.
func (m *Matcher) TokenSimilarity(nameA, nameB string) float64 {
	matches, lenA, lenB := m.MatchingTokenCount(nameA, nameB)
	if lenA == 0 || lenB == 0 {
		return 0
	}
	return float64(matches) / float64(max(lenA, lenB))
}

// TieredScore aplica los pisos usados al vincular turnos: 1.0 con tres o más tokens
// coincidentes, 0.9 con dos si alguno de los nombres tiene exactamente dos tokens.
func (m *Matcher) TieredScore(nameA, nameB string) float64 {
	matches, lenA, lenB := m.MatchingTokenCount(nameA, nameB)
	if lenA == 0 || lenB == 0 {
		return 0
	}

	score := float64(matches) / float64(max(lenA, lenB))
	switch {
	case matches >= 3:
		score = 1.0
	case matches >= 2 && (lenA == 2 || lenB == 2):
		score = max(score, 0.9)
	}
	return score
}

// acceptDistance: hasta una edición siempre, dos si ambos tokens tienen más de cuatro letras.
func acceptDistance(dist int, a, b string) bool {
	if dist <= 1 {
		return true
	}
	return dist <= 2 && len([]rune(a)) > 4 && len([]rune(b)) > 4
}
