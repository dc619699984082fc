package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeIdentifier deja solo dígitos y la letra K (en mayúscula).
// Una entrada vacía o basura produce "", que nunca debe usarse como clave.
func NormalizeIdentifier(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'k' || r == 'K':
			b.WriteRune('K')
		}
	}

	return b.String()
}

// IdentifierBody devuelve el identificador normalizado sin su dígito verificador.
func IdentifierBody(normalized string) string {
	if len(normalized) < 2 {
		return ""
	}
	return normalized[:len(normalized)-1]
}

// NormalizeName pasa el nombre a mayúsculas, quita tildes y colapsa los espacios.
// Es la clave del índice por nombre exacto.
func NormalizeName(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	s = stripAccents(s)

	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail compara correos sin distinguir mayúsculas.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// phoneSuffixLen es la cantidad de dígitos finales que se comparan entre teléfonos,
// así "+56 9 1234 5678" y "912345678" coinciden.
const phoneSuffixLen = 8

// NormalizePhone devuelve los últimos ocho dígitos del teléfono, o "" si no alcanzan.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) < phoneSuffixLen {
		return ""
	}
	return digits[len(digits)-phoneSuffixLen:]
}

// NormalizeAddress reduce una dirección a sus letras y dígitos.
func NormalizeAddress(raw string) string {
	s := NormalizeName(raw)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// stripAccents descompone en NFD y descarta las marcas combinantes (categoría Mn).
func stripAccents(s string) string {
	decomposed := norm.NFD.String(s)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// splitTokens normaliza el nombre, cambia la puntuación por espacios y descarta
// los tokens de largo <= dropLen o presentes en la lista de exclusión.
func splitTokens(name string, dropLen int, stoplist map[string]struct{}) []string {
	s := NormalizeName(name)
	if s == "" {
		return nil
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)

	tokens := make([]string, 0, 4)
	for _, tok := range strings.Fields(s) {
		if len([]rune(tok)) <= dropLen {
			continue
		}
		if _, skip := stoplist[tok]; skip {
			continue
		}
		tokens = append(tokens, tok)
	}

	return tokens
}
