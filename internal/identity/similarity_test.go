package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchingTokenCount(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		a, b                  string
		matches, lenA, lenB int
	}{
		{"JUAN PEREZ GONZALEZ", "JUAN PEREZ", 2, 3, 2},
		{"PEREZ GONZALEZ JUAN", "Juan Pérez González", 3, 3, 3},
		// una edición en un token corto
		{"ANA ROJS", "ANA ROJAS", 2, 2, 2},
		// dos ediciones solo se aceptan con tokens de más de cuatro letras
		{"GONSALES", "GONZALEZ", 1, 1, 1},
		{"RUIZ", "ROSA", 0, 1, 1},
		{"", "JUAN PEREZ", 0, 0, 2},
	}

	for _, test := range tests {
		matches, lenA, lenB := MatchingTokenCount(test.a, test.b)
		assert.Equal(test.matches, matches, "%q vs %q", test.a, test.b)
		assert.Equal(test.lenA, lenA, "%q vs %q", test.a, test.b)
		assert.Equal(test.lenB, lenB, "%q vs %q", test.a, test.b)
	}
}

func TestTokenSimilarity(t *testing.T) {
	assert := assert.New(t)

	// "J" se descarta, quedan 2 de 3 tokens
	assert.InDelta(2.0/3.0, TokenSimilarity("MARIA JOSE SOTO", "MARIA J SOTO"), 1e-9)
	assert.InDelta(1.0, TokenSimilarity("SOTO MARIA", "maria soto"), 1e-9)
	assert.Equal(0.0, TokenSimilarity("", "MARIA SOTO"))
	assert.Equal(0.0, TokenSimilarity("X", "MARIA SOTO"))
}

func TestTokenSimilarityIsAsymmetric(t *testing.T) {
	assert := assert.New(t)

	// De A a B, ROSA toma ROSS (distancia 1, primero en el recorrido) y ROSS queda sin
	// pareja. De B a A, ROSS toma ROSS exacto y RUSA toma ROSA.
	forward := TokenSimilarity("ROSA ROSS", "ROSS RUSA")
	backward := TokenSimilarity("ROSS RUSA", "ROSA ROSS")

	assert.InDelta(0.5, forward, 1e-9)
	assert.InDelta(1.0, backward, 1e-9)
	assert.NotEqual(forward, backward)
}

func TestTieredScore(t *testing.T) {
	assert := assert.New(t)

	// tres coincidencias fuerzan 1.0 aunque sobren tokens
	assert.Equal(1.0, defaultMatcher.TieredScore("PEDRO PEREZ SOTO", "PEDRO ANDRES PEREZ SOTO"))
	// dos coincidencias con un nombre de dos tokens
	assert.Equal(0.9, defaultMatcher.TieredScore("CAMILA ROJAS", "CAMILA ANDREA ROJAS VALDES"))
	// sin pisos aplica la razón
	assert.InDelta(1.0/3.0, defaultMatcher.TieredScore("CAMILA FUENTES TORO", "CAMILA ROJAS VALDES"), 1e-9)
}

func TestMatcherCustomStoplist(t *testing.T) {
	m := NewMatcher([]string{"sr", "señor"})

	assert.Equal(t, []string{"PEDRO", "SOTO"}, m.Tokenize("Señor Pedro Soto"))
	assert.Equal(t, 1.0, m.TokenSimilarity("Señor Pedro Soto", "PEDRO SOTO"))
}
