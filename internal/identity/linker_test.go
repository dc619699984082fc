package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKB() *KnowledgeBase {
	profiles := []SourceRecord{
		{Ref: "p-1", Identifier: "12345678K", Name: "PEDRO A PEREZ SOTO", Address: "AV SIEMPREVIVA 742"},
		{Ref: "p-2", Identifier: "98765432-1", Name: "Camila Rojas Valdés", Email: "Camila.Rojas@example.com", Address: "LOS ALERCES 77"},
		{Ref: "p-3", Name: "Luis Fuentes", Phone: "+56 9 5555 1234"},
		{Ref: "p-4", Identifier: "15.000.000-5", Name: "Marta Díaz"},
	}
	predata := []SourceRecord{
		{Identifier: "20.111.222-3", Name: "Marta Diaz Araya", Address: "PASAJE LAS ROSAS 12"},
	}
	return BuildKB(profiles, predata, BuildOptions{})
}

func TestResolveFuzzyNameSignalsBackfill(t *testing.T) {
	kb := newTestKB()

	m := Resolve(IncomingRecord{Identifier: "12345678-9", Name: "PEDRO PEREZ SOTO"}, kb, LinkOptions{})

	require.NotNil(t, m)
	assert.Equal(t, StrategyFuzzyName, m.Strategy)
	assert.Equal(t, "p-1", m.Record.ProfileID)
	assert.True(t, m.Weak)
	assert.True(t, m.Backfill)
	assert.GreaterOrEqual(t, m.Score, LooseThreshold)
}

func TestResolveStrategies(t *testing.T) {
	kb := newTestKB()

	tests := []struct {
		name     string
		in       IncomingRecord
		strategy Strategy
		profile  string
		backfill bool
	}{
		{"identifier", IncomingRecord{Identifier: "98.765.432-1", Name: "otra persona"}, StrategyIdentifier, "p-2", false},
		{"exact name", IncomingRecord{Identifier: "11111111-1", Name: "camila rojas valdes"}, StrategyName, "p-2", true},
		{"email", IncomingRecord{Name: "C. R.", Email: "camila.rojas@EXAMPLE.com"}, StrategyContact, "p-2", false},
		{"phone", IncomingRecord{Name: "L F", Phone: "955551234"}, StrategyContact, "p-3", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := Resolve(test.in, kb, LinkOptions{})
			require.NotNil(t, m)
			assert.Equal(t, test.strategy, m.Strategy)
			assert.Equal(t, test.profile, m.Record.ProfileID)
			assert.Equal(t, test.backfill, m.Backfill)
			assert.False(t, m.Weak)
		})
	}
}

func TestResolveUpgradesMatchWithoutAddress(t *testing.T) {
	kb := BuildKB([]SourceRecord{
		{Ref: "p-4", Identifier: "15.000.000-5", Name: "Marta Díaz"},
	}, []SourceRecord{
		{Name: "Marta Diaz Araya", Address: "PASAJE LAS ROSAS 12"},
	}, BuildOptions{})

	// el identificador encuentra a Marta sin dirección; el nombre completo encuentra
	// un registro de precarga sin RUT que sí la tiene
	m := Resolve(IncomingRecord{Identifier: "15000000-5", Name: "Marta Diaz Araya"}, kb, LinkOptions{})

	require.NotNil(t, m)
	assert.Equal(t, StrategyName, m.Strategy)
	assert.Equal(t, "PASAJE LAS ROSAS 12", m.Record.Address)
	assert.True(t, m.Backfill)
}

func TestResolveUpgradesWeakMatchWithoutAddress(t *testing.T) {
	kb := BuildKB([]SourceRecord{
		{Ref: "p-5", Identifier: "16.000.000-1", Name: "Rodrigo Alarcón Vega"},
		{Ref: "p-6", Identifier: "17.000.000-8", Name: "Rodrigo Alarcon", Address: "CALLE LOS PINOS 45"},
	}, nil, BuildOptions{})

	m := Resolve(IncomingRecord{Name: "Rodrigo Alarcon Vegas", Address: "Los Pinos 45"}, kb, LinkOptions{MatchAddress: true})

	require.NotNil(t, m)
	assert.Equal(t, StrategyAddress, m.Strategy)
	assert.Equal(t, "p-6", m.Record.ProfileID)
	assert.True(t, m.Weak)
}

func TestResolveIdentifierMatchIsNeverReplacedByAnotherPerson(t *testing.T) {
	kb := BuildKB([]SourceRecord{
		{Ref: "p-1", Identifier: "11111111-1", Name: "Juan Perez Soto"},
		{Ref: "p-2", Identifier: "22222222-2", Name: "Juana Peres Silva", Address: "AV PAJARITOS 100"},
	}, nil, BuildOptions{})

	m := Resolve(IncomingRecord{Identifier: "11.111.111-1", Name: "Juan Perez Silva"}, kb, LinkOptions{MatchAddress: true})

	require.NotNil(t, m)
	assert.Equal(t, StrategyIdentifier, m.Strategy)
	assert.Equal(t, "p-1", m.Record.ProfileID)
	assert.False(t, m.Weak)
	assert.False(t, m.Backfill)

	// tampoco ante un nombre exacto de otra persona con RUT distinto
	m = Resolve(IncomingRecord{Identifier: "15000000-5", Name: "Marta Diaz Araya"}, newTestKB(), LinkOptions{})

	require.NotNil(t, m)
	assert.Equal(t, StrategyIdentifier, m.Strategy)
	assert.Equal(t, "p-4", m.Record.ProfileID)
}

func TestResolveKeepsIdentifierMatchWhenNothingBetter(t *testing.T) {
	kb := newTestKB()

	m := Resolve(IncomingRecord{Identifier: "15000000-5"}, kb, LinkOptions{})

	require.NotNil(t, m)
	assert.Equal(t, StrategyIdentifier, m.Strategy)
	assert.Equal(t, "p-4", m.Record.ProfileID)
	assert.False(t, m.Backfill)
}

func TestResolveThresholdIsContextDependent(t *testing.T) {
	kb := BuildKB([]SourceRecord{
		{Ref: "p-9", Name: "Ignacio Andrés Morales Tapia"},
	}, nil, BuildOptions{})
	in := IncomingRecord{Name: "Ignacio Morales Tapia Lagos"}

	loose := Resolve(in, kb, LinkOptions{Threshold: LooseThreshold, Scoring: ScoringRatio})
	strict := Resolve(in, kb, LinkOptions{Threshold: ExportThreshold, Scoring: ScoringRatio})

	// 3 de 4 tokens: 0.75
	require.NotNil(t, loose)
	assert.InDelta(t, 0.75, loose.Score, 1e-9)
	require.NotNil(t, strict)

	in.Name = "Ignacio Morales Lagos"
	assert.NotNil(t, Resolve(in, kb, LinkOptions{Threshold: 0.5, Scoring: ScoringRatio}))
	assert.Nil(t, Resolve(in, kb, LinkOptions{Threshold: ExportThreshold, Scoring: ScoringRatio}))
}

func TestResolveAddressIsOptIn(t *testing.T) {
	kb := newTestKB()
	in := IncomingRecord{Name: "Desconocido", Address: "Los Alerces #77"}

	assert.Nil(t, Resolve(in, kb, LinkOptions{}))

	m := Resolve(in, kb, LinkOptions{MatchAddress: true})
	require.NotNil(t, m)
	assert.Equal(t, StrategyAddress, m.Strategy)
	assert.Equal(t, "p-2", m.Record.ProfileID)
	assert.True(t, m.Weak)
}

func TestResolveWithoutCheckDigit(t *testing.T) {
	kb := newTestKB()
	in := IncomingRecord{Identifier: "98.765.432"}

	assert.Nil(t, Resolve(in, kb, LinkOptions{}))

	m := Resolve(in, kb, LinkOptions{MatchWithoutCheckDigit: true})
	require.NotNil(t, m)
	assert.Equal(t, "p-2", m.Record.ProfileID)
}

func TestResolveEmptyRecordNeverMatches(t *testing.T) {
	kb := newTestKB()

	assert.Nil(t, Resolve(IncomingRecord{}, kb, LinkOptions{MatchAddress: true}))
	assert.Nil(t, Resolve(IncomingRecord{Name: "  ", Identifier: "-"}, kb, LinkOptions{}))
	assert.Nil(t, Resolve(IncomingRecord{Name: "PEDRO PEREZ"}, BuildKB(nil, nil, BuildOptions{}), LinkOptions{}))
	assert.Nil(t, Resolve(IncomingRecord{Name: "PEDRO PEREZ"}, nil, LinkOptions{}))
}

func TestResolvePlaceholderNameIsNotGuessed(t *testing.T) {
	kb := BuildKB([]SourceRecord{{Ref: "p-7", Name: "Vacante Turno Pérez"}}, nil, BuildOptions{})

	assert.Nil(t, Resolve(IncomingRecord{Name: "VACANTE TURNO"}, kb, LinkOptions{}))
}
