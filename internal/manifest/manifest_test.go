package manifest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/identity"
	"github.com/mobility-ops/console/backend/internal/shiftcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchWindow(t *testing.T) {
	cfg := DefaultWindowConfig()
	cfg.Location = time.UTC

	monday := time.Date(2024, time.March, 4, 15, 30, 0, 0, time.UTC)
	w := DispatchWindow(monday, cfg)
	assert.Equal(t, time.Date(2024, time.March, 3, 21, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC), w.End)

	sunday := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	w = DispatchWindow(sunday, cfg)
	assert.Equal(t, time.Date(2024, time.March, 2, 21, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, time.March, 3, 8, 0, 0, 0, time.UTC), w.End)
}

func TestDispatchWindowUsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("CLT", -3*60*60)
	cfg := DefaultWindowConfig()
	cfg.Location = loc

	// 01:00 UTC del martes todavía es lunes en CLT
	w := DispatchWindow(time.Date(2024, time.March, 5, 1, 0, 0, 0, time.UTC), cfg)

	assert.Equal(t, time.Date(2024, time.March, 3, 21, 0, 0, 0, loc), w.Start)
	assert.Equal(t, time.Date(2024, time.March, 4, 7, 0, 0, 0, loc), w.End)
}

func TestWindowContainsIsInclusive(t *testing.T) {
	w := Window{
		Start: time.Date(2024, time.March, 3, 21, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC),
	}

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.End.Add(time.Minute)))
	assert.False(t, w.Contains(w.Start.Add(-time.Minute)))

	from, to := w.Days()
	assert.Equal(t, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), to)
}

func testShifts() []*domain.RosterShift {
	sunday := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	monday := sunday.AddDate(0, 0, 1)

	return []*domain.RosterShift{
		{RowNumber: 1, Day: sunday, Code: "N2206", Identifier: "12345678-9", FullName: "PEDRO PEREZ SOTO"},
		{RowNumber: 2, Day: monday, Code: "M0715", Identifier: "98.765.432-1", FullName: "ROJAS CAMILA"},
		{RowNumber: 2, Day: sunday, Code: "LI", Identifier: "98.765.432-1", FullName: "ROJAS CAMILA"},
		{RowNumber: 3, Day: sunday, Code: "T1523", FullName: "JUAN NADIE", Address: "CALLE SIN NOMBRE 1"},
		{RowNumber: 3, Day: monday, Code: "T1523", FullName: "JUAN NADIE"},
	}
}

func testKB() *identity.KnowledgeBase {
	return identity.BuildKB([]identity.SourceRecord{
		{Ref: "p-1", Identifier: "12345678K", Name: "PEDRO A PEREZ SOTO", Address: "AV SIEMPREVIVA 742"},
		{Ref: "p-2", Identifier: "98765432-1", Name: "Camila Rojas Valdés", Address: "LOS ALERCES 77", Commune: "Pudahuel"},
	}, nil, identity.BuildOptions{})
}

func TestBuild(t *testing.T) {
	window := DispatchWindow(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), WindowConfig{
		EveningHour: 21, MorningHour: 7, SundayMorningHour: 8, Location: time.UTC,
	})

	m := Build(testShifts(), testKB(), shiftcode.DefaultTable(), window, identity.LinkOptions{Threshold: identity.ExportThreshold})

	require.Len(t, m.Entries, 4)

	pedroIn := m.Entries[0]
	assert.Equal(t, KindPickup, pedroIn.Kind)
	assert.Equal(t, 22, pedroIn.At.Hour())
	assert.Equal(t, "PEDRO A PEREZ SOTO", pedroIn.Name)
	assert.Equal(t, "AV SIEMPREVIVA 742", pedroIn.Address)
	assert.Equal(t, identity.StrategyFuzzyName, pedroIn.Strategy)
	assert.True(t, pedroIn.Weak)
	assert.Equal(t, "p-1", pedroIn.ProfileID)

	juan := m.Entries[1]
	assert.Equal(t, KindDropoff, juan.Kind)
	assert.Equal(t, 23, juan.At.Hour())
	assert.False(t, juan.Matched)
	assert.Equal(t, "CALLE SIN NOMBRE 1", juan.Address)

	pedroOut := m.Entries[2]
	assert.Equal(t, KindDropoff, pedroOut.Kind)
	assert.Equal(t, time.Date(2024, time.March, 4, 6, 0, 0, 0, time.UTC), pedroOut.At)

	camila := m.Entries[3]
	assert.Equal(t, KindPickup, camila.Kind)
	assert.Equal(t, identity.StrategyIdentifier, camila.Strategy)
	assert.Equal(t, "Pudahuel", camila.Commune)
	assert.Equal(t, 7, camila.At.Hour())

	assert.Equal(t, []string{"JUAN NADIE"}, m.Unmatched)
	assert.Equal(t, 2, m.Count(KindPickup))
	assert.Equal(t, 2, m.Count(KindDropoff))
}

func TestBuildWithoutShifts(t *testing.T) {
	m := Build(nil, testKB(), shiftcode.DefaultTable(), Window{}, identity.LinkOptions{})

	assert.Empty(t, m.Entries)
	assert.Empty(t, m.Unmatched)
}

func TestWriteCSV(t *testing.T) {
	window := DispatchWindow(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), WindowConfig{
		EveningHour: 21, MorningHour: 7, SundayMorningHour: 8, Location: time.UTC,
	})
	m := Build(testShifts(), testKB(), shiftcode.DefaultTable(), window, identity.LinkOptions{Threshold: identity.ExportThreshold})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, m))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\ufeffTipo;Fecha;Hora;"))

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(out, "\ufeff")), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Recogida;03-03-2024;22:00;N2206;PEDRO A PEREZ SOTO;12345678K;AV SIEMPREVIVA 742;;;Sí (revisar);fuzzy_name", lines[1])
	assert.Equal(t, "Retorno;03-03-2024;23:00;T1523;JUAN NADIE;;CALLE SIN NOMBRE 1;;;No;", lines[2])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "manifiesto-traslados-2024-03-04.csv", FileName(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)))
}
