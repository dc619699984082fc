package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/identity"
	"github.com/mobility-ops/console/backend/internal/shiftcode"
)

type Kind string

const (
	KindPickup  Kind = "pickup"
	KindDropoff Kind = "dropoff"
)

var kindLabels = map[Kind]string{
	KindPickup:  "Recogida",
	KindDropoff: "Retorno",
}

type Entry struct {
	Kind       Kind              `json:"kind"`
	At         time.Time         `json:"at"`
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	Identifier string            `json:"identifier"`
	Address    string            `json:"address"`
	Commune    string            `json:"commune"`
	Phone      string            `json:"phone"`
	ProfileID  string            `json:"profileId,omitempty"`
	Matched    bool              `json:"matched"`
	Strategy   identity.Strategy `json:"strategy,omitempty"`
	Score      float64           `json:"score"`
	Weak       bool              `json:"weak"`
}

type Manifest struct {
	Window    Window   `json:"window"`
	Entries   []Entry  `json:"entries"`
	Unmatched []string `json:"unmatched"`
}

func (m *Manifest) Count(kind Kind) int {
	n := 0
	for _, e := range m.Entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Build arma el manifiesto de traslados de la ventana: una recogida por cada turno que
// empieza dentro de ella y un retorno por cada turno que termina dentro de ella.
// Cada fila se vincula contra kb con las opciones dadas; una fila sin vínculo igual
// aparece, con los datos de la planilla y Matched en false.
func Build(shifts []*domain.RosterShift, kb *identity.KnowledgeBase, table shiftcode.Table, window Window, opts identity.LinkOptions) *Manifest {
	m := &Manifest{
		Window:    window,
		Entries:   make([]Entry, 0),
		Unmatched: make([]string, 0),
	}

	loc := window.Start.Location()
	links := make(map[string]*identity.Match)
	unmatched := make(map[string]struct{})

	for _, shift := range shifts {
		day := time.Date(shift.Day.Year(), shift.Day.Month(), shift.Day.Day(), 0, 0, 0, 0, loc)
		interval := shiftcode.Resolve(shift.Code, day, table)
		if !interval.Working() {
			continue
		}

		pickup := window.Contains(*interval.Start)
		dropoff := interval.End != nil && window.Contains(*interval.End)
		if !pickup && !dropoff {
			continue
		}

		key := linkKey(shift)
		match, ok := links[key]
		if !ok {
			match = identity.Resolve(identity.IncomingRecord{
				Identifier: shift.Identifier,
				Name:       shift.FullName,
				Email:      shift.Email,
				Phone:      shift.Phone,
				Address:    shift.Address,
			}, kb, opts)
			links[key] = match
		}

		base := entryFor(shift, interval.Code, match)
		if match == nil {
			if _, seen := unmatched[key]; !seen {
				unmatched[key] = struct{}{}
				m.Unmatched = append(m.Unmatched, shift.FullName)
			}
		}

		if pickup {
			e := base
			e.Kind = KindPickup
			e.At = *interval.Start
			m.Entries = append(m.Entries, e)
		}
		if dropoff {
			e := base
			e.Kind = KindDropoff
			e.At = *interval.End
			m.Entries = append(m.Entries, e)
		}
	}

	sort.SliceStable(m.Entries, func(i, j int) bool {
		if !m.Entries[i].At.Equal(m.Entries[j].At) {
			return m.Entries[i].At.Before(m.Entries[j].At)
		}
		return m.Entries[i].Name < m.Entries[j].Name
	})

	return m
}

func linkKey(shift *domain.RosterShift) string {
	return strings.Join([]string{
		identity.NormalizeIdentifier(shift.Identifier),
		identity.NormalizeName(shift.FullName),
		identity.NormalizeEmail(shift.Email),
		identity.NormalizePhone(shift.Phone),
	}, "|")
}

func entryFor(shift *domain.RosterShift, code string, match *identity.Match) Entry {
	e := Entry{
		Code:       code,
		Name:       shift.FullName,
		Identifier: shift.Identifier,
		Address:    shift.Address,
		Phone:      shift.Phone,
	}
	if match == nil {
		return e
	}

	rec := match.Record
	e.Matched = true
	e.Strategy = match.Strategy
	e.Score = match.Score
	e.Weak = match.Weak
	e.ProfileID = rec.ProfileID
	if rec.Name != "" {
		e.Name = rec.Name
	}
	if rec.Identifier != "" {
		e.Identifier = rec.Identifier
	}
	if rec.Address != "" {
		e.Address = rec.Address
	}
	if rec.Phone != "" {
		e.Phone = rec.Phone
	}
	e.Commune = rec.Commune
	return e
}

var csvHeader = []string{"Tipo", "Fecha", "Hora", "Código", "Nombre", "RUT", "Dirección", "Comuna", "Teléfono", "Vinculado", "Estrategia"}

// WriteCSV escribe el manifiesto separado por punto y coma, con BOM para que las
// planillas reconozcan UTF-8.
func WriteCSV(w io.Writer, m *Manifest) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range m.Entries {
		linked := "No"
		if e.Matched {
			linked = "Sí"
			if e.Weak {
				linked = "Sí (revisar)"
			}
		}
		row := []string{
			kindLabels[e.Kind],
			e.At.Format("02-01-2006"),
			e.At.Format("15:04"),
			e.Code,
			e.Name,
			e.Identifier,
			e.Address,
			e.Commune,
			e.Phone,
			linked,
			string(e.Strategy),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("no se pudo escribir la fila de %s: %w", e.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FileName es el nombre con que se adjunta o sube el manifiesto de una fecha.
func FileName(day time.Time) string {
	return fmt.Sprintf("manifiesto-traslados-%s.csv", day.Format("2006-01-02"))
}
