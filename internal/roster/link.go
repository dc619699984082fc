package roster

import (
	"time"

	"github.com/google/uuid"
	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/identity"
	"github.com/mobility-ops/console/backend/internal/shiftcode"
)

type LinkedRow struct {
	Row   Row
	Match *identity.Match
}

func Link(sheet *Sheet, kb *identity.KnowledgeBase, opts identity.LinkOptions) []LinkedRow {
	linked := make([]LinkedRow, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		linked = append(linked, LinkedRow{
			Row:   row,
			Match: identity.Resolve(row.Incoming(), kb, opts),
		})
	}
	return linked
}

// BuildShifts convierte cada celda con código en un turno listo para guardar.
// El horario se resuelve con la fecha de la celda en loc.
func BuildShifts(batchID uuid.UUID, linked []LinkedRow, table shiftcode.Table, loc *time.Location) []*domain.RosterShift {
	if loc == nil {
		loc = time.Local
	}

	shifts := make([]*domain.RosterShift, 0)
	for _, lr := range linked {
		var profileID *uuid.UUID
		strategy := ""
		score := 0.0
		if lr.Match != nil {
			strategy = string(lr.Match.Strategy)
			score = lr.Match.Score
			if id, err := uuid.Parse(lr.Match.Record.ProfileID); err == nil {
				profileID = &id
			}
		}

		for _, cell := range lr.Row.Cells {
			day := time.Date(cell.Day.Year(), cell.Day.Month(), cell.Day.Day(), 0, 0, 0, 0, loc)
			interval := shiftcode.Resolve(cell.Code, day, table)

			shifts = append(shifts, &domain.RosterShift{
				BatchID:       batchID,
				RowNumber:     lr.Row.Number,
				Day:           day,
				Code:          interval.Code,
				Identifier:    lr.Row.Identifier,
				FullName:      lr.Row.Name,
				Email:         lr.Row.Email,
				Phone:         lr.Row.Phone,
				Address:       lr.Row.Address,
				ProfileID:     profileID,
				MatchStrategy: strategy,
				MatchScore:    score,
				StartsAt:      interval.Start,
				EndsAt:        interval.End,
			})
		}
	}
	return shifts
}

// Candidate es un identificador que la planilla aporta a un perfil.
// Auto indica que se puede escribir sin confirmación: vínculo fuerte y perfil sin RUT.
type Candidate struct {
	ProfileID  string
	Record     *identity.IdentityRecord
	Identifier string
	SourceName string
	Strategy   identity.Strategy
	Score      float64
	Weak       bool
	Auto       bool
}

// Backfills reúne los vínculos que piden completar el identificador de un perfil.
// Si dos filas proponen identificadores distintos para el mismo perfil, ninguno se
// aplica automáticamente.
func Backfills(linked []LinkedRow) []Candidate {
	candidates := make([]Candidate, 0)
	byProfile := make(map[string]int)

	for _, lr := range linked {
		m := lr.Match
		if m == nil || !m.Backfill || m.Record.ProfileID == "" {
			continue
		}
		id := identity.NormalizeIdentifier(lr.Row.Identifier)
		if id == "" {
			continue
		}

		if i, ok := byProfile[m.Record.ProfileID]; ok {
			if candidates[i].Identifier != id {
				candidates[i].Auto = false
			}
			continue
		}

		byProfile[m.Record.ProfileID] = len(candidates)
		candidates = append(candidates, Candidate{
			ProfileID:  m.Record.ProfileID,
			Record:     m.Record,
			Identifier: id,
			SourceName: lr.Row.Name,
			Strategy:   m.Strategy,
			Score:      m.Score,
			Weak:       m.Weak,
			Auto:       !m.Weak && m.Record.Identifier == "",
		})
	}

	return candidates
}

type Summary struct {
	BatchID     uuid.UUID                 `json:"batchId"`
	Rows        int                       `json:"rows"`
	Shifts      int                       `json:"shifts"`
	Days        int                       `json:"days"`
	Strategies  map[identity.Strategy]int `json:"strategies"`
	Weak        int                       `json:"weak"`
	Unmatched   []string                  `json:"unmatched"`
	Backfilled  int                       `json:"backfilled"`
	Suggestions int                       `json:"suggestions"`
}

func Summarize(batchID uuid.UUID, sheet *Sheet, linked []LinkedRow, shifts []*domain.RosterShift) *Summary {
	s := &Summary{
		BatchID:    batchID,
		Rows:       len(linked),
		Shifts:     len(shifts),
		Days:       len(sheet.Days),
		Strategies: make(map[identity.Strategy]int),
		Unmatched:  make([]string, 0),
	}
	for _, lr := range linked {
		if lr.Match == nil {
			name := lr.Row.Name
			if name == "" {
				name = lr.Row.Identifier
			}
			s.Unmatched = append(s.Unmatched, name)
			continue
		}
		s.Strategies[lr.Match.Strategy]++
		if lr.Match.Weak {
			s.Weak++
		}
	}
	return s
}
