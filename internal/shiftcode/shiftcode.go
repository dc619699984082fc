package shiftcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Entry es un código fijo de la tabla estática. Los códigos que no son de trabajo
// (licencia, vacaciones, ausencia) tienen Working en false y sin horario.
type Entry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Working     bool   `json:"working"`
	Start       string `json:"start"` // "HH:MM"
	End         string `json:"end"`   // "HH:MM"
}

type Table map[string]Entry

// DefaultTable son los códigos que aparecen en las planillas de remuneraciones.
func DefaultTable() Table {
	return Table{
		"LI":  {Code: "LI", Description: "Licencia médica"},
		"LM":  {Code: "LM", Description: "Licencia médica"},
		"V":   {Code: "V", Description: "Vacaciones"},
		"VAC": {Code: "VAC", Description: "Vacaciones"},
		"AU":  {Code: "AU", Description: "Ausencia"},
		"FA":  {Code: "FA", Description: "Falta"},
		"L":   {Code: "L", Description: "Libre"},
		"LIB": {Code: "LIB", Description: "Libre"},
		"PE":  {Code: "PE", Description: "Permiso"},
		"CO":  {Code: "CO", Description: "Compensado"},
		"ADM": {Code: "ADM", Description: "Horario administrativo", Working: true, Start: "08:30", End: "17:30"},
	}
}

// Merge devuelve una copia de la tabla con las entradas agregadas o reemplazadas.
func (t Table) Merge(entries []Entry) Table {
	merged := make(Table, len(t)+len(entries))
	for code, entry := range t {
		merged[code] = entry
	}
	for _, entry := range entries {
		code := normalizeCode(entry.Code)
		if code == "" {
			continue
		}
		entry.Code = code
		merged[code] = entry
	}
	return merged
}

// Interval es el horario resuelto de un turno. Start y End son nil para los días
// sin compromiso horario.
type Interval struct {
	Code     string     `json:"code"`
	Category string     `json:"category,omitempty"`
	Suffix   string     `json:"suffix,omitempty"`
	Start    *time.Time `json:"start"`
	End      *time.Time `json:"end"`
}

func (i Interval) Working() bool {
	return i.Start != nil
}

func (i Interval) Overnight() bool {
	return i.Start != nil && i.End != nil && i.End.YearDay() != i.Start.YearDay()
}

var (
	// letras de categoría, cuatro dígitos (hora de inicio y de término) y sufijo opcional, ej. M0715, N2206C
	encodedRe = regexp.MustCompile(`^([A-Z]+)(\d{2})(\d{2})([A-Z]*)$`)
	bareRe    = regexp.MustCompile(`^(\d{2})(\d{2})$`)
	clockRe   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	rangeRe   = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})$`)
)

// Resolve convierte un código de turno en su horario para la fecha dada.
// Un código desconocido no es un error: se trata como día sin horario.
// Si el término no es posterior al inicio, el turno termina al día siguiente.
func Resolve(code string, date time.Time, table Table) Interval {
	code = normalizeCode(code)
	interval := Interval{Code: code}
	if code == "" {
		return interval
	}

	if entry, ok := table[code]; ok {
		if !entry.Working {
			return interval
		}
		sh, sm, err := parseClock(entry.Start)
		if err != nil {
			return interval
		}
		eh, em, err := parseClock(entry.End)
		if err != nil {
			return interval
		}
		interval.Start, interval.End = span(date, sh, sm, eh, em)
		return interval
	}

	if m := encodedRe.FindStringSubmatch(code); m != nil {
		sh, eh := atoi(m[2]), atoi(m[3])
		if validHour(sh) && validHour(eh) {
			interval.Category = m[1]
			interval.Suffix = m[4]
			interval.Start, interval.End = span(date, sh, 0, eh, 0)
		}
		return interval
	}

	if m := bareRe.FindStringSubmatch(code); m != nil {
		sh, eh := atoi(m[1]), atoi(m[2])
		if validHour(sh) && validHour(eh) {
			interval.Start, interval.End = span(date, sh, 0, eh, 0)
		}
		return interval
	}

	if m := rangeRe.FindStringSubmatch(code); m != nil {
		sh, sm, eh, em := atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4])
		if validHour(sh) && validHour(eh) && validMinute(sm) && validMinute(em) {
			interval.Start, interval.End = span(date, sh, sm, eh, em)
		}
		return interval
	}

	if m := clockRe.FindStringSubmatch(code); m != nil {
		sh, sm := atoi(m[1]), atoi(m[2])
		if validHour(sh) && validMinute(sm) {
			start := at(date, sh, sm)
			interval.Start = &start
		}
		return interval
	}

	return interval
}

// ValidateEntry revisa que una entrada de trabajo tenga un horario legible.
func ValidateEntry(entry Entry) error {
	if normalizeCode(entry.Code) == "" {
		return fmt.Errorf("el código no puede estar vacío")
	}
	if !entry.Working {
		return nil
	}
	if _, _, err := parseClock(entry.Start); err != nil {
		return fmt.Errorf("código %s: hora de inicio inválida: %w", entry.Code, err)
	}
	if _, _, err := parseClock(entry.End); err != nil {
		return fmt.Errorf("código %s: hora de término inválida: %w", entry.Code, err)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func span(date time.Time, sh, sm, eh, em int) (*time.Time, *time.Time) {
	start := at(date, sh, sm)
	end := at(date, eh, em)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return &start, &end
}

// at usa la fecha calendario de date en su zona horaria; la hora 24 pasa al día siguiente.
func at(date time.Time, hour, minute int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, date.Location())
}

func parseClock(s string) (int, int, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("formato de hora inválido %q", s)
	}
	h, min := atoi(m[1]), atoi(m[2])
	if !validHour(h) || !validMinute(min) {
		return 0, 0, fmt.Errorf("hora fuera de rango %q", s)
	}
	return h, min, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func validHour(h int) bool {
	return h >= 0 && h <= 24
}

func validMinute(m int) bool {
	return m >= 0 && m <= 59
}
