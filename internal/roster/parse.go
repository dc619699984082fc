package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mobility-ops/console/backend/internal/domain"
	"github.com/mobility-ops/console/backend/internal/identity"
	"golang.org/x/text/encoding/charmap"
)

var ErrNoIdentityColumns = errors.New("la planilla no tiene columna de RUT ni de nombre")

type Field string

const (
	FieldIdentifier Field = "identifier"
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldAddress    Field = "address"
	FieldCommune    Field = "commune"
)

// encabezados normalizados con identity.NormalizeName
var headerAliases = map[string]Field{
	"RUT":                FieldIdentifier,
	"RUN":                FieldIdentifier,
	"IDENTIFICADOR":      FieldIdentifier,
	"DOCUMENTO":          FieldIdentifier,
	"NOMBRE":             FieldName,
	"NOMBRE COMPLETO":    FieldName,
	"NOMBRES":            FieldName,
	"TRABAJADOR":         FieldName,
	"COLABORADOR":        FieldName,
	"EMAIL":              FieldEmail,
	"E-MAIL":             FieldEmail,
	"CORREO":             FieldEmail,
	"CORREO ELECTRONICO": FieldEmail,
	"TELEFONO":           FieldPhone,
	"CELULAR":            FieldPhone,
	"FONO":               FieldPhone,
	"DIRECCION":          FieldAddress,
	"DOMICILIO":          FieldAddress,
	"COMUNA":             FieldCommune,
}

var dayLayouts = []string{"2006-01-02", "02-01-2006", "2-1-2006", "02/01/2006", "2/1/2006"}

type Cell struct {
	Day  time.Time
	Code string
}

type Row struct {
	Number     int
	Identifier string
	Name       string
	Email      string
	Phone      string
	Address    string
	Commune    string
	Cells      []Cell
}

func (r Row) Incoming() identity.IncomingRecord {
	return identity.IncomingRecord{
		Identifier: r.Identifier,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
	}
}

type Sheet struct {
	Days []time.Time
	Rows []Row
}

// ParseCSV lee una planilla exportada desde una hoja de cálculo. Acepta UTF-8 (con o
// sin BOM) o Latin-1, separada por punto y coma o por coma. Las columnas cuyo
// encabezado es una fecha son días del turno; el resto se reconoce por alias y las
// columnas desconocidas se ignoran.
func ParseCSV(r io.Reader) (*Sheet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	data, err := decode(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("la planilla está vacía")
		}
		return nil, fmt.Errorf("no se pudo leer el encabezado: %w", err)
	}

	fields := make(map[int]Field)
	days := make(map[int]time.Time)
	sheet := &Sheet{Days: make([]time.Time, 0), Rows: make([]Row, 0)}

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if day, ok := parseDay(header); ok {
			days[i] = day
			sheet.Days = append(sheet.Days, day)
			continue
		}
		if field, ok := headerAliases[identity.NormalizeName(header)]; ok {
			if _, dup := fieldIndex(fields, field); !dup {
				fields[i] = field
			}
		}
	}

	_, hasID := fieldIndex(fields, FieldIdentifier)
	_, hasName := fieldIndex(fields, FieldName)
	if !hasID && !hasName {
		return nil, ErrNoIdentityColumns
	}

	line := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("no se pudo leer la fila %d: %w", line+1, err)
		}
		line++

		row := Row{Number: line, Cells: make([]Cell, 0, len(days))}
		empty := true
		for i, value := range record {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			empty = false

			if day, ok := days[i]; ok {
				row.Cells = append(row.Cells, Cell{Day: day, Code: strings.ToUpper(value)})
				continue
			}

			switch fields[i] {
			case FieldIdentifier:
				row.Identifier = value
			case FieldName:
				row.Name = value
			case FieldEmail:
				row.Email = value
			case FieldPhone:
				row.Phone = value
			case FieldAddress:
				row.Address = value
			case FieldCommune:
				row.Commune = value
			}
		}

		if empty {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}

func decode(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return raw, nil
	}

	data, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("no se pudo decodificar la planilla: %w", err)
	}
	return data, nil
}

func detectDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}

func parseDay(header string) (time.Time, bool) {
	for _, layout := range dayLayouts {
		if day, err := time.Parse(layout, header); err == nil {
			return day, true
		}
	}
	return time.Time{}, false
}

func fieldIndex(fields map[int]Field, field Field) (int, bool) {
	for i, f := range fields {
		if f == field {
			return i, true
		}
	}
	return 0, false
}

// Predata convierte la planilla en registros de precarga, sin las filas que no
// tienen RUT ni nombre.
func (s *Sheet) Predata() []*domain.Predata {
	records := make([]*domain.Predata, 0, len(s.Rows))
	for _, row := range s.Rows {
		nationalID := identity.NormalizeIdentifier(row.Identifier)
		if nationalID == "" && identity.NormalizeName(row.Name) == "" {
			continue
		}
		records = append(records, &domain.Predata{
			NationalID: nationalID,
			FullName:   row.Name,
			Email:      identity.NormalizeEmail(row.Email),
			Phone:      row.Phone,
			Address:    row.Address,
			Commune:    row.Commune,
		})
	}
	return records
}
