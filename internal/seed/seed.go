package seed

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mobility-ops/console/backend/internal/identity"
	"github.com/mobility-ops/console/backend/internal/repository"
	"github.com/mobility-ops/console/backend/internal/roster"
	"github.com/mobility-ops/console/backend/internal/shiftcode"
)

// SeedPredata carga una planilla de precarga desde disco.
func SeedPredata(r *repository.Repository, path string, replace bool) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("no se pudo abrir el archivo", "path", path, "error", err)
		return
	}
	defer file.Close()

	sheet, err := roster.ParseCSV(file)
	if err != nil {
		slog.Error("no se pudo leer la planilla", "path", path, "error", err)
		return
	}

	records := sheet.Predata()
	if len(records) == 0 {
		slog.Error("la planilla no tiene filas con RUT o nombre", "path", path)
		return
	}

	if err := r.InsertPredata(records, replace); err != nil {
		slog.Error("no se pudo insertar la precarga", "error", err)
		return
	}

	slog.Info("precarga insertada", "count", len(records), "skipped", len(sheet.Rows)-len(records))
}

// SeedRoster importa una planilla de turnos contra los perfiles y la precarga
// existentes. No completa RUT de perfiles: eso queda para la importación por la API.
func SeedRoster(r *repository.Repository, path string, loc *time.Location, opts identity.LinkOptions) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("no se pudo abrir el archivo", "path", path, "error", err)
		return
	}
	defer file.Close()

	sheet, err := roster.ParseCSV(file)
	if err != nil {
		slog.Error("no se pudo leer la planilla", "path", path, "error", err)
		return
	}
	if len(sheet.Days) == 0 {
		slog.Error("la planilla no tiene columnas de fecha", "path", path)
		return
	}

	profiles, err := r.GetAllProfiles()
	if err != nil {
		slog.Error("no se pudieron obtener los perfiles", "error", err)
		return
	}
	predata, err := r.GetAllPredata()
	if err != nil {
		slog.Error("no se pudo obtener la precarga", "error", err)
		return
	}

	entries, err := r.GetAllShiftCodes()
	if err != nil {
		slog.Error("no se pudieron obtener los códigos de turno", "error", err)
		return
	}

	kb := roster.KnowledgeBase(profiles, predata)
	linked := roster.Link(sheet, kb, opts)

	batchID := uuid.New()
	shifts := roster.BuildShifts(batchID, linked, shiftcode.DefaultTable().Merge(entries), loc)
	if err := r.InsertRosterShifts(shifts); err != nil {
		slog.Error("no se pudieron insertar los turnos", "error", err)
		return
	}

	summary := roster.Summarize(batchID, sheet, linked, shifts)
	for _, name := range summary.Unmatched {
		slog.Warn("fila sin vínculo", "name", name)
	}
	slog.Info("turnos insertados",
		"batch", batchID,
		"rows", summary.Rows,
		"shifts", summary.Shifts,
		"weak", summary.Weak,
		"unmatched", len(summary.Unmatched),
	)
}
