package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mobility-ops/console/backend/internal/config"
	"github.com/mobility-ops/console/backend/internal/shiftcode"
)

// ValidateConfig revisa lo que env no puede validar: la ventana de traslados, la zona
// horaria y los parámetros de vinculación.
func ValidateConfig(cfg *config.Config) error {
	d := cfg.Dispatch
	for name, hour := range map[string]int{
		"DISPATCH_EVENING_HOUR":        d.EveningHour,
		"DISPATCH_MORNING_HOUR":        d.MorningHour,
		"DISPATCH_SUNDAY_MORNING_HOUR": d.SundayMorningHour,
	} {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("%s debe estar entre 0 y 23, se recibió %d", name, hour)
		}
	}

	// la ventana cruza la medianoche
	if d.MorningHour >= d.EveningHour || d.SundayMorningHour >= d.EveningHour {
		return errors.New("la hora de término de la ventana debe ser anterior a la hora de inicio")
	}

	if _, err := time.LoadLocation(d.TimeZone); err != nil {
		return fmt.Errorf("zona horaria inválida %q: %w", d.TimeZone, err)
	}

	m := cfg.Matching
	if m.LooseThreshold <= 0 || m.LooseThreshold > 1 || m.ExportThreshold <= 0 || m.ExportThreshold > 1 {
		return errors.New("los umbrales de vinculación deben estar entre 0 y 1")
	}
	if m.Scoring != "tiered" && m.Scoring != "ratio" {
		return fmt.Errorf("MATCHING_SCORING desconocido %q, usa tiered o ratio", m.Scoring)
	}

	return nil
}

// ValidateShiftCodeEntries revisa cada entrada y rechaza códigos repetidos.
func ValidateShiftCodeEntries(entries []shiftcode.Entry) error {
	seen := make(map[string]bool)
	for i, entry := range entries {
		if err := shiftcode.ValidateEntry(entry); err != nil {
			return fmt.Errorf("entrada %d: %w", i+1, err)
		}
		code := strings.ToUpper(strings.TrimSpace(entry.Code))
		if seen[code] {
			return fmt.Errorf("el código %s está repetido", code)
		}
		seen[code] = true
	}
	return nil
}
