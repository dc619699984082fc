package manifest

import (
	"time"
)

type WindowConfig struct {
	EveningHour       int
	MorningHour       int
	SundayMorningHour int
	Location          *time.Location
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		EveningHour:       21,
		MorningHour:       7,
		SundayMorningHour: 8,
		Location:          time.Local,
	}
}

// Window es el tramo nocturno que cubre un manifiesto de traslados. Ambos extremos son inclusivos.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DispatchWindow va desde el día anterior a EveningHour hasta day a MorningHour,
// o a SundayMorningHour cuando day es domingo.
func DispatchWindow(day time.Time, cfg WindowConfig) Window {
	loc := cfg.Location
	if loc == nil {
		loc = day.Location()
	}

	y, m, d := day.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	morning := cfg.MorningHour
	if today.Weekday() == time.Sunday {
		morning = cfg.SundayMorningHour
	}

	yesterday := today.AddDate(0, 0, -1)
	return Window{
		Start: time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), cfg.EveningHour, 0, 0, 0, loc),
		End:   time.Date(y, m, d, morning, 0, 0, 0, loc),
	}
}

// Days devuelve las fechas calendario cuyos turnos pueden empezar o terminar dentro de la ventana.
func (w Window) Days() (time.Time, time.Time) {
	from := time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
	to := time.Date(w.End.Year(), w.End.Month(), w.End.Day(), 0, 0, 0, 0, w.End.Location())
	return from.AddDate(0, 0, -1), to
}
