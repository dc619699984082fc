package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/mobility-ops/console/backend/internal/config"
	"github.com/mobility-ops/console/backend/internal/identity"
	"github.com/mobility-ops/console/backend/internal/repository"
	"github.com/mobility-ops/console/backend/internal/seed"
	"github.com/mobility-ops/console/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var file string
	var replace bool

	flag.IntVar(&op, "op", 0, "operación a ejecutar (1: perfiles aleatorios, 2: precarga desde CSV, 3: planilla de turnos desde CSV)")
	flag.IntVar(&n, "n", 5, "cantidad de perfiles a insertar")
	flag.StringVar(&file, "file", "", "ruta del CSV para las operaciones 2 y 3")
	flag.BoolVar(&replace, "replace", false, "reemplazar la precarga existente")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// leer la configuración
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo leer la configuración", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := utils.ValidateConfig(cfg); err != nil {
		logger.Error("configuración inválida", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// pool de conexiones
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("no se pudo crear el pool de conexiones", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open no conecta, hay que hacer ping
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("no se pudo conectar a la base de datos", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no se indicó la operación")
	case 1:
		if n <= 0 {
			slog.Error("la cantidad de perfiles debe ser positiva")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			profile := utils.GenerateRandomProfile(cfg.Seed.EmailDomain)
			if err := repo.CreateProfile(profile); err != nil {
				slog.Error("no se pudo insertar el perfil", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("perfiles insertados", slog.Int("count", cnt))
	case 2:
		if file == "" {
			slog.Error("falta -file con la planilla de precarga")
			return
		}
		seed.SeedPredata(repo, file, replace)
	case 3:
		if file == "" {
			slog.Error("falta -file con la planilla de turnos")
			return
		}

		loc, err := time.LoadLocation(cfg.Dispatch.TimeZone)
		if err != nil {
			slog.Error("zona horaria inválida", "error", err)
			return
		}

		var matcher *identity.Matcher
		if len(cfg.Matching.Stoplist) > 0 {
			matcher = identity.NewMatcher(append(append([]string{}, identity.DefaultStoplist...), cfg.Matching.Stoplist...))
		}

		seed.SeedRoster(repo, file, loc, identity.LinkOptions{
			Threshold:              cfg.Matching.LooseThreshold,
			Scoring:                identity.Scoring(cfg.Matching.Scoring),
			Matcher:                matcher,
			MatchAddress:           cfg.Matching.MatchAddress,
			MatchWithoutCheckDigit: cfg.Matching.MatchWithoutCheckDigit,
		})
	default:
		slog.Error("operación inválida")
	}
}
