package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mobility-ops/console/backend/internal/config"
	"github.com/mobility-ops/console/backend/internal/handler"
	"github.com/mobility-ops/console/backend/internal/repository"
	"github.com/mobility-ops/console/backend/internal/shiftcode"
	"github.com/mobility-ops/console/backend/internal/storage"
	"github.com/mobility-ops/console/backend/internal/utils"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * configuración
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo cargar la configuración", "error", err)
		return
	}
	if err := utils.ValidateConfig(cfg); err != nil {
		logger.Error("configuración inválida", "error", err)
		return
	}

	/**********************************************
	 * base de datos
	 **********************************************/
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

	/**********************************************
	 * repository
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * tabla de códigos de turno
	 **********************************************/
	entries, err := repo.GetAllShiftCodes()
	if err != nil {
		logger.Error("no se pudieron cargar los códigos de turno", "error", err)
		return
	}
	if err := utils.ValidateShiftCodeEntries(entries); err != nil {
		// Resolve trata una entrada inválida como código sin horario
		logger.Warn("hay códigos de turno inválidos en la base de datos", "error", err)
	}
	codes := shiftcode.DefaultTable().Merge(entries)
	logger.Info("códigos de turno cargados", "count", len(codes), "custom", len(entries))

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("no se pudo conectar a rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("no se pudo abrir el canal", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		"email_queue",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("no se pudo declarar la cola", "error", err)
		return
	}

	/**********************************************
	 * redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer rdb.Close()

	redisCtx, redisCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer redisCancel()
	if err := rdb.Ping(redisCtx).Err(); err != nil {
		logger.Error("no se pudo conectar a redis", "error", err)
		return
	}

	/**********************************************
	 * almacenamiento de objetos
	 **********************************************/
	sink, err := storage.NewObjectSink(cfg)
	if err != nil {
		logger.Error("no se pudo configurar el almacenamiento", "error", err)
		return
	}
	if sink == nil {
		logger.Info("sin almacenamiento de objetos, los manifiestos solo se envían por correo")
	} else if err := sink.EnsureBucket(); err != nil {
		logger.Error("no se pudo preparar el bucket", "bucket", cfg.Storage.Bucket, "error", err)
		return
	}

	/**********************************************
	 * handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, repo, ch, rdb, sink, codes)
	if err != nil {
		logger.Error("no se pudo crear el handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * servidor HTTP
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("iniciando el servidor...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("no se pudo iniciar el servidor", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("cerrando el servidor...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("no se pudo cerrar el servidor", slog.String("error", err.Error()))
	}
	logger.Info("servidor cerrado")
}
