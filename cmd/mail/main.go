package main

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mobility-ops/console/backend/internal/config"
	"github.com/mobility-ops/console/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
)

// incomingMail difiere la decodificación de Data hasta conocer el tipo.
type incomingMail struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// buildBody arma asunto, cuerpo y adjuntos según el tipo de correo.
func buildBody(m *mail.Msg, in incomingMail) error {
	switch in.Type {
	case "backfill_review":
		data := domain.BackfillReviewMailData{}
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return err
		}
		tmpl, err := template.ParseFiles("./templates/backfill_review.html")
		if err != nil {
			return err
		}
		if err := m.SetBodyHTMLTemplate(tmpl, data); err != nil {
			return err
		}
		m.Subject(fmt.Sprintf("Consola de movilidad - %d RUT por confirmar", len(data.Suggestions)))
	case "dispatch_manifest":
		data := domain.DispatchManifestMailData{}
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return err
		}
		tmpl, err := template.ParseFiles("./templates/dispatch_manifest.html")
		if err != nil {
			return err
		}
		if err := m.SetBodyHTMLTemplate(tmpl, data); err != nil {
			return err
		}
		if len(data.AttachmentCSV) > 0 {
			if err := m.AttachReader(data.AttachmentName, bytes.NewReader(data.AttachmentCSV)); err != nil {
				return err
			}
		}
		m.Subject("Consola de movilidad - Manifiesto de traslados " + data.Date)
	default:
		return fmt.Errorf("tipo de correo no soportado: %s", in.Type)
	}
	return nil
}

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * configuración
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo leer la configuración", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * cliente de correo
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("no se pudo crear el cliente de correo", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// comprobar la conexión antes de consumir
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("no se pudo conectar al servidor SMTP", slog.String("error", err.Error()))
		return
	}

	gob.Register(mail.NewMsg())

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("no se pudo conectar a RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("no se pudo abrir el canal", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"email_queue", // nombre
		true,          // durable
		false,         // auto-delete, en false para que sobreviva sin consumidores
		false,         // exclusiva
		false,         // no-wait
		nil,
	)
	if err != nil {
		logger.Error("no se pudo declarar la cola", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name, // cola
		"",     // consumidor, lo asigna RabbitMQ
		false,  // auto-ack
		false,  // exclusiva
		false,  // no-local, RabbitMQ no lo soporta
		false,  // no-wait
		nil,
	)
	if err != nil {
		logger.Error("no se pudo consumir la cola", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("el canal de mensajes se cerró")
					return
				}

				in := incomingMail{}
				if err := json.Unmarshal(msg.Body, &in); err != nil {
					logger.Error("no se pudo decodificar el mensaje", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				logger.Info("mensaje recibido", slog.String("type", in.Type), slog.String("to", in.To))

				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("remitente inválido", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(in.To); err != nil {
					logger.Error("destinatario inválido", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := buildBody(m, in); err != nil {
					logger.Error("no se pudo armar el correo", slog.String("type", in.Type), slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					logger.Error("no se pudo enviar el correo", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // vuelve a la cola
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("esperando mensajes... (CTRL+C para salir)")
	<-sigChan

	slog.Info("cerrando el worker de correo...")
	cancel()
	wg.Wait()
	slog.Info("worker de correo cerrado")
}
