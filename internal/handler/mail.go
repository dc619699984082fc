package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mobility-ops/console/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// publishMail deja el correo en email_queue para el worker de correo.
func (h *Handler) publishMail(mailMessage domain.MailMessage) error {
	emailData, err := json.Marshal(mailMessage)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         emailData,
		},
	)
}
