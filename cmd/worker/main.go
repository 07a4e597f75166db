// cmd/worker/main.go
package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/leadrail/leadrail-backend/internal/config"
	"github.com/leadrail/leadrail-backend/internal/db"
	"github.com/leadrail/leadrail-backend/internal/logger"
	"github.com/leadrail/leadrail-backend/internal/queue"
	"github.com/leadrail/leadrail-backend/internal/repository"
	"github.com/leadrail/leadrail-backend/internal/service"
	"github.com/leadrail/leadrail-backend/internal/sms"
)

const maxDeliveryAttempts = 3

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.Load()
	logger.Init(cfg.Debug)

	if cfg.AMQPURL == "" {
		logger.Log.Fatal().Msg("AMQP_URL is required for the worker")
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	worker := &service.Worker{
		LeadRepo:    &repository.LeadRepository{DB: conn},
		MessageRepo: &repository.MessageRepository{DB: conn},
		Phones:      &sms.StaticPhoneResolver{Number: cfg.DefaultSenderNumber},
		Provider:    &sms.MockProvider{},
	}

	amqpConn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer amqpConn.Close()

	ch, err := amqpConn.Channel()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to open a channel")
	}
	defer ch.Close()

	q, err := queue.DeclareSendQueue(ch)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to declare queue")
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to register consumer")
	}

	logger.Log.Info().Str("queue", q.Name).Msg("📩 Worker consuming send jobs")

	ctx := context.Background()
	for d := range msgs {
		var job queue.SendJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			logger.Log.Warn().Err(err).Msg("invalid job payload")
			d.Ack(false)
			continue
		}

		if err := worker.Process(ctx, job.TenantID, job.MessageID); err != nil {
			// Infrastructure trouble only; carrier rejections are already
			// recorded on the row and return nil. Requeue up to the cap.
			retryCount := retryCountFrom(d.Headers)
			if retryCount < maxDeliveryAttempts {
				logger.Log.Warn().
					Err(err).
					Str("message_id", job.MessageID).
					Int("attempt", retryCount+1).
					Msg("job failed, requeueing")
				requeue(ch, q.Name, d.Body, retryCount+1)
				d.Ack(false)
				continue
			}
			logger.Log.Error().
				Err(err).
				Str("message_id", job.MessageID).
				Msg("job permanently failed")
		}
		d.Ack(false)
	}
}

// requeue republishes the job with an incremented retry header; plain Nack
// would loop forever without counting attempts.
func requeue(ch *amqp.Channel, queueName string, body []byte, retryCount int) {
	err := ch.Publish("", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{"x-retry-count": int32(retryCount)},
		Body:         body,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to requeue job")
	}
}

func retryCountFrom(headers amqp.Table) int {
	raw, ok := headers["x-retry-count"]
	if !ok {
		return 0
	}
	switch v := raw.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}
