// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/leadrail/leadrail-backend/internal/ai"
	"github.com/leadrail/leadrail-backend/internal/config"
	"github.com/leadrail/leadrail-backend/internal/controller"
	"github.com/leadrail/leadrail-backend/internal/db"
	"github.com/leadrail/leadrail-backend/internal/logger"
	"github.com/leadrail/leadrail-backend/internal/queue"
	"github.com/leadrail/leadrail-backend/internal/repository"
	"github.com/leadrail/leadrail-backend/internal/service"
	"github.com/leadrail/leadrail-backend/internal/sms"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg := config.Load()
	logger.Init(cfg.Debug)

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	leadRepo := &repository.LeadRepository{DB: conn}
	messageRepo := &repository.MessageRepository{DB: conn}
	settingsRepo := &repository.SettingsRepository{DB: conn}
	phones := &sms.StaticPhoneResolver{Number: cfg.DefaultSenderNumber}

	var sendQueue queue.Queue
	if cfg.AMQPURL == "" {
		// Dev mode: no broker, jobs are dispatched in process by the same
		// worker logic cmd/worker runs against RabbitMQ.
		logger.Log.Warn().Msg("⚠️ AMQP_URL not set, dispatching sends in process")
		worker := &service.Worker{
			LeadRepo:    leadRepo,
			MessageRepo: messageRepo,
			Phones:      phones,
			Provider:    &sms.MockProvider{},
		}
		mem := queue.NewInMemoryQueue()
		mem.Subscribe(queue.TopicConversationSends, func(payload any) error {
			job, ok := payload.(queue.SendJob)
			if !ok {
				return fmt.Errorf("unexpected payload type %T", payload)
			}
			return worker.Process(context.Background(), job.TenantID, job.MessageID)
		})
		sendQueue = mem
	} else {
		amqpConn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer amqpConn.Close()

		amqpQueue, err := queue.NewAMQPQueue(amqpConn)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("failed to set up send queue")
		}
		defer amqpQueue.Close()
		sendQueue = amqpQueue
	}

	sendService := &service.SendService{
		LeadRepo:    leadRepo,
		MessageRepo: messageRepo,
		Phones:      phones,
		Queue:       sendQueue,
	}
	instructionService := &service.InstructionService{Settings: settingsRepo}
	replyService := &service.ReplyService{
		Instructions: instructionService,
		MessageRepo:  messageRepo,
		Replier:      ai.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel),
		Send:         sendService,
	}

	conversationController := &controller.ConversationController{
		SendService:  sendService,
		ReplyService: replyService,
	}
	leadController := &controller.LeadController{LeadRepo: leadRepo}
	settingsController := &controller.SettingsController{Instructions: instructionService}
	webhookController := &controller.WebhookController{SendService: sendService}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Post("/leads", leadController.CreateLead)
		r.Get("/leads", leadController.ListLeads)
		r.Get("/leads/{leadID}", leadController.GetLead)
		r.Put("/leads/{leadID}/status", leadController.UpdateStatus)

		r.Post("/leads/{leadID}/messages", conversationController.SendMessage)
		r.Get("/leads/{leadID}/messages", conversationController.ListMessages)
		r.Post("/leads/{leadID}/inbound", conversationController.RecordInbound)
		r.Post("/leads/{leadID}/reenable-ai", conversationController.ReenableAI)
		r.Post("/leads/{leadID}/ai-reply", conversationController.GenerateAIReply)
		r.Get("/leads/{leadID}/delivery-stats", conversationController.DeliveryStats)
		r.Post("/messages/{messageID}/retry", conversationController.RetryMessage)

		r.Put("/persona", settingsController.SavePersona)
		r.Put("/followups", settingsController.SaveFollowups)
		r.Get("/followups/{slot}", settingsController.GetFollowup)
		r.Delete("/followups/{slot}", settingsController.DeleteFollowup)
		r.Post("/followups/preview", settingsController.PreviewSchedule)
	})

	r.Post("/webhooks/delivery", webhookController.DeliveryCallback)

	logger.Log.Info().Msgf("🚀 Server running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Log.Fatal().Err(err).Msg("server stopped")
	}
}
