package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teja-0311/Kisanmarket/internal/config"
	"github.com/teja-0311/Kisanmarket/internal/services"
	"github.com/teja-0311/Kisanmarket/internal/sms"
)

// Task types.
const (
	TypeNotificationDeliver = "notification:deliver"
	TypeUnverifiedCleanup   = "user:unverified:cleanup"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// NotificationPayload is the payload of a TypeNotificationDeliver task.
type NotificationPayload struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Enqueuer wraps the asynq client behind the service-layer interfaces.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

var _ services.ISMSEnqueuer = (*Enqueuer)(nil)

// EnqueueOrderRejectedSMS queues a rejected-order text for delivery by
// the background worker.
func (e *Enqueuer) EnqueueOrderRejectedSMS(ctx context.Context, userID primitive.ObjectID, message string) error {
	payload, err := json.Marshal(NotificationPayload{UserID: userID.Hex(), Message: message})
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}
	task := asynq.NewTask(TypeNotificationDeliver, payload)
	info, err := e.client.EnqueueContext(ctx, task, asynq.Queue("default"), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("failed to enqueue notification task: %w", err)
	}
	log.Printf("Enqueued notification task %s for user %s", info.ID, userID.Hex())
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg         *config.Config
	texter      sms.Texter
	userService services.IUserService
}

func NewTaskProcessor(cfg *config.Config, texter sms.Texter, userService services.IUserService) *TaskProcessor {
	return &TaskProcessor{
		cfg:         cfg,
		texter:      texter,
		userService: userService,
	}
}

// SetupServer configures and runs an Asynq server instance. Returns nil
// without starting anything when not in background worker mode.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isBgWorker bool) *asynq.Server {
	if !isBgWorker {
		log.Println("Running in API mode, no task server started.")
		return nil
	}

	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNotificationDeliver, processor.HandleNotificationDeliverTask)
	mux.HandleFunc(TypeUnverifiedCleanup, processor.HandleUnverifiedCleanupTask)
	log.Println("Registered background task handlers.")

	if err := srv.Start(mux); err != nil {
		log.Fatalf("Could not start Asynq server: %v", err)
	}

	return srv
}

// SetupScheduler registers the periodic cleanup job. Returns the started
// scheduler so the caller can shut it down.
func SetupScheduler(rdb *redis.Client) *asynq.Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     rdb.Options().Addr,
			Password: rdb.Options().Password,
			DB:       rdb.Options().DB,
		},
		&asynq.SchedulerOpts{},
	)

	if _, err := scheduler.Register("@every 6h", asynq.NewTask(TypeUnverifiedCleanup, nil), asynq.Queue("low")); err != nil {
		log.Fatalf("Could not register cleanup schedule: %v", err)
	}

	if err := scheduler.Start(); err != nil {
		log.Fatalf("Could not start Asynq scheduler: %v", err)
	}

	return scheduler
}

// --- Task Handlers ---

// HandleNotificationDeliverTask texts the buyer about their rejected
// order. The in-app notification already exists; this is the SMS copy.
func (p *TaskProcessor) HandleNotificationDeliverTask(ctx context.Context, t *asynq.Task) error {
	var payload NotificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal notification payload: %v: %w", err, asynq.SkipRetry)
	}

	userID, err := primitive.ObjectIDFromHex(payload.UserID)
	if err != nil {
		log.Printf("Invalid UserID in notification payload: %s", payload.UserID)
		return fmt.Errorf("invalid user ID in payload: %w", asynq.SkipRetry)
	}

	user, err := p.userService.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("User %s no longer exists, dropping notification.", payload.UserID)
			return fmt.Errorf("user not found: %w", asynq.SkipRetry)
		}
		return err
	}

	if err := p.texter.SendText(ctx, user.Phone, payload.Message); err != nil {
		log.Printf("SMS delivery to %s failed (will retry): %v", user.Phone, err)
		return err
	}

	log.Printf("Notification task processed: user=%s", payload.UserID)
	return nil
}

// HandleUnverifiedCleanupTask removes accounts that abandoned signup
// before completing phone verification.
func (p *TaskProcessor) HandleUnverifiedCleanupTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Starting unverified account cleanup task...")

	cutoff := time.Now().UTC().Add(-p.cfg.UnverifiedMaxAge)
	deleted, err := p.userService.DeleteUnverifiedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("Error cleaning up unverified accounts: %v", err)
		return err
	}

	log.Printf("Unverified account cleanup finished. Deleted %d accounts.", deleted)
	return nil
}
