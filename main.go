package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/hibiken/asynq"
	"github.com/katatrina/call-notifier/api"
	"github.com/katatrina/call-notifier/internal/notification"
	"github.com/katatrina/call-notifier/internal/push"
	"github.com/katatrina/call-notifier/internal/storage"
	"github.com/katatrina/call-notifier/internal/trigger"
	"github.com/katatrina/call-notifier/internal/util"
	"github.com/katatrina/call-notifier/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configurations
	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file 😣")
	}
	configureLogger(config)

	log.Info().Msg("configurations loaded successfully ✅")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	firebaseApp, err := newFirebaseApp(ctx, config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize firebase app 😣")
	}

	firestoreClient, err := firebaseApp.Firestore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create firestore client 😣")
	}
	defer firestoreClient.Close()
	log.Info().Msg("connected to firestore ✅")

	messagingClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create messaging client 😣")
	}
	log.Info().Bool("dry_run", config.FCMDryRun).Msg("firebase cloud messaging initialized ✅")

	redisDb := redis.NewClient(&redis.Options{
		Addr: config.RedisServerAddress,
	})
	defer redisDb.Close()

	redisOpt := asynq.RedisClientOpt{
		Addr: config.RedisServerAddress,
	}

	taskDistributor := worker.NewTaskDistributor(
		redisOpt,
		asynq.Queue(worker.QueueCritical),
		asynq.MaxRetry(config.NotifyMaxRetry),
		asynq.Retention(config.TaskRetention),
	)
	defer taskDistributor.Close()

	taskInspector := worker.NewTaskInspector(redisOpt)
	defer taskInspector.Close()

	notificationService := notification.NewNotificationService(
		storage.NewFirestoreStore(firestoreClient, config.UsersCollection),
		push.NewFCMSender(messagingClient, config.FCMDryRun),
	)

	group, ctx := errgroup.WithContext(ctx)

	runTaskProcessor(ctx, group, redisOpt, config, notificationService)
	runQueueMonitor(ctx, group, taskInspector, config)

	if config.FirestoreListenerEnabled {
		listener := trigger.NewCallListener(firestoreClient, config.CallsCollection, taskDistributor, config.ListenerCatchUpWindow)
		group.Go(func() error {
			return listener.Run(ctx)
		})
	}

	runHTTPServer(ctx, group, config, redisDb, taskDistributor, taskInspector)

	if err := group.Wait(); err != nil {
		log.Fatal().Err(err).Msg("call notifier stopped with error 😣")
	}

	log.Info().Msg("call notifier stopped gracefully 👋")
}

func configureLogger(config util.Config) {
	if config.IsProduction() {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		log.Warn().Str("level", config.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// newFirebaseApp replaces the implicit default app with an explicitly configured one.
func newFirebaseApp(ctx context.Context, config util.Config) (*firebase.App, error) {
	var opts []option.ClientOption

	switch {
	case config.FirebaseCredentialsJSON != "":
		log.Info().Msg("using firebase credentials from FIREBASE_CREDENTIALS_JSON")
		opts = append(opts, option.WithCredentialsJSON([]byte(config.FirebaseCredentialsJSON)))
	case config.FirebaseCredentialsFile != "":
		log.Info().Str("file", config.FirebaseCredentialsFile).Msg("using firebase credentials file")
		opts = append(opts, option.WithCredentialsFile(config.FirebaseCredentialsFile))
	default:
		log.Info().Msg("using application default credentials")
	}

	return firebase.NewApp(ctx, &firebase.Config{ProjectID: config.FirebaseProjectID}, opts...)
}

func runTaskProcessor(ctx context.Context, group *errgroup.Group, redisOpt asynq.RedisClientOpt, config util.Config, notifier worker.IncomingCallNotifier) {
	taskProcessor := worker.NewRedisTaskProcessor(redisOpt, config.WorkerConcurrency, notifier)

	log.Info().Msg("start task processor")
	if err := taskProcessor.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start task processor 😣")
	}

	group.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("graceful shutdown task processor")
		taskProcessor.Shutdown()
		return nil
	})
}

func runQueueMonitor(ctx context.Context, group *errgroup.Group, taskInspector worker.TaskInspector, config util.Config) {
	monitor, err := worker.NewQueueMonitor(taskInspector, config.QueueMonitorInterval)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create queue monitor 😣")
	}

	if err := monitor.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start queue monitor 😣")
	}

	group.Go(func() error {
		<-ctx.Done()
		return monitor.Stop()
	})
}

func runHTTPServer(ctx context.Context, group *errgroup.Group, config util.Config, redisDb *redis.Client, taskDistributor worker.TaskDistributor, taskInspector worker.TaskInspector) {
	var tokenValidator api.IDTokenValidator
	if config.EventAudience != "" {
		validator, err := idtoken.NewValidator(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create google id token validator 😣")
		}
		tokenValidator = validator
		log.Info().Str("audience", config.EventAudience).Msg("event endpoint requires google id tokens ✅")
	}

	server := api.NewServer(&config, redisDb, taskDistributor, taskInspector, tokenValidator)

	group.Go(func() error {
		return server.Start()
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("graceful shutdown HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
}
