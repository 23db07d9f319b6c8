package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gitlab.com/fcv-2025.net/faktory-client/internal/adapter/postgres/outcomeport"
	"gitlab.com/fcv-2025.net/faktory-client/internal/adapter/redis/workerport"
	"gitlab.com/fcv-2025.net/faktory-client/internal/adapter/transport"
	"gitlab.com/fcv-2025.net/faktory-client/internal/config"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/services/job"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/services/worker"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	logger2 "gitlab.com/fcv-2025.net/faktory-client/internal/global/logger"
	http2 "gitlab.com/fcv-2025.net/faktory-client/internal/http"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp"
)

const usage = `usage: faktory-client <env> <command> [args]

commands:
  push <jobtype> [json-args] [queue]   enqueue one job
  info                                 print the server status document
  work                                 process jobs until interrupted`

func main() {
	args := InitReader()
	if len(args) == 0 {
		log.Fatal(usage)
	}

	sysCfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger2.SetLevel(sysCfg.LogLevel)
	logger := logger2.Logger
	defer logger.Sync()

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "push":
		err = runPush(ctx, sysCfg, logger, args[1:])
	case "info":
		err = runInfo(ctx, sysCfg, logger)
	case "work":
		err = runWork(ctx, sysCfg, logger)
	default:
		err = fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
	if err != nil {
		logger.Error("Command failed", "command", args[0], "error", err)
		stop()
		os.Exit(1)
	}
}

// InitReader loads <env>.env when present and returns the remaining arguments
func InitReader() []string {
	if len(os.Args) < 2 {
		log.Fatalf("Env not supplied in argument\n%s", usage)
	}
	environment := os.Args[1]

	err := godotenv.Load(environment + ".env")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading %s.env file: %v", environment, err)
	}
	return os.Args[2:]
}

// loadConfig reads the environment and overlays FAKTORY_CONFIG_FILE when set
func loadConfig() (*config.AppConfig, error) {
	sysCfg := config.NewSystemConfig(config.OSLookup)
	if path := config.OSLookup.Get("FAKTORY_CONFIG_FILE", ""); path != "" {
		var err error
		if sysCfg, err = config.LoadFile(path, sysCfg); err != nil {
			return nil, err
		}
	}
	if err := sysCfg.Validate(); err != nil {
		return nil, err
	}
	return sysCfg, nil
}

func newConnector(cfg *config.FaktoryConfig) primary.StreamConnector {
	timeouts := transport.Timeouts{
		Dial:  cfg.DialTimeout,
		Read:  cfg.ReadTimeout,
		Write: cfg.WriteTimeout,
	}
	if cfg.TLS {
		return transport.NewTLSConnector(&tls.Config{InsecureSkipVerify: cfg.TLSInsecureSkipVerify}, timeouts)
	}
	return transport.NewTCPConnector(timeouts)
}

func sessionOptions(cfg *config.FaktoryConfig, logger primary.Logger) []tcp.SessionOption {
	return []tcp.SessionOption{
		tcp.WithConnector(newConnector(cfg)),
		tcp.WithLogger(logger),
	}
}

func identity(cfg *config.FaktoryConfig) domain.ConnectionOptions {
	opts := domain.DefaultConnectionOptions()
	opts.Labels = cfg.Labels
	return opts
}

func openProducer(ctx context.Context, sysCfg *config.AppConfig, logger primary.Logger) (*job.JobService, *tcp.Session, error) {
	options := append(sessionOptions(sysCfg.FaktoryConfig, logger), tcp.WithOptions(identity(sysCfg.FaktoryConfig)))
	session, err := tcp.Dial(ctx, sysCfg.FaktoryConfig.Target, options...)
	if err != nil {
		return nil, nil, err
	}
	return job.NewJobService(session, logger), session, nil
}

// parsePushArgs splits "<jobtype> [json-args] [queue]"
func parsePushArgs(args []string) (jobType string, jobArgs []interface{}, queue string, err error) {
	if len(args) == 0 || args[0] == "" {
		return "", nil, "", errors.New("push requires a job type")
	}
	jobType = args[0]
	if len(args) > 1 && args[1] != "" {
		if err := json.Unmarshal([]byte(args[1]), &jobArgs); err != nil {
			return "", nil, "", fmt.Errorf("job args must be a JSON array: %w", err)
		}
	}
	if len(args) > 2 {
		queue = args[2]
	}
	return jobType, jobArgs, queue, nil
}

func runPush(ctx context.Context, sysCfg *config.AppConfig, logger primary.Logger, args []string) error {
	jobType, jobArgs, queue, err := parsePushArgs(args)
	if err != nil {
		return err
	}

	producer, session, err := openProducer(ctx, sysCfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	jid, err := producer.Enqueue(ctx, jobType, queue, jobArgs...)
	if err != nil {
		return err
	}
	fmt.Println(jid)
	return nil
}

func runInfo(ctx context.Context, sysCfg *config.AppConfig, logger primary.Logger) error {
	producer, session, err := openProducer(ctx, sysCfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	info, err := producer.Info(ctx)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runWork(ctx context.Context, sysCfg *config.AppConfig, logger primary.Logger) error {
	var registry worker.IWorkerRegistrationService
	if sysCfg.RedisConfig.Enabled {
		redisClient := workerport.NewRedisClient(sysCfg.RedisConfig)
		defer redisClient.Close()
		registry = worker.NewWorkerRegistrationService(workerport.NewWorkerRepository(redisClient, logger), logger)
	}

	var journal secondary.JobOutcomeRepository
	if sysCfg.PostgresConfig.Enabled {
		db, err := outcomeport.NewPostgresDB(ctx, sysCfg.PostgresConfig)
		if err != nil {
			return err
		}
		defer db.Close()
		repo := outcomeport.New(db, logger, sysCfg.PostgresConfig.Schema)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		journal = repo
	}

	runnerOptions := []worker.RunnerOption{
		worker.WithIdentity(identity(sysCfg.FaktoryConfig)),
		worker.WithFallbackHandler(logJob(logger)),
	}
	if registry != nil {
		runnerOptions = append(runnerOptions, worker.WithRegistry(registry))
	}
	if journal != nil {
		runnerOptions = append(runnerOptions, worker.WithOutcomes(journal))
	}
	runner := worker.NewRunner(worker.RunnerConfig{
		Queues:            sysCfg.WorkerConfig.Queues,
		Concurrency:       sysCfg.WorkerConfig.Concurrency,
		HeartbeatInterval: sysCfg.WorkerConfig.HeartbeatInterval,
		IdleDelay:         sysCfg.WorkerConfig.IdleDelay,
		Labels:            sysCfg.FaktoryConfig.Labels,
	}, tcp.NewSessionFactory(sysCfg.FaktoryConfig.Target, sessionOptions(sysCfg.FaktoryConfig, logger)...), logger, runnerOptions...)

	if port := sysCfg.HTTPConfig.Port; port != 0 {
		producer, session, err := openProducer(ctx, sysCfg, logger)
		if err != nil {
			return err
		}
		defer session.Close()

		httpServer := http2.NewServer(port, "faktory-client", *http2.NewServiceProvider(registry, producer, runner).WithOutcomes(journal), logger)
		if err := httpServer.Init(); err != nil {
			return err
		}
		if err := httpServer.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Stop(shutdownCtx); err != nil {
				logger.Error("Failed to stop http server", "error", err)
			}
		}()
	}

	err := runner.Run(ctx)
	logger.Info("successfully shutdown worker")
	return err
}

// logJob acknowledges every job after logging it
func logJob(logger primary.Logger) worker.Handler {
	return func(_ context.Context, job *domain.Job) error {
		logger.Info("Processed job", "jobId", job.ID, "type", job.Type, "args", job.Args)
		return nil
	}
}
