package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/movstream/streaming-service/internal/config"
	"github.com/movstream/streaming-service/internal/storage"
	"github.com/movstream/streaming-service/internal/transcoder"
	videoRepository "github.com/movstream/streaming-service/internal/videos/repository"
	"github.com/movstream/streaming-service/internal/worker"
	"github.com/movstream/streaming-service/pkg/db/aws"
	"github.com/movstream/streaming-service/pkg/db/postgres"
	clientRedis "github.com/movstream/streaming-service/pkg/db/redis"
	"github.com/movstream/streaming-service/pkg/logger"
)

func main() {
	log.Println("Starting transcode worker")
	configFile := "config.yml"
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}

	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
	defer psqlDB.Close()

	redisClient, err := clientRedis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	appLogger.Infof("redis connected")
	defer redisClient.Close()

	store, err := buildMediaStore(cfg)
	if err != nil {
		appLogger.Fatalf("could not init media store: %s", err)
	}

	videoRepo := videoRepository.NewVideosRepository(psqlDB)
	videoRedisRepo := videoRepository.NewVideosRedisRepo(redisClient, cfg.Redis.JobQueueKey, cfg.Redis.ProgressKey)

	pipeline, err := transcoder.NewPipeline(cfg, store, transcoder.NewFFProbeProber(), transcoder.NewFFMpegRenderer(&cfg.Transcode), appLogger)
	if err != nil {
		appLogger.Fatalf("could not build pipeline: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutting down workers")
		cancel()
	}()

	w := worker.NewWorker(cfg, appLogger, videoRepo, videoRedisRepo, pipeline)
	w.Start(ctx)
	w.Wait()
}

func buildMediaStore(cfg *config.Config) (storage.MediaStore, error) {
	if strings.EqualFold(cfg.Storage.Backend, "s3") {
		s3Client, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(s3Client, cfg.S3.Bucket), nil
	}
	return storage.NewLocalStore(cfg.Storage.Path)
}
