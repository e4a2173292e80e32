package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mood-diary/src/config"
	"mood-diary/src/database"
	"mood-diary/src/domain"
	"mood-diary/src/infrastructure/repository"
	"mood-diary/src/interface/handler"
	"mood-diary/src/logger"
	"mood-diary/src/routes"
	"mood-diary/src/service"
	"mood-diary/src/storage"
	"mood-diary/src/usecase"
	"mood-diary/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// stores is the selected record store backend
type stores struct {
	moods   domain.MoodRepository
	records domain.RecordRepository
	db      *database.DB
}

func openStores(cfg config.DatabaseConfig) (*stores, error) {
	switch cfg.Backend {
	case "memory":
		moods := repository.NewMemoryMoodRepository()
		return &stores{moods: moods, records: repository.NewMemoryRecordRepository(moods)}, nil
	case database.DriverSQLite:
		db, err := database.NewSQLite(cfg.SQLitePath, logger.Log)
		if err != nil {
			return nil, err
		}
		return migrated(db)
	case database.DriverPostgres:
		db, err := database.NewPostgres(&database.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			DBName:   cfg.Name,
			SSLMode:  cfg.SSLMode,
		}, logger.Log)
		if err != nil {
			return nil, err
		}
		return migrated(db)
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q", cfg.Backend)
	}
}

func migrated(db *database.DB) (*stores, error) {
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		moods:   repository.NewMoodRepository(db, logger.Log),
		records: repository.NewRecordRepository(db, logger.Log),
		db:      db,
	}, nil
}

func s3Config(cfg config.S3Config) *storage.S3Config {
	return &storage.S3Config{
		Endpoint:        cfg.Endpoint,
		PublicURL:       cfg.PublicURL,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
		UseSSL:          cfg.UseSSL,
	}
}

func openBlobStore(cfg *config.Config) (domain.BlobStore, string, error) {
	switch cfg.Storage.Backend {
	case "s3":
		store, err := storage.NewS3BlobStore(s3Config(cfg.S3), logger.Log)
		return store, "", err
	case "local":
		store, err := storage.NewLocalBlobStore(cfg.Storage.MediaDirectory, cfg.Storage.MediaURLPrefix, logger.Log)
		if err != nil {
			return nil, "", err
		}
		return store, store.Root(), nil
	default:
		return nil, "", fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}
}

func main() {
	// .env があれば読み込む（環境変数が優先）
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	if err := logger.InitLogger(cfg.Log); err != nil {
		panic(fmt.Sprintf("ロガーの初期化に失敗: %v", err))
	}
	defer logger.CloseLogger()

	logger.Log.Info("アプリケーションを開始しています")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("データストアの初期化に失敗")
	}
	if st.db != nil {
		defer st.db.Close()
	}

	blobs, mediaDir, err := openBlobStore(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("写真ストレージの初期化に失敗")
	}

	// ログのS3退避（設定が有効な場合）
	var archiver *storage.LogArchiver
	if cfg.Log.UploadEnabled {
		archiver, err = storage.NewLogArchiver(s3Config(cfg.S3), cfg.Log.UploadBucket, logger.Log)
		if err != nil {
			logger.Log.WithError(err).Error("ログアーカイバの初期化に失敗")
		} else {
			archiver.Start(ctx, cfg.Log.Directory, cfg.Log.UploadInterval, cfg.Log.UploadMaxAge, logger.GetCurrentLogFile)
		}
	}

	moods := usecase.NewMoodCatalog(st.moods, logger.Log)
	if err := moods.EnsureSeeded(ctx); err != nil {
		logger.Log.WithError(err).Fatal("気分カテゴリの初期化に失敗")
	}
	records := usecase.NewRecordService(st.records, moods, blobs, logger.Log, cfg.Server.UploadMaxBytes)
	calendar := usecase.NewCalendarService(st.records, blobs, logger.Log)
	jwtService := service.NewJWTService(cfg.Auth)

	var pinger handler.Pinger
	if st.db != nil {
		pinger = st.db
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = cfg.Server.UploadMaxBytes
	routes.SetupRoutes(r, routes.Handlers{
		Records:  handler.NewRecordHandler(records, validator.NewCustomValidator(), logger.Log),
		Calendar: handler.NewCalendarHandler(calendar, logger.Log),
		Moods:    handler.NewMoodHandler(moods, logger.Log),
		Health:   handler.NewHealthHandler(pinger, logger.Log),
	}, jwtService, routes.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MediaDirectory: mediaDir,
		MediaURLPrefix: cfg.Storage.MediaURLPrefix,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithField("port", cfg.Server.Port).Info("サーバーを開始します")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("サーバーの起動に失敗")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("シャットダウンシグナルを受信しました")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("サーバーのシャットダウンに失敗")
	}

	// 最後のログアップロードを実行
	if archiver != nil {
		if _, err := archiver.ArchiveOld(shutdownCtx, cfg.Log.Directory, 0, logger.GetCurrentLogFile()); err != nil {
			logger.Log.WithError(err).Error("最後のログアップロードに失敗")
		}
	}
}
