package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	paymentapp "payment-api/internal/application/payment"
	"payment-api/internal/infrastructure/config"
	otelinfra "payment-api/internal/infrastructure/observability/otel"
	stripeinfra "payment-api/internal/infrastructure/stripe"
	grpcserver "payment-api/internal/presentation/grpc"
	"payment-api/internal/presentation/rest"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	tracer := otelinfra.Tracer(cfg.OpenTelemetry.ServiceName)
	logger := otelinfra.NewLogger(tracer, otelinfra.WithLevel(otelinfra.ParseLogLevel(cfg.Log.Level)))
	defer func() { _ = logger.Sync() }()

	metrics, err := otelinfra.NewMetrics(cfg.OpenTelemetry.ServiceName)
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	// 決済プロセッサー（Stripe）の初期化
	backend := stripeinfra.NewBackend(&cfg.Stripe, logger)
	initiator := stripeinfra.NewPaymentIntentInitiator(&cfg.Stripe, backend, logger, metrics)

	// アプリケーションサービスの初期化
	paymentAppService := paymentapp.NewPaymentApplicationService(initiator, logger, metrics)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(cfg, logger, metrics, paymentAppService)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// gRPCヘルスチェックサーバーの初期化
	var grpcSrv *grpcserver.Server
	if cfg.GRPC.Enabled {
		grpcSrv, err = grpcserver.NewServer(cfg, logger)
		if err != nil {
			log.Fatalf("Failed to create gRPC server: %v", err)
		}
	}

	// グレースフルシャットダウンの設定
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// REST APIサーバーを別ゴルーチンで起動
	go func() {
		logger.Info(ctx, "REST API server starting", map[string]interface{}{
			"address":     cfg.Server.Address(),
			"environment": cfg.Environment,
		})
		if err := router.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "REST API server error", err, nil)
			stop()
		}
	}()

	// gRPCサーバーを別ゴルーチンで起動
	if grpcSrv != nil {
		go func() {
			if err := grpcSrv.Start(); err != nil {
				logger.Error(ctx, "gRPC server error", err, nil)
				stop()
			}
		}()
	}

	// シグナルを待機
	<-ctx.Done()
	logger.Info(context.Background(), "Shutting down servers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// gRPCを先にNOT_SERVINGにしてから停止
	if grpcSrv != nil {
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Error shutting down gRPC server", err, nil)
		}
	}

	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "Error shutting down REST API server", err, nil)
	}

	logger.Info(context.Background(), "Servers stopped", nil)
}
