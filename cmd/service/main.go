package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/config"
	"github.com/chris-code08/Day-71-blog-for-deployment/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "blog-service",
	})

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	adminEmail := os.Getenv("BLOG_ADMIN_EMAIL")
	if adminEmail == "" {
		log.Errorf("admin email not set, nobody will get the admin role. use BLOG_ADMIN_EMAIL env var to set it")
	}

	contactEmail := os.Getenv("BLOG_CONTACT_EMAIL")
	if contactEmail == "" {
		log.Errorf("contact email not set. use BLOG_CONTACT_EMAIL env var to set it")
	}

	smtpUsername := os.Getenv("BLOG_SMTP_USERNAME")
	smtpPassword := os.Getenv("BLOG_SMTP_PASSWORD")
	if smtpUsername == "" || smtpPassword == "" {
		log.Errorf("smtp credentials not set, contact form will not relay mail. use BLOG_SMTP_USERNAME and BLOG_SMTP_PASSWORD")
	}

	redisPassword := os.Getenv("BLOG_REDIS_PASS")
	if redisPassword == "" {
		log.Errorf("redis password not set. use BLOG_REDIS_PASS")
	}

	tracingEnabled := os.Getenv("TRACING_ENABLED") == "true"
	if !tracingEnabled {
		log.Debugln("tracing disabled")
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:         cfg,
			AdminEmail:     adminEmail,
			ContactEmail:   contactEmail,
			RedisPassword:  redisPassword,
			SMTPUsername:   smtpUsername,
			SMTPPassword:   smtpPassword,
			TracingEnabled: tracingEnabled,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(ctx, cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}
