package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/dentclinic/internal/api"
	"github.com/terraincognita07/dentclinic/internal/cli"
	"github.com/terraincognita07/dentclinic/internal/config"
	"github.com/terraincognita07/dentclinic/internal/db"
	"github.com/terraincognita07/dentclinic/internal/i18n"
	"github.com/terraincognita07/dentclinic/internal/logging"
	"github.com/terraincognita07/dentclinic/internal/metrics"
	"github.com/terraincognita07/dentclinic/internal/services"
	"github.com/terraincognita07/dentclinic/internal/session"
	"github.com/terraincognita07/dentclinic/internal/store"
	"gorm.io/gorm"
)

const usage = `usage: dentclinic [command] [flags]

commands:
  serve            run the HTTP server (default)
  create-user      provision a remote identity: -email <e> [-role admin|user] [-prompt-password]
  reset-password   replace a remote password: -email <e> [-prompt-password]
  set-role         change a remote role: -email <e> -role admin|user
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("dentclinic: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		return serve()
	case "create-user", "reset-password", "set-role":
		return runOperatorCommand(command, args, out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

// backend is the persistence variant chosen once for the whole process.
type backend struct {
	persistence   store.Persistence
	authenticator session.Authenticator
	devMode       bool
	database      *gorm.DB
}

func (b backend) close() error {
	sqlDB, err := b.database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openBackend(cfg config.Config, logger *logrus.Logger) (backend, error) {
	if cfg.DevMode {
		database, err := db.OpenSQLite(cfg.LocalDBPath, logger)
		if err != nil {
			return backend{}, fmt.Errorf("open local database: %w", err)
		}
		kv, err := store.NewSQLiteKV(database)
		if err != nil {
			return backend{}, fmt.Errorf("prepare local namespace: %w", err)
		}
		return backend{
			persistence:   store.NewLocal(kv, logger),
			authenticator: session.NewLocalAuthenticator(kv, logger),
			devMode:       true,
			database:      database,
		}, nil
	}

	database, err := db.OpenRemote(cfg.DatabaseURL, logger)
	if err != nil {
		return backend{}, fmt.Errorf("open remote database: %w", err)
	}
	repos := db.NewRepositories(database)
	return backend{
		persistence:   store.NewRemote(database),
		authenticator: session.NewRemoteAuthenticator(repos.Users, repos.Profiles, logger),
		database:      database,
	}, nil
}

// server bundles what serve starts and stops.
type server struct {
	app       *fiber.App
	reminders *services.ReminderJob
	backend   backend
}

func newServer(cfg config.Config, logger *logrus.Logger) (srv *server, err error) {
	location, err := cfg.Location()
	if err != nil {
		logger.WithError(err).Warn("falling back to UTC")
	}

	i18nManager, err := i18n.NewEmbeddedManager(cfg.DefaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("i18n init failed: %w", err)
	}

	selected, err := openBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = selected.close()
		}
	}()

	notifications := services.NewNotificationService(selected.persistence, location, logger)
	if selected.devMode {
		seeded, err := notifications.SeedDemo(context.Background(), time.Now())
		if err != nil {
			logger.WithError(err).Warn("seed demo notifications failed")
		} else if seeded {
			logger.Info("seeded demo notifications")
		}
	}

	reminders, err := services.NewReminderJob(notifications, cfg.ReminderSchedule, location, logger)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector()
	reminders.OnCreated(collector.RecordReminders)

	handler, err := api.NewHandler(api.Dependencies{
		Authenticator: selected.authenticator,
		Tokens:        session.NewTokens([]byte(cfg.SecretKey), cfg.SessionTTL),
		Patients:      services.NewPatientService(selected.persistence),
		Appointments:  services.NewAppointmentService(selected.persistence),
		Financial:     services.NewFinancialService(selected.persistence),
		Notifications: notifications,
		I18n:          i18nManager,
		Metrics:       collector,
		Location:      location,
		CookieSecure:  cfg.CookieSecure,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "DentClinic",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())
	app.Use(collector.Middleware())
	api.RegisterRoutes(app, handler)

	return &server{app: app, reminders: reminders, backend: selected}, nil
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, os.Stdout)

	srv, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.backend.close(); err != nil {
			logger.WithError(err).Warn("close database failed")
		}
	}()

	srv.reminders.Start()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		<-srv.reminders.Stop().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.WithError(err).Error("server shutdown failed")
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"dev_mode": cfg.DevMode,
		"timezone": cfg.Timezone,
	}).Info("dentclinic listening")
	if err := srv.app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

type operatorFlags struct {
	email          string
	role           string
	promptPassword bool
}

func parseOperatorFlags(command string, args []string, out io.Writer) (operatorFlags, error) {
	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	flags.SetOutput(out)

	parsed := operatorFlags{}
	flags.StringVar(&parsed.email, "email", "", "identity email")
	flags.StringVar(&parsed.role, "role", "", "admin or user")
	flags.BoolVar(&parsed.promptPassword, "prompt-password", false, "read the password from the terminal instead of generating one")
	if err := flags.Parse(args); err != nil {
		return operatorFlags{}, err
	}
	if flags.NArg() > 0 {
		return operatorFlags{}, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	if parsed.email == "" {
		return operatorFlags{}, errors.New("-email is required")
	}
	if command == "set-role" && parsed.role == "" {
		return operatorFlags{}, errors.New("-role is required")
	}
	return parsed, nil
}

// runOperatorCommand manages identities of the remote store; dev users are fixed.
func runOperatorCommand(command string, args []string, out io.Writer) error {
	flags, err := parseOperatorFlags(command, args, out)
	if err != nil {
		return err
	}

	cfg, err := config.LoadUnvalidated()
	if err != nil {
		return err
	}
	if cfg.DevMode {
		return errors.New("operator commands manage the remote store; unset DENTCLINIC_DEV_MODE")
	}

	password := ""
	if flags.promptPassword {
		password, err = cli.PromptPassword(os.Stdin, out)
		if err != nil {
			return err
		}
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)
	database, err := db.OpenRemote(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	selected := backend{database: database}
	defer selected.close()

	return execOperatorCommand(context.Background(), command, db.NewRepositories(database), flags, password, out)
}

func execOperatorCommand(ctx context.Context, command string, repos *db.Repositories, flags operatorFlags, password string, out io.Writer) error {
	switch command {
	case "create-user":
		return cli.CreateUser(ctx, repos, cli.CreateUserOptions{Email: flags.email, Role: flags.role, Password: password}, out)
	case "reset-password":
		return cli.ResetPassword(ctx, repos, flags.email, password, out)
	case "set-role":
		return cli.SetRole(ctx, repos, flags.email, flags.role, out)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
