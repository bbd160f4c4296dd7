package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/mail"
	"github.com/Zachkp/portfolio/internal/server"
	"github.com/Zachkp/portfolio/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portfolio web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch viper.GetString("mode") {
		case "release":
			gin.SetMode(gin.ReleaseMode)
		case "debug", "":
			gin.SetMode(gin.DebugMode)
		default:
			return fmt.Errorf("unknown mode %q", viper.GetString("mode"))
		}

		portfolio, err := content.Load()
		if err != nil {
			return err
		}

		db, err := storage.Open(viper.GetString("db"))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		transport, err := contactTransport(viper.GetString("contact.transport"))
		if err != nil {
			return err
		}

		sanitizer := mail.NewSanitizing(mail.NewRecording(transport, db))
		srv, err := server.New(server.Config{
			Portfolio:     portfolio,
			Store:         db,
			Submitter:     sanitizer,
			Clean:         sanitizer.Clean,
			ResetAfter:    viper.GetDuration("contact.reset_after"),
			AdminUsername: viper.GetString("admin.username"),
			AdminPassword: viper.GetString("admin.password"),
			HashingSalt:   viper.GetString("admin.hashing_salt"),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go srv.PurgeOldVisits(ctx)

		return srv.Run(ctx, listenAddr(cmd))
	},
}

// listenAddr honours PORT unless --listen or PORTFOLIO_LISTEN says otherwise.
func listenAddr(cmd *cobra.Command) string {
	if cmd.Flags().Changed("listen") || os.Getenv("PORTFOLIO_LISTEN") != "" {
		return viper.GetString("listen")
	}
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return viper.GetString("listen")
}

func contactTransport(name string) (contact.Submitter, error) {
	log := logging.Component("serve")
	switch name {
	case "simulated", "":
		log.Info("contact form uses simulated delivery")
		return &contact.Simulated{
			Delay: viper.GetDuration("contact.delay"),
			Fail:  viper.GetBool("contact.fail"),
		}, nil
	case "smtp":
		cfg, err := mail.LoadSMTPConfig()
		if err != nil {
			return nil, err
		}
		log.WithField("host", cfg.Host).Info("contact form delivers over SMTP")
		return mail.NewSMTP(cfg), nil
	case "webhook":
		cfg, err := mail.LoadWebhookConfig()
		if err != nil {
			return nil, err
		}
		log.Info("contact form delivers to webhook")
		return mail.NewWebhook(cfg), nil
	}
	return nil, fmt.Errorf("unknown contact transport %q", name)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("db", "portfolio.db", "sqlite database path")
	serveCmd.Flags().String("mode", "debug", "gin mode: debug or release")
	serveCmd.Flags().String("transport", "simulated", "contact delivery: simulated, smtp or webhook")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("db", serveCmd.Flags().Lookup("db"))
	viper.BindPFlag("mode", serveCmd.Flags().Lookup("mode"))
	viper.BindPFlag("contact.transport", serveCmd.Flags().Lookup("transport"))
}
