package commands

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/httpapi"
	"taskboard/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the taskboard HTTP API.

Configuration comes from the environment:
  TASKBOARD_ADDR          Listen address (default :8001)
  TASKBOARD_DB_PATH       SQLite database file (default ~/.taskboard/taskboard.db)
  TASKBOARD_UPLOAD_DIR    Blob directory for avatars and PDFs
  TASKBOARD_TOKEN_SECRET  HMAC secret for bearer tokens (required)
  TASKBOARD_TOKEN_TTL     Token lifetime (default 72h)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.ValidateForServe(); err != nil {
			return err
		}

		if err := db.Initialize(cfg.DBPath); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		store, err := storage.NewDiskStore(cfg.UploadDir)
		if err != nil {
			return err
		}

		issuer := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
		e := httpapi.New(issuer, store)

		log.Printf("taskboard listening on %s", cfg.Addr)
		return e.Start(cfg.Addr)
	},
}
