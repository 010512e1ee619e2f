// Command tilestock-migrate imports the legacy SQLite database (the old
// Flask deployment's user, tile, bill and bill_item tables) into MongoDB.
//
// The import is idempotent: every document is upserted by its legacy row id,
// so re-running the tool after a partial failure only fills the gaps. Rows
// that cannot be read or written are logged and skipped rather than aborting
// the run.
//
// Legacy password hashes use a scheme bcrypt cannot verify, so every imported
// account gets the password supplied via --default-password and is flagged to
// reset it on first login.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sqlitePath      string
	mongoURI        string
	mongoDatabase   string
	defaultPassword string
	verbose         bool
)

var rootCmd = &cobra.Command{
	Use:          "tilestock-migrate",
	Short:        "Import the legacy SQLite tiles-stock database into MongoDB",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logCfg := zap.NewProductionConfig()
		if verbose {
			logCfg = zap.NewDevelopmentConfig()
		}
		logger, err := logCfg.Build()
		if err != nil {
			return err
		}
		defer logger.Sync()

		batchID := uuid.NewString()
		logger.Info("starting migration",
			zap.String("batch_id", batchID),
			zap.String("sqlite", sqlitePath),
			zap.String("database", mongoDatabase))

		summary, err := runImport(cmd.Context(), importConfig{
			SQLitePath:      sqlitePath,
			MongoURI:        mongoURI,
			MongoDatabase:   mongoDatabase,
			DefaultPassword: defaultPassword,
			BatchID:         batchID,
		}, logger)
		if err != nil {
			return err
		}

		logger.Info("migration complete",
			zap.String("batch_id", batchID),
			zap.Int("users", summary.Users),
			zap.Int("tiles", summary.Tiles),
			zap.Int("bills", summary.Bills),
			zap.Int("skipped", summary.Skipped))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "instance/database.db", "path to the legacy SQLite database")
	rootCmd.Flags().StringVar(&mongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	rootCmd.Flags().StringVar(&mongoDatabase, "mongo-database", "tilestock", "MongoDB database name")
	rootCmd.Flags().StringVar(&defaultPassword, "default-password", "", "password assigned to every imported account (required)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	_ = rootCmd.MarkFlagRequired("default-password")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
