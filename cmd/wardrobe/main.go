// Command wardrobe runs the wardrobe API and offers the recommendation
// engine on the command line.
package main

import (
    "database/sql"
    "encoding/json"
    "fmt"
    "io"
    "os"

    "github.com/spf13/cobra"

    "github.com/Enochrwa/wardrobe-system-backend/internal/config"
    "github.com/Enochrwa/wardrobe-system-backend/internal/database"
    "github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
    "github.com/Enochrwa/wardrobe-system-backend/internal/repository"
    "github.com/Enochrwa/wardrobe-system-backend/pkg/logging"
)

func main() {
    if err := newRootCmd().Execute(); err != nil {
        os.Exit(1)
    }
}

func newRootCmd() *cobra.Command {
    root := &cobra.Command{
        Use:   "wardrobe",
        Short: "Wardrobe assistant backend",
        Long: `Wardrobe assistant backend.

Available subcommands:
  serve     - run the HTTP API and the event consumer
  recommend - rank a user's outfits or items for an occasion
  suggest   - list categories a user's wardrobe is short of`,
        SilenceUsage: true,
        PersistentPreRun: func(*cobra.Command, []string) {
            logging.Setup()
        },
    }
    root.AddCommand(newServeCmd(), newRecommendCmd(), newSuggestCmd())
    return root
}

// openDB connects with the configured credentials and creates the
// schema when DB_BOOTSTRAP is set.
func openDB(cmd *cobra.Command, cfg config.Config) (*sql.DB, error) {
    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        return nil, fmt.Errorf("open database: %w", err)
    }
    if cfg.DBBootstrap {
        if err := database.Bootstrap(cmd.Context(), db); err != nil {
            _ = db.Close()
            return nil, fmt.Errorf("bootstrap schema: %w", err)
        }
    }
    return db, nil
}

// newService builds the recommendation service over the MySQL store.
func newService(cfg config.Config, db *sql.DB) (*recommend.Service, error) {
    catalog, err := recommend.LoadCatalog(cfg.Recommend.CatalogPath)
    if err != nil {
        return nil, fmt.Errorf("load occasion catalog: %w", err)
    }
    return recommend.NewService(repository.NewStore(db), catalog, recommend.Config{
        TopK:           cfg.Recommend.TopK,
        RecencyDays:    cfg.Recommend.RecencyDays,
        RecencyPenalty: cfg.Recommend.RecencyPenalty,
    }), nil
}

func printJSON(w io.Writer, v any) error {
    enc := json.NewEncoder(w)
    enc.SetIndent("", "  ")
    return enc.Encode(v)
}
