package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"exam-drill-service/internal/config"
	"exam-drill-service/internal/domain"
	"exam-drill-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewArchiveCmd inspects question sets stored in the Postgres archive.
func NewArchiveCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived question sets",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived question set as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			set, err := postgres.NewQuestionArchive(pool).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeArchivedSet(cmd.OutOrStdout(), set)
		},
	})
	return cmd
}

type archivedSetJSON struct {
	ID        string            `json:"id"`
	Config    domain.QuizConfig `json:"config"`
	Questions []domain.Question `json:"questions"`
	CreatedAt string            `json:"createdAt"`
}

func writeArchivedSet(w io.Writer, set postgres.ArchivedSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(archivedSetJSON{
		ID:        set.ID,
		Config:    set.Config,
		Questions: set.Questions,
		CreatedAt: set.CreatedAt.UTC().Format(time.RFC3339),
	})
}
