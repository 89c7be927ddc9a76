package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"quizdesk/internal/app"
	"quizdesk/internal/config"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/file"
)

// NewImportCmd copies quiz documents from a directory into the configured quiz store.
func NewImportCmd(configPath *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import <quizId>.json documents into the quiz store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackends(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			imported, err := importDocuments(cmd.Context(), dir, b.documents)
			if err != nil {
				return err
			}
			log.Printf("imported %d quizzes from %s", imported, dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "data", "directory holding quiz documents")
	return cmd
}

// importDocuments saves every valid quiz document in dir. Documents that do not
// parse are skipped with a log line; a store failure aborts the import.
func importDocuments(ctx context.Context, dir string, dst app.DocumentStore) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	imported := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || name == file.SubmissionsFile {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return imported, err
		}
		if _, err := domain.Normalize(raw); err != nil {
			log.Printf("skip %s: %v", name, err)
			continue
		}
		quizID := strings.TrimSuffix(name, ".json")
		if err := dst.SaveDocument(ctx, quizID, raw); err != nil {
			return imported, fmt.Errorf("import %s: %w", quizID, err)
		}
		imported++
	}
	return imported, nil
}
