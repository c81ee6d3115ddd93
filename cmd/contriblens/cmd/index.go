package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/contriblens/contriblens/internal/output"
	"github.com/contriblens/contriblens/internal/store"
	"github.com/contriblens/contriblens/internal/watcher"
)

func newIndexCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "index <corpus.yaml>",
		Short: "Build the store from a corpus file",
		Long: `Load repositories, opportunities, and contributor profiles from a
YAML corpus file into the local store, building the lexical and vector
indexes used for search.

With --watch the command keeps running and re-ingests the corpus
whenever the file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runIndex(ctx, cmd, args[0], watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-ingest the corpus when the file changes")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, corpusPath string, watch bool) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.OpenIndexedStore(ctx, cfg.Store.Dir,
		store.WithStoreLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := ingestCorpus(ctx, out, st, corpusPath); err != nil {
		return err
	}

	if !watch {
		return nil
	}

	return watchCorpus(ctx, out, st, corpusPath)
}

// ingestCorpus loads the corpus file and replaces the store contents.
func ingestCorpus(ctx context.Context, out *output.Writer, st *store.IndexedStore, corpusPath string) error {
	corpus, err := store.LoadCorpus(corpusPath)
	if err != nil {
		return err
	}

	if err := st.Ingest(ctx, corpus); err != nil {
		return err
	}

	out.Successf("Indexed %d opportunities, %d repositories, %d profiles from %s",
		len(corpus.Opportunities), len(corpus.Repositories), len(corpus.Profiles), corpusPath)
	return nil
}

// watchCorpus re-ingests the corpus on every debounced file change until
// the context is canceled.
func watchCorpus(ctx context.Context, out *output.Writer, st *store.IndexedStore, corpusPath string) error {
	w, err := watcher.NewFileWatcher(corpusPath, watcher.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("watch corpus: %w", err)
	}
	defer func() { _ = w.Stop() }()

	go func() { _ = w.Start(ctx) }()

	out.Statusf("👀", "Watching %s for changes (Ctrl+C to stop)", corpusPath)

	for {
		select {
		case <-ctx.Done():
			out.Status("✓", "Watch stopped")
			return nil
		case err := <-w.Errors():
			slog.Warn("watch error", slog.String("error", err.Error()))
		case <-w.Changes():
			if err := ingestCorpus(ctx, out, st, corpusPath); err != nil {
				// Editors save partial states; keep watching instead of
				// aborting on a transiently unparseable file.
				out.Errorf("Re-index failed: %v", err)
				slog.Error("corpus re-index failed", slog.String("error", err.Error()))
			}
		}
	}
}
