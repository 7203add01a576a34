package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/twinfer/pcsx2-gamelist/internal/filter"
	"github.com/twinfer/pcsx2-gamelist/pkg/catalog"
	"github.com/twinfer/pcsx2-gamelist/pkg/gamelist"
)

func newRecordsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "Print the decoded cache records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.records(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), a.flags.format, records)
		},
	}
}

func newGamesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "Print the library entries built from the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.records(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), a.flags.format, catalog.Games(records))
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Save the library entries into the catalog store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.records(cmd.Context())
			if err != nil {
				return err
			}
			games := catalog.Games(records)

			store, err := catalog.OpenStore(a.cfg.StoreDir)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SaveAll(games); err != nil {
				return err
			}
			a.logger.Info("Imported games", "count", len(games), "store", a.cfg.StoreDir)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d games into %s\n", len(games), a.cfg.StoreDir)
			return nil
		},
	}
}

// records decodes the cache and applies the configured selection.
func (a *app) records(ctx context.Context) ([]gamelist.Record, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	data, path, err := a.readCache()
	if err != nil {
		return nil, err
	}
	records, err := gamelist.Decode(ctx, data, a.decoderOptions()...)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if a.cfg.SkipEmptySerial {
		kept := records[:0]
		for _, r := range records {
			if r.Serial != "" {
				kept = append(kept, r)
			}
		}
		records = kept
	}
	if a.filter != nil {
		records, err = filter.Apply(a.filter, records)
		if err != nil {
			return nil, err
		}
	}
	a.logger.Debug("Selected game records", "path", path, "count", len(records))
	return records, nil
}
