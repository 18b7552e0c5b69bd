package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mcdev12/auctiondraft/go/internal/docstore"
	"github.com/mcdev12/auctiondraft/go/internal/draft"
	"github.com/mcdev12/auctiondraft/go/internal/draft/actionlog"
	"github.com/mcdev12/auctiondraft/go/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var cfg Config

	root := &cobra.Command{
		Use:           "auctiondraft",
		Short:         "Auction draft state engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadConfig()
			if err != nil {
				return err
			}
			cfg = loaded
			setupLogging(cfg.LogLevel)
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(&cfg),
		newResetCmd(&cfg),
		newVerifyCmd(&cfg),
		newHistoryCmd(&cfg),
		newSeedCmd(&cfg),
	)
	return root
}

func newServeCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the read-write and read-only servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			services, err := setupServices(ctx, *cfg, true)
			if err != nil {
				return err
			}
			defer services.Close()

			state, err := services.App.Bootstrap(ctx)
			if err != nil {
				return fmt.Errorf("failed to bootstrap draft state: %w", err)
			}
			log.Info().
				Int64("version", state.Version).
				Int("players_available", len(state.AvailablePlayerIDs)).
				Int("teams", len(state.Teams)).
				Int("admin_port", cfg.AdminPort).
				Int("public_port", cfg.PublicPort).
				Msg("starting auction draft")

			if err := services.Relay.Start(ctx); err != nil {
				return err
			}
			defer func() {
				if err := services.Relay.Stop(); err != nil {
					log.Error().Err(err).Msg("failed to stop action relay")
				}
			}()

			return runServers(ctx, setupAdminServer(*cfg, services), setupPublicServer(*cfg, services))
		},
	}
}

func newResetCmd(cfg *Config) *cobra.Command {
	var (
		force           bool
		expectedVersion int64
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reinitialize the draft from configuration, players and owners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			services, err := setupServices(ctx, *cfg, true)
			if err != nil {
				return err
			}
			defer services.Close()

			if err := services.Relay.Start(ctx); err != nil {
				return err
			}
			req := draft.ResetRequest{Force: force}
			if cmd.Flags().Changed("expected-version") {
				req.ExpectedVersion = &expectedVersion
			}
			res, err := services.App.Reset(ctx, req)
			if stopErr := services.Relay.Stop(); stopErr != nil {
				log.Error().Err(stopErr).Msg("failed to stop action relay")
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "draft reset to version %d with %d players and %d teams\n",
				res.Version, len(res.State.AvailablePlayerIDs), len(res.State.Teams))
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "reset even over an unreadable state and without a version check")
	cmd.Flags().Int64Var(&expectedVersion, "expected-version", 0, "fail unless the current version matches")
	return cmd
}

func newVerifyCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the stored draft state against every invariant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			services, err := setupServices(ctx, *cfg, false)
			if err != nil {
				return err
			}
			defer services.Close()

			state, err := services.App.Verify(ctx)
			if err != nil {
				return err
			}

			picks := 0
			for _, t := range state.Teams {
				picks += len(t.Picks)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "draft state ok: version %d, %d picks, %d players available\n",
				state.Version, picks, len(state.AvailablePlayerIDs))
			return nil
		},
	}
}

func newHistoryCmd(cfg *Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the action log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			ctx := cmd.Context()
			services, err := setupServices(ctx, *cfg, false)
			if err != nil {
				return err
			}
			defer services.Close()

			entries, err := services.App.History(ctx)
			if err != nil {
				return err
			}
			if limit > 0 && limit < len(entries) {
				entries = entries[len(entries)-limit:]
			}
			return printHistory(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "only print the last N entries")
	return cmd
}

func printHistory(out io.Writer, entries []actionlog.Entry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tTIME\tACTION\tOWNER\tDATA")
	for _, e := range entries {
		owner := "-"
		if e.OwnerID != nil {
			owner = fmt.Sprint(*e.OwnerID)
		}
		data, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode entry %s: %w", e.ID, err)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.Version, e.Timestamp.Format("2006-01-02 15:04:05"), e.Action(), owner, data)
	}
	return tw.Flush()
}

func newSeedCmd(cfg *Config) *cobra.Command {
	var playersFile, ownersFile string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the default configuration and import players and owners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			storage, err := setupStorage(ctx, *cfg)
			if err != nil {
				return err
			}
			defer storage.Close()
			out := cmd.OutOrStdout()

			if _, err := storage.Docs.Config.Load(ctx); errors.Is(err, docstore.ErrNotFound) {
				if err := storage.Docs.Config.Save(ctx, models.DefaultConfiguration()); err != nil {
					return fmt.Errorf("failed to write default configuration: %w", err)
				}
				fmt.Fprintf(out, "wrote default configuration to %s\n", cfg.ConfigPath())
			} else if err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}

			players, err := seedDocument(cmd, storage.Docs.Players, playersFile, func(p []models.Player) error {
				_, err := models.IndexPlayers(p)
				return err
			})
			if err != nil {
				return fmt.Errorf("players: %w", err)
			}
			owners, err := seedDocument(cmd, storage.Docs.Owners, ownersFile, validateOwners)
			if err != nil {
				return fmt.Errorf("owners: %w", err)
			}

			fmt.Fprintf(out, "%d players, %d owners\n", players, owners)
			return nil
		},
	}
	cmd.Flags().StringVar(&playersFile, "players", "", "JSON or YAML file of players to import")
	cmd.Flags().StringVar(&ownersFile, "owners", "", "JSON or YAML file of owners to import")
	return cmd
}

// seedDocument imports src into store when given, otherwise creates an empty document
// if none exists. It returns the number of items the store now holds.
func seedDocument[T any](cmd *cobra.Command, store docstore.Store[[]T], src string, validate func([]T) error) (int, error) {
	ctx := cmd.Context()
	if src != "" {
		items, err := docstore.NewFileStore[[]T](src).Load(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", src, err)
		}
		if err := validate(items); err != nil {
			return 0, err
		}
		if err := store.Save(ctx, items); err != nil {
			return 0, fmt.Errorf("failed to save: %w", err)
		}
		return len(items), nil
	}

	items, err := store.Load(ctx)
	if errors.Is(err, docstore.ErrNotFound) {
		return 0, store.Save(ctx, []T{})
	}
	return len(items), err
}

func validateOwners(owners []models.Owner) error {
	seen := make(map[int]bool, len(owners))
	for _, o := range owners {
		if o.ID <= 0 || seen[o.ID] {
			return fmt.Errorf("bad or duplicate owner id %d", o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}
