package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wkchat/internal/config"
	"wkchat/internal/keycheck"
	"wkchat/internal/keystore"
	"wkchat/internal/logger"
)

type rootOptions struct {
	configPath string
	app        *app
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "wkchat",
		Short:         "Bring-your-own-key credential service for multi-provider AI chat",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, warnings, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Debug)
			for _, w := range warnings {
				log.Warn(w)
			}
			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to the configuration file")

	root.AddCommand(
		newServeCmd(opts),
		newKeysCmd(opts),
		newModelsCmd(opts),
		newProviderCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, opts.app)
		},
	}
}

func newKeysCmd(opts *rootOptions) *cobra.Command {
	keys := &cobra.Command{
		Use:   "keys",
		Short: "Manage stored provider API keys",
	}

	var reveal bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := opts.app.keys.List()
			if len(creds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No API keys stored.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tNAME\tKEY\tVALID\tLAST USED")
			for _, c := range creds {
				v := keystore.NewView(c, reveal)
				shown := v.MaskedKey
				if reveal {
					shown = v.Key
				}
				lastUsed := "-"
				if c.LastUsed != nil {
					lastUsed = c.LastUsed.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", c.Provider, c.Name, shown, c.Valid(), lastUsed)
			}
			return w.Flush()
		},
	}
	list.Flags().BoolVar(&reveal, "reveal", false, "show full keys instead of masked ones")

	set := &cobra.Command{
		Use:   "set <provider> <key>",
		Short: "Validate and store a key, replacing any existing key for the provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := opts.app.registry.Provider(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", keystore.ErrUnknownProvider, args[0])
			}
			cred, err := opts.app.checker.SaveKey(cmd.Context(), p.ID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s key %s\n", cred.Name, keystore.Mask(cred.Key))
			return nil
		},
	}

	del := &cobra.Command{
		Use:     "delete <provider>",
		Aliases: []string{"rm"},
		Short:   "Remove the key stored for a provider",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.app.keys.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s key\n", opts.app.registry.Normalize(args[0]))
			return nil
		},
	}

	check := &cobra.Command{
		Use:   "check [provider]",
		Short: "Re-validate stored keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var results []keycheck.Result
			if len(args) == 1 {
				r, err := opts.app.checker.Check(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				results = []keycheck.Result{r}
			} else {
				results = opts.app.checker.CheckAll(cmd.Context())
			}
			failed := 0
			for _, r := range results {
				if r.Valid {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", r.Provider)
					continue
				}
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid (%s)\n", r.Provider, r.Error)
			}
			if failed > 0 {
				return errors.New("some keys failed validation")
			}
			return nil
		},
	}

	keys.AddCommand(list, set, del, check)
	return keys
}

func newModelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List known models and the provider serving each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tNAME\tPROVIDER\tKEY")
			for _, m := range opts.app.registry.Models() {
				status := "missing"
				if opts.app.keys.Has(m.ProviderID) {
					status = "stored"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.ProviderID, status)
			}
			return w.Flush()
		},
	}
}

func newProviderCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "provider <model>",
		Short: "Print the provider a model id maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), opts.app.registry.ProviderForModel(args[0]))
			return nil
		},
	}
}
