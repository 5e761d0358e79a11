package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/biztracker/internal/client"
	"github.com/jhoicas/biztracker/pkg/config"
	"github.com/jhoicas/biztracker/pkg/logger"
	"github.com/jhoicas/biztracker/pkg/preferences"
)

// app estado compartido por los subcomandos, resuelto en PersistentPreRunE.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	api       *client.Client
	prefsPath string

	baseURL  string
	token    string
	verbose  bool
	prefsArg string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "bizctl",
		Short:         "Cliente de operación de BizTracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.baseURL, "api", "", "URL base de la API (por defecto CLIENT_BASE_URL)")
	root.PersistentFlags().StringVar(&a.token, "token", "", "Bearer token (por defecto CLIENT_TOKEN)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "registro detallado en stderr")
	root.PersistentFlags().StringVar(&a.prefsArg, "prefs", "", "archivo de preferencias")

	root.AddCommand(
		newRelationshipsCmd(a),
		newLinkCmd(a),
		newConvertCmd(a),
		newJobCmd(a),
		newItemsCmd(a),
		newPrefsCmd(a),
		newTokenCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := "warn"
	if a.verbose {
		level = "debug"
	}
	a.log = logger.New(logger.Config{Env: "development", Level: level, Out: os.Stderr})

	clientCfg := cfg.Client
	if a.baseURL != "" {
		clientCfg.BaseURL = a.baseURL
	}
	if a.token != "" {
		clientCfg.Token = a.token
	}
	a.api = client.New(clientCfg, a.log)

	a.prefsPath = a.prefsArg
	if a.prefsPath == "" {
		if a.prefsPath, err = preferences.DefaultPath(); err != nil {
			return err
		}
	}
	return nil
}
