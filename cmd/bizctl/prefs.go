package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/biztracker/pkg/preferences"
)

func newPrefsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Preferencias locales (umbrales de stock bajo, vista, agrupación)",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Muestra las preferencias",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preferences.Load(a.prefsPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "archivo:   %s\n", a.prefsPath)
			fmt.Fprintf(out, "quantity:  %g\n", p.QuantityThreshold)
			fmt.Fprintf(out, "viewMode:  %s\n", p.ViewMode)
			fmt.Fprintf(out, "groupBy:   %s\n", p.GroupBy)
			for _, u := range p.Units() {
				fmt.Fprintf(out, "%-10s %g\n", u+":", p.UnitThresholds[u])
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <quantity|unidad|viewMode|groupBy> <valor>",
		Short: "Cambia una preferencia",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := preferences.Load(a.prefsPath)
			if err != nil {
				return err
			}
			if err := p.Set(args[0], args[1]); err != nil {
				return err
			}
			return preferences.Save(a.prefsPath, p)
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Vuelve a los valores por defecto",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return preferences.Save(a.prefsPath, preferences.Defaults())
		},
	}

	cmd.AddCommand(show, set, reset)
	return cmd
}
