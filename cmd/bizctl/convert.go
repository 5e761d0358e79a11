package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/domain/entity"
)

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convierte referencias embebidas del modelo anterior en relaciones",
	}

	single := &cobra.Command{
		Use:   "entity <Item|Purchase|Sale|Asset> <id>",
		Short: "Convierte una sola entidad y espera el resultado",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			et, err := entity.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			res, err := a.api.ConvertLegacyRelationships(cmd.Context(), args[1], et)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Message)
			fmt.Fprintf(out, "creadas %d, omitidas %d, errores %d\n", res.Result.Created, res.Result.Skipped, res.Result.Errors)
			for _, d := range res.Result.Details {
				fmt.Fprintf(out, "  - %s\n", d)
			}
			if !res.Success {
				return fmt.Errorf("la conversión de %s %s terminó con errores", et, args[1])
			}
			return nil
		},
	}

	var wait bool
	var interval time.Duration
	all := &cobra.Command{
		Use:   "all",
		Short: "Lanza la conversión masiva (rol owner)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := a.api.ConvertAllRelationships(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trabajo %s iniciado\n", jobID)
			if !wait {
				return nil
			}
			if interval <= 0 {
				interval = a.cfg.Client.PollInterval
			}
			status, err := a.api.WaitForJob(cmd.Context(), jobID, interval, func(s *dto.JobStatusResponse) {
				fmt.Fprintf(out, "\r%-9s %-8s %5.1f%%", s.Status, s.Phase, s.PercentComplete)
			})
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			printJobStatus(out, status)
			if status.Status == entity.JobStatusFailed {
				return fmt.Errorf("el trabajo %s falló: %s", jobID, status.Error)
			}
			return nil
		},
	}
	all.Flags().BoolVarP(&wait, "wait", "w", false, "sondea el estado hasta que termine")
	all.Flags().DurationVar(&interval, "interval", 0, "intervalo de sondeo (por defecto CONVERSION_POLL_INTERVAL)")

	cmd.AddCommand(single, all)
	return cmd
}

func newJobCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "job <jobId>",
		Short: "Estado de un trabajo de conversión",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.api.GetConversionJobStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printJobStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func printJobStatus(w io.Writer, s *dto.JobStatusResponse) {
	fmt.Fprintf(w, "trabajo %s: %s (%.1f%%)\n", s.JobID, s.Status, s.PercentComplete)
	rows := []struct {
		name string
		p    entity.CategoryProgress
	}{
		{"items", s.Progress.Items},
		{"purchases", s.Progress.Purchases},
		{"sales", s.Progress.Sales},
		{"assets", s.Progress.Assets},
		{"total", s.Totals},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-10s %4d/%-4d convertidas %4d  errores %4d\n",
			r.name, r.p.Processed, r.p.Total, r.p.Converted, r.p.Errors)
	}
	if s.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", s.Error)
	}
}
