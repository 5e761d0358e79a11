package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

func newRelationshipsCmd(a *app) *cobra.Command {
	var relType string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "relationships",
		Aliases: []string{"rel"},
		Short:   "Consulta relaciones de una entidad",
	}

	lookup := func(direction string) *cobra.Command {
		return &cobra.Command{
			Use:   direction + " <id> <Item|Purchase|Sale|Asset>",
			Short: "Relaciones donde la entidad es " + direction,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				et, err := entity.ParseEntityType(args[1])
				if err != nil {
					return err
				}
				rt := entity.RelationshipType(relType)
				if rt != "" && !rt.Valid() {
					return fmt.Errorf("tipo de relación desconocido %q", relType)
				}
				var rels []entity.Relationship
				if direction == "primary" {
					rels = a.api.GetByPrimary(cmd.Context(), args[0], et, rt)
				} else {
					rels = a.api.GetBySecondary(cmd.Context(), args[0], et, rt)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), rels)
				}
				printRelationships(cmd.OutOrStdout(), rels)
				return nil
			},
		}
	}

	remove := &cobra.Command{
		Use:   "rm <id>",
		Short: "Borra una relación",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.api.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "relación %s borrada\n", args[0])
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&relType, "type", "t", "", "filtra por tipo de relación")
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "salida JSON")
	cmd.AddCommand(lookup("primary"), lookup("secondary"), remove)
	return cmd
}

func newLinkCmd(a *app) *cobra.Command {
	var amount float64
	var unit, notes string

	cmd := &cobra.Command{
		Use:   "link <product-material|purchase-item|sale-item> <primaryId> <secondaryId>",
		Short: "Crea una relación con los atajos de la API",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := dto.LinkRequest{Notes: notes}
			if amount > 0 {
				d := measurement.Quantity(amount)
				if unit != "" {
					var err error
					if d, err = measurement.Of(amount, unit); err != nil {
						return err
					}
				}
				in.Measurements = &d
			}

			var rel *entity.Relationship
			var err error
			switch args[0] {
			case "product-material":
				rel, err = a.api.LinkProductMaterial(cmd.Context(), args[1], args[2], in)
			case "purchase-item":
				rel, err = a.api.LinkPurchaseItem(cmd.Context(), args[1], args[2], in)
			case "sale-item":
				rel, err = a.api.LinkSaleItem(cmd.Context(), args[1], args[2], in)
			default:
				return fmt.Errorf("atajo desconocido %q", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "relación %s creada (%s)\n", rel.ID, rel.Type)
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "cantidad o medida")
	cmd.Flags().StringVar(&unit, "unit", "", "unidad de la medida (kg, m, l, ...)")
	cmd.Flags().StringVar(&notes, "notes", "", "notas")
	return cmd
}

func printRelationships(w io.Writer, rels []entity.Relationship) {
	if len(rels) == 0 {
		fmt.Fprintln(w, "sin relaciones")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIPO\tPRIMARIA\tSECUNDARIA\tMEDIDA\tLEGADO")
	for _, r := range rels {
		m := "-"
		if r.Measurements != nil {
			m = r.Measurements.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s:%s\t%s:%s\t%s\t%t\n",
			r.ID, r.Type, r.PrimaryType, r.PrimaryID, r.SecondaryType, r.SecondaryID, m, r.IsLegacy)
	}
	_ = tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
