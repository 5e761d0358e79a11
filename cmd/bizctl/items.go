package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/inventory"
	"github.com/jhoicas/biztracker/pkg/preferences"
)

func newItemsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Inventario",
	}

	var lang string
	var lowOnly bool
	report := &cobra.Command{
		Use:   "report",
		Short: "Informe de stock con los umbrales de las preferencias locales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := preferences.Load(a.prefsPath)
			if err != nil {
				return err
			}
			tag, err := language.Parse(lang)
			if err != nil {
				return fmt.Errorf("idioma %q: %w", lang, err)
			}
			items := a.api.ListItems(cmd.Context())
			writeReport(cmd.OutOrStdout(), message.NewPrinter(tag), items, prefs, lowOnly)
			return nil
		},
	}
	report.Flags().StringVar(&lang, "lang", "es", "idioma para el formato numérico")
	report.Flags().BoolVar(&lowOnly, "low", false, "sólo ítems en warning o error")

	cmd.AddCommand(report)
	return cmd
}

type reportRow struct {
	item   *entity.Item
	status inventory.Status
	value  decimal.Decimal
}

// writeReport agrupa según prefs.GroupBy y evalúa el stock con prefs.Thresholds().
func writeReport(w io.Writer, p *message.Printer, items []dto.ItemResponse, prefs preferences.Preferences, lowOnly bool) {
	th := prefs.Thresholds()
	groups := map[string][]reportRow{}
	var all []*entity.Item
	for i := range items {
		it := items[i].ToEntity()
		all = append(all, it)
		row := reportRow{item: it, status: inventory.StockStatus(it, th), value: inventory.InventoryValue(it)}
		if lowOnly && row.status == inventory.StatusSuccess {
			continue
		}
		key := ""
		switch prefs.GroupBy {
		case preferences.GroupCategory:
			key = it.Category
		case preferences.GroupItemType:
			key = it.ItemType
		}
		groups[key] = append(groups[key], row)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		if prefs.GroupBy != preferences.GroupNone {
			label := k
			if label == "" {
				label = "(sin grupo)"
			}
			fmt.Fprintf(tw, "== %s ==\n", label)
		}
		fmt.Fprintln(tw, "NOMBRE\tSKU\tSTOCK\tESTADO\tVALOR\tMARKUP")
		rows := groups[k]
		sort.Slice(rows, func(i, j int) bool { return rows[i].item.Name < rows[j].item.Name })
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.item.Name, r.item.SKU, stockLabel(p, r.item), r.status,
				p.Sprintf("%.2f", r.value.InexactFloat64()),
				inventory.FormatMarkup(r.item.Price, r.item.Cost))
		}
	}
	_ = tw.Flush()

	counts, _ := inventory.CountStatuses(all, th)
	total := inventory.TotalInventoryValue(all)
	p.Fprintf(w, "\n%d ítems · valor %.2f · success %d · warning %d · error %d\n",
		len(all), total.InexactFloat64(), counts.Success, counts.Warning, counts.Error)
}

func stockLabel(p *message.Printer, it *entity.Item) string {
	if it.IsContinuous() && it.PriceType != entity.PriceTypeEach {
		return p.Sprintf("%.2f %s", it.Measure.Value, it.Measure.Unit)
	}
	return p.Sprintf("%.0f", it.Quantity.InexactFloat64())
}
