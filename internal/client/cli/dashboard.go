package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ewaste/internal/client/services"
)

// Dashboard prints the user's stats, environmental impact, the leaderboard
// and the accepted waste types. Sections that failed to load are marked
// unavailable.
func (a *App) Dashboard(ctx context.Context) error {
	d := a.market.Dashboard(ctx)

	a.printf("== Your recycling ==\n")
	if d.Stats != nil {
		a.printf("Total recycled: %.1f kg\n", d.Stats.TotalWaste)
		for _, w := range d.Stats.WasteByType {
			a.printf("  %-15s %8.1f kg\n", w.Type, w.Amount)
		}
	} else {
		a.unavailable(d.Errors[services.SectionStats])
	}

	a.printf("\n== Environmental impact ==\n")
	if d.Impact != nil {
		a.printf("CO2 saved:    %.1f kg\n", d.Impact.CO2Saved)
		a.printf("Water saved:  %.0f L\n", d.Impact.WaterSaved)
		a.printf("Energy saved: %.0f kWh\n", d.Impact.EnergySaved)
		if d.Impact.TreesPlanted > 0 {
			a.printf("Trees:        %.0f\n", d.Impact.TreesPlanted)
		}
	} else {
		a.unavailable(d.Errors[services.SectionImpact])
	}

	a.printf("\n== Leaderboard ==\n")
	if err, failed := d.Errors[services.SectionLeaderboard]; failed {
		a.unavailable(err)
	} else {
		tw := newTable(a.out)
		for _, e := range d.Leaderboard {
			fmt.Fprintf(tw, "#%d\t%s\t%d pts\n", e.Rank, e.Name, e.Points)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	a.printf("\n== Accepted waste types ==\n")
	if err, failed := d.Errors[services.SectionWasteTypes]; failed {
		a.unavailable(err)
	} else {
		for _, t := range d.WasteTypes {
			a.printf("  %s\n", t.Name)
		}
	}
	return nil
}

func (a *App) unavailable(err error) {
	if err == nil {
		a.printf("  (no data)\n")
		return
	}
	a.printf("  (unavailable: %v)\n", err)
}
