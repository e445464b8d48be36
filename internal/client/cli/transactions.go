package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ewaste/internal/client/models"
)

// Transactions prints the recycling transactions.
func (a *App) Transactions(ctx context.Context) error {
	items, err := a.market.ListTransactions(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(items) == 0 {
		a.printf("No transactions yet\n")
		return nil
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tDATE\tWASTE TYPE\tQUANTITY\tLOCATION\tSTATUS")
	for _, t := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g %s\t%s\t%s\n",
			t.ID, orDash(t.Date), t.WasteType, t.Quantity, t.Unit, orDash(t.Location), t.Status)
	}
	return tw.Flush()
}

// Transaction prints one transaction.
func (a *App) Transaction(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Enter transaction ID")
	if err != nil {
		return a.report(err)
	}
	t, err := a.market.GetTransaction(ctx, id)
	if err != nil {
		return a.report(err)
	}

	a.printf("Waste type: %s\nQuantity:   %g %s\nDate:       %s\n", t.WasteType, t.Quantity, t.Unit, orDash(t.Date))
	a.printf("Location:   %s\nStatus:     %s\n", orDash(t.Location), t.Status)
	if t.Description != "" {
		a.printf("\n%s\n", t.Description)
	}
	return nil
}

// AddTransaction records a hand-over of e-waste.
func (a *App) AddTransaction(ctx context.Context) error {
	var in models.TransactionInput
	var err error

	if in.WasteType, err = a.prompt("Waste type (e.g. Electronics, Batteries)"); err != nil {
		return a.report(err)
	}
	qty, err := a.prompt("Quantity")
	if err != nil {
		return a.report(err)
	}
	if in.Quantity, err = parseFloat(qty); err != nil {
		return a.report(badInput(err))
	}
	if in.Unit, err = a.promptDefault("Unit", "kg"); err != nil {
		return a.report(err)
	}
	if in.Date, err = a.prompt("Date YYYY-MM-DD (empty for today)"); err != nil {
		return a.report(err)
	}
	if in.Location, err = a.prompt("Location"); err != nil {
		return a.report(err)
	}
	if in.Description, err = a.prompt("Description (optional)"); err != nil {
		return a.report(err)
	}
	if in.Status, err = a.promptDefault("Status (pending, completed, cancelled)", string(models.TransactionPending)); err != nil {
		return a.report(err)
	}

	t, err := a.market.CreateTransaction(ctx, in)
	if err != nil {
		return a.report(err)
	}
	a.printf("Transaction %s recorded\n", t.ID)
	return nil
}
