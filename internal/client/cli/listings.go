package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/ewaste/internal/client/models"
)

// Listings prints all marketplace listings.
func (a *App) Listings(ctx context.Context) error {
	items, err := a.market.ListListings(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(items) == 0 {
		a.printf("No listings yet\n")
		return nil
	}

	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tCONDITION\tQTY\tPRICE\tLOCATION\tSTATUS")
	for _, l := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			l.ID, l.Title, orDash(l.Category), orDash(string(l.Condition)), l.Quantity,
			formatPrice(l.Price), orDash(l.Location), orDash(string(l.Status)))
	}
	return tw.Flush()
}

// Listing prints one listing in full.
func (a *App) Listing(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Enter listing ID")
	if err != nil {
		return a.report(err)
	}
	l, err := a.market.GetListing(ctx, id)
	if err != nil {
		return a.report(err)
	}

	a.printf("%s\n%s\n", l.Title, strings.Repeat("-", len(l.Title)))
	a.printf("%s\n\n", l.Description)
	a.printf("Category:  %s\nCondition: %s\nQuantity:  %d\nPrice:     %s\n",
		orDash(l.Category), orDash(string(l.Condition)), l.Quantity, formatPrice(l.Price))
	a.printf("Location:  %s\nContact:   %s\nStatus:    %s\nListed:    %s\n",
		orDash(l.Location), orDash(l.ContactInfo), orDash(string(l.Status)), formatTime(l.CreatedAt))
	for _, img := range l.Images {
		a.printf("Image:     %s\n", img)
	}
	return nil
}

// AddListing prompts for a new listing and optional image files.
func (a *App) AddListing(ctx context.Context) error {
	in, err := a.readListing(models.Listing{})
	if err != nil {
		return a.report(err)
	}
	images, err := getList(a.reader, "Image files to upload", a.out)
	if err != nil {
		return a.report(err)
	}

	l, err := a.market.CreateListing(ctx, in, images)
	if err != nil {
		return a.report(err)
	}
	a.printf("Listing %s created\n", l.ID)
	return nil
}

// EditListing updates a listing; empty input keeps a field unchanged.
func (a *App) EditListing(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Enter listing ID")
	if err != nil {
		return a.report(err)
	}
	current, err := a.market.GetListing(ctx, id)
	if err != nil {
		return a.report(err)
	}

	in, err := a.readListing(*current)
	if err != nil {
		return a.report(err)
	}
	in.Images = current.Images

	if _, err := a.market.UpdateListing(ctx, id, in); err != nil {
		return a.report(err)
	}
	return nil
}

// DeleteListing removes a listing after confirmation.
func (a *App) DeleteListing(ctx context.Context, args []string) error {
	id, err := a.argOrPrompt(args, "Enter listing ID")
	if err != nil {
		return a.report(err)
	}
	answer, err := a.prompt("Delete listing " + id + "? (y/N)")
	if err != nil {
		return a.report(err)
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.printf("Cancelled\n")
		return nil
	}
	return a.report(a.market.DeleteListing(ctx, id))
}

// readListing collects listing fields, offering cur's values as defaults.
func (a *App) readListing(cur models.Listing) (models.ListingInput, error) {
	var in models.ListingInput
	var err error

	if in.Title, err = a.promptDefault("Title", cur.Title); err != nil {
		return in, err
	}
	if cur.Description == "" {
		in.Description, err = getMultiline(a.reader, "Description", a.out)
	} else {
		in.Description, err = a.promptDefault("Description", cur.Description)
	}
	if err != nil {
		return in, err
	}
	if in.Category, err = a.promptDefault("Category (e.g. Electronics, Batteries, Appliances)", cur.Category); err != nil {
		return in, err
	}
	if in.Condition, err = a.promptDefault("Condition (new, like new, good, fair, poor)", string(cur.Condition)); err != nil {
		return in, err
	}

	qty, err := a.promptDefault("Quantity", quantityDefault(cur.Quantity))
	if err != nil {
		return in, err
	}
	if in.Quantity, err = parseInt(qty); err != nil {
		return in, badInput(err)
	}

	price, err := a.promptDefault("Price (empty for free)", priceDefault(cur.Price))
	if err != nil {
		return in, err
	}
	if in.Price, err = parseOptionalFloat(price); err != nil {
		return in, badInput(err)
	}

	if in.Location, err = a.promptDefault("Location", cur.Location); err != nil {
		return in, err
	}
	if in.ContactInfo, err = a.promptDefault("Contact information", cur.ContactInfo); err != nil {
		return in, err
	}
	return in, nil
}

func quantityDefault(q int) string {
	if q == 0 {
		return "1"
	}
	return strconv.Itoa(q)
}

func priceDefault(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func formatPrice(p *float64) string {
	if p == nil || *p == 0 {
		return "free"
	}
	return fmt.Sprintf("$%.2f", *p)
}
