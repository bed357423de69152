package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/floodworks/sesloc/internal/record"
	"github.com/spf13/cobra"
)

var (
	listCategory string
	listSearch   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged locations",
	Long:  "Fetch all locations from the backend, reconcile the local queue against them, and print the filtered result.",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "",
		"Only show this category")
	listCmd.Flags().StringVar(&listSearch, "search", "",
		"Only show locations whose name or description contains this term")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	items, err := a.engine.Refresh(context.Background())
	if err != nil {
		return fmt.Errorf("could not load locations: %w", err)
	}

	filtered := filterItems(items, listCategory, listSearch)

	out := cmd.OutOrStdout()
	if len(filtered) == 0 {
		fmt.Fprintln(out, "No matching locations.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tLOGGED\tLOCATION\tMAP")
	for _, it := range filtered {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			orPlaceholder(it.Name, "(No name)"),
			it.Category,
			orPlaceholder(it.CreatedAt, "—"),
			formatCoords(it),
			mapsLink(it),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Loaded %d locations.\n", len(items))
	return nil
}

// filterItems applies the category chip and search term the same way the
// map/list views do: category must match exactly, the term is matched
// case-insensitively against name plus description.
func filterItems(items []record.Record, category, search string) []record.Record {
	term := strings.ToLower(strings.TrimSpace(search))

	var filtered []record.Record
	for _, it := range items {
		if category != "" && string(it.Category) != category {
			continue
		}
		if term != "" {
			hay := strings.ToLower(it.Name + " " + it.Description)
			if !strings.Contains(hay, term) {
				continue
			}
		}
		filtered = append(filtered, it)
	}
	return filtered
}

func formatCoords(it record.Record) string {
	if math.IsNaN(it.Lat) || math.IsNaN(it.Lng) {
		return "—"
	}
	return fmt.Sprintf("%.6f,%.6f", it.Lat, it.Lng)
}

func mapsLink(it record.Record) string {
	if math.IsNaN(it.Lat) || math.IsNaN(it.Lng) {
		return "—"
	}
	return fmt.Sprintf("https://maps.google.com/?q=%v,%v", it.Lat, it.Lng)
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
