package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printServices(w io.Writer, list []domain.ServiceRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tPORT\tENABLED\tSTATUS\tTXT")
	for _, r := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%s\t%s\n",
			r.ID, r.Name, r.ServiceType, r.Port, r.Enabled, r.Status, formatTXT(r.Attributes))
	}
	return tw.Flush()
}

func printLogs(w io.Writer, entries []domain.LogEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), strings.ToUpper(string(e.Level)), e.Message)
	}
	return tw.Flush()
}

// formatTXT renders attributes as sorted k=v pairs.
func formatTXT(attrs map[string]string) string {
	keys := slices.Sorted(maps.Keys(attrs))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+attrs[k])
	}
	return strings.Join(parts, ",")
}

// parseTXT parses repeated key=value flags.
func parseTXT(pairs []string) (map[string]string, error) {
	attrs := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, domain.Validationf("txt attribute %q must be key=value", p)
		}
		attrs[k] = v
	}
	return attrs, nil
}
