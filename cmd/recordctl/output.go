package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
)

var (
	outputFormat string // "table", "json", "raw"
	outputField  string // for -field=key
)

// recordColumns are printed ahead of everything else so a record
// always reads id first instead of alphabetically.
var recordColumns = []string{"id", "created_at", "updated_at"}

func printResult(data map[string]any) {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(data) //nolint:errcheck
	case "raw":
		printRaw(data)
	default:
		printTable(data)
	}
}

func printRaw(data map[string]any) {
	if outputField != "" {
		if v, ok := data[outputField]; ok {
			fmt.Println(formatValue(v))
		}
		return
	}
	for _, k := range orderedKeys(data) {
		fmt.Printf("%s=%s\n", k, formatValue(data[k]))
	}
}

// printTable renders identity columns as plain rows and the fields map
// as an indented block underneath its uppercased key.
func printTable(data map[string]any) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	for _, k := range orderedKeys(data) {
		nested, ok := data[k].(map[string]any)
		if !ok {
			fmt.Fprintf(w, "%s\t%s\n", k, formatValue(data[k]))
			continue
		}
		fmt.Fprintf(w, "%s\t\n", strings.ToUpper(k))
		inner := make([]string, 0, len(nested))
		for kk := range nested {
			inner = append(inner, kk)
		}
		sort.Strings(inner)
		for _, kk := range inner {
			fmt.Fprintf(w, "  %s\t%s\n", kk, formatValue(nested[kk]))
		}
	}
}

func orderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	head := make(map[string]bool, len(recordColumns))
	for _, c := range recordColumns {
		if _, ok := m[c]; ok {
			keys = append(keys, c)
			head[c] = true
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !head[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// formatValue flattens slices and prints whole JSON numbers without
// the float64 fraction the decoder gives them.
func formatValue(v any) string {
	switch val := v.(type) {
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = formatValue(p)
		}
		return strings.Join(parts, ", ")
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
}

func printSuccess(msg string) {
	fmt.Println(msg)
}
