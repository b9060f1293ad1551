package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/groblegark/fieldscript/internal/model"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printConfigTable(view *model.ConfigView) {
	fmt.Printf("ID:        %d\n", view.ID)
	fmt.Printf("Field:     %s (%d)\n", view.FieldName, view.FieldID)
	fmt.Printf("Context:   %s\n", view.ContextName)
	fmt.Printf("Version:   %s\n", view.Version)
	fmt.Printf("Cacheable: %t\n", view.Cacheable)
	if view.ScriptBody != "" {
		fmt.Printf("Script:\n%s\n", indent(view.ScriptBody, "  "))
	}
	if len(view.Changelogs) > 0 {
		fmt.Printf("\nChangelog (%d entries):\n", len(view.Changelogs))
		for _, entry := range view.Changelogs {
			fmt.Printf("\n  [%s] %s: %s\n", entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.Author, entry.Comment)
			if entry.Diff != "" {
				fmt.Println(indent(colorizeDiff(entry.Diff), "    "))
			}
		}
	}
}

func printConfigListTable(views []*model.ConfigView) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFIELD\tCONTEXT\tCACHEABLE\tVERSION\tEDITS")
	for _, v := range views {
		name := v.FieldName
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\t%d\n",
			v.ID,
			name,
			v.ContextName,
			v.Cacheable,
			v.Version,
			len(v.Changelogs),
		)
	}
	w.Flush()
	fmt.Printf("\n%d configs\n", len(views))
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// colorizeDiff highlights added/removed lines when stdout is a terminal.
// NO_COLOR disables it per https://no-color.org.
func colorizeDiff(diff string) string {
	if os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return diff
	}
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines[i] = "\x1b[32m" + line + "\x1b[0m"
		case strings.HasPrefix(line, "-"):
			lines[i] = "\x1b[31m" + line + "\x1b[0m"
		}
	}
	return strings.Join(lines, "\n")
}
