package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"contractguard-web/internal/upload"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBoard(w io.Writer, rows []upload.StageRow) {
	for _, row := range rows {
		marker := " "
		if row.Active {
			marker = ">"
		}
		line := fmt.Sprintf("%s %-22s %s", marker, row.Title, row.Label)
		if row.Progress != nil {
			line += fmt.Sprintf(" (%d%%)", *row.Progress)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
		if row.Note != "" {
			fmt.Fprintf(w, "    %s\n", row.Note)
		}
	}
}
