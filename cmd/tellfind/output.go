package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"tellfind/internal/models"
)

func writeJSON(payload any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeFindList(finds []models.Find) error {
	for _, find := range finds {
		if err := writePlain("%s\n", formatFindLine(find)); err != nil {
			return err
		}
	}
	return nil
}

func writeFindDetail(find *models.Find) error {
	lines := []string{
		fmt.Sprintf("id: %s", find.ID),
		fmt.Sprintf("site: %s", find.Site),
		fmt.Sprintf("plot: %s", find.Plot),
		fmt.Sprintf("layer: %s", find.Layer),
		fmt.Sprintf("description: %s", find.Description),
		fmt.Sprintf("location: %s", find.Location),
		fmt.Sprintf("recorded: %s", find.DatetimeText),
		fmt.Sprintf("created_at: %s", formatTime(find.CreatedAt)),
		fmt.Sprintf("created_by: %s", find.CreatedBy),
	}
	if find.UpdatedAt != nil {
		lines = append(lines, fmt.Sprintf("updated_at: %s", formatTime(*find.UpdatedAt)))
	}
	if len(find.Media) > 0 {
		lines = append(lines, "media:")
		for _, ref := range find.Media {
			lines = append(lines, fmt.Sprintf("  - %s [%s] %s", ref.ID, ref.Kind, ref.Name))
		}
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatFindLine(find models.Find) string {
	line := fmt.Sprintf("%s [%s] %s/%s - %s", find.ID, find.Site, find.Plot, find.Layer, find.Description)
	if n := len(find.Media); n > 0 {
		line += fmt.Sprintf(" (%d media)", n)
	}
	return line
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
