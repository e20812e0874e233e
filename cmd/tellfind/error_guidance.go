package main

import (
	"errors"

	"tellfind/internal/finds"
	"tellfind/internal/sheets"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var findErr *finds.Error
	if errors.As(err, &findErr) {
		switch findErr.Kind {
		case finds.KindValidation:
			if findErr.Code == finds.ErrCodeInvalidUser {
				lines = append(lines, "hint: log in again with: tellfind login")
			}
		case finds.KindConflict:
			lines = append(lines, "hint: pick a different --id or omit it to generate one.")
		case finds.KindStorage:
			lines = append(lines, "hint: check free space and the data directory; see: tellfind --log-level debug")
		}
		return lines
	}

	if errors.Is(err, sheets.ErrNoScriptURL) {
		lines = append(lines, "hint: set sheets_script_url in the config file or TELLFIND_SHEETS_URL.")
	}
	return lines
}
