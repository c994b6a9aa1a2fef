package slogex

import "log/slog"

// Error renders err under the "error" key. A nil error gives an empty
// attribute, which handlers drop.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}
