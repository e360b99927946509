package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeySlot       = "slot"
	KeyTitle      = "title"
	KeyHandle     = "handle"
	KeyStatus     = "status"
	KeyToken      = "token"
	KeyPort       = "port"
	KeyRunID      = "run_id"
	KeyRemaining  = "remaining"
	KeyDelay      = "delay"
	KeyDurationMS = "duration_ms"
	KeyScore      = "score"
	KeyPath       = "path"
	KeyError      = "error"
)

func Slot(id int) slog.Attr           { return slog.Int(KeySlot, id) }
func Title(t string) slog.Attr        { return slog.String(KeyTitle, t) }
func Handle(h uintptr) slog.Attr      { return slog.Uint64(KeyHandle, uint64(h)) }
func Status(s string) slog.Attr       { return slog.String(KeyStatus, s) }
func Token(t string) slog.Attr        { return slog.String(KeyToken, t) }
func Port(p string) slog.Attr         { return slog.String(KeyPort, p) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Remaining(n int) slog.Attr       { return slog.Int(KeyRemaining, n) }
func Delay(d string) slog.Attr        { return slog.String(KeyDelay, d) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Score(s float64) slog.Attr       { return slog.Float64(KeyScore, s) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
