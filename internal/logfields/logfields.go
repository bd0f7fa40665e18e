// Package logfields defines canonical slog field names so log keys do
// not drift between packages.
package logfields

import "log/slog"

const (
	KeyStage      = "stage"
	KeyStep       = "step"
	KeyTopic      = "topic"
	KeyDocType    = "document_type"
	KeySection    = "section"
	KeyRecordID   = "record_id"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr   { return slog.String(KeyStage, name) }
func Step(s string) slog.Attr       { return slog.String(KeyStep, s) }
func Topic(t string) slog.Attr      { return slog.String(KeyTopic, t) }
func DocType(t string) slog.Attr    { return slog.String(KeyDocType, t) }
func Section(s string) slog.Attr    { return slog.String(KeySection, s) }
func RecordID(id string) slog.Attr  { return slog.String(KeyRecordID, id) }
func Method(m string) slog.Attr     { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr     { return slog.Int(KeyStatus, code) }
func RemoteAddr(a string) slog.Attr { return slog.String(KeyRemoteAddr, a) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
