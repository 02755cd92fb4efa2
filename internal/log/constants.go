package log

// Attribute keys used with log/slog throughout mmake.
const (
	Args     = "args"
	Cmd      = "cmd"
	Code     = "code"
	Dir      = "dir"
	Duration = "duration"
	Error    = "error"
	Event    = "event"
	Filename = "filename"
	Line     = "line"
	Path     = "path"
	Prereq   = "prereq"
	Reason   = "reason"
	Target   = "target"
)
