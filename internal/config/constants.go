package config

import "time"

// Timeouts.
const (
	DBTimeout       = 5 * time.Second
	ShutdownTimeout = 5 * time.Second
	TimerTick       = time.Second
	TUIRefreshEvery = 30 * time.Second
)

// Report labels. Entries lacking a user or task are grouped under these.
const (
	UnassignedLabel = "Sin asignar"
	NoTaskLabel     = "Sin tarea"
)

// Report formats.
const (
	DayLabelLayout  = "02/01"
	CSVDateLayout   = "02/01/2006 15:04"
	DateInputLayout = "2006-01-02"
)

// WhatsApp intake markers.
const (
	WhatsAppMessageSeparator = "\n\n--- Mensaje de WhatsApp ---\n"
	PollDescriptionFormat    = "Tarea creada desde encuesta de WhatsApp: %q"
)

// ErrorPrefix precedes the action name in fallback error messages.
const ErrorPrefix = "Error al "

// Application settings.
const (
	AppName            = "tasktrack"
	DBFileName         = "tasktrack.db"
	EnvPrefix          = "TASKTRACK_"
	DefaultAddr        = ":8080"
	DefaultDriver      = "sqlite3"
	DefaultTimezone    = "Europe/Madrid"
	MinPassphraseChars = 8
)
