package daemon

import "codeberg.org/mutker/rogctl/internal/errors"

const (
	ErrPIDFile       errors.ErrorCode = "pid_file_failed"
	ErrWatchState    errors.ErrorCode = "watch_state_failed"
	ErrDBusConnect   errors.ErrorCode = "dbus_connect_failed"
	ErrDBusExport    errors.ErrorCode = "dbus_export_failed"
	ErrDBusNameTaken errors.ErrorCode = "dbus_name_taken"
)

func init() {
	errors.RegisterMessage(ErrPIDFile, "Failed to manage PID file")
	errors.RegisterMessage(ErrWatchState, "Failed to watch state file")
	errors.RegisterMessage(ErrDBusConnect, "Failed to connect to the system bus")
	errors.RegisterMessage(ErrDBusExport, "Failed to export D-Bus object")
	errors.RegisterMessage(ErrDBusNameTaken, "D-Bus name is owned by another process")
}
