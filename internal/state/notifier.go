package state

// Notifier shows user-facing messages.
type Notifier interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string)
}

type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Warning(string) {}
func (NopNotifier) Error(string)   {}

// UsingBackupData is the warning shown when a list was served by the backup.
const UsingBackupData = "using backup data"
