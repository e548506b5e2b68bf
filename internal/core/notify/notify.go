// Package notify carries the transient toasts the browser shows after an action.
package notify

// Level is the toast style.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelLoading Level = "loading"
	LevelDismiss Level = "dismiss"
)

// Notice is one transient notification. Notices sharing an ID replace each other in the UI.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
}

// Success builds a success notice.
func Success(msg string) Notice { return Notice{Level: LevelSuccess, Message: msg} }

// Error builds an error notice.
func Error(msg string) Notice { return Notice{Level: LevelError, Message: msg} }

// Loading builds a loading notice that a later Dismiss with the same id closes.
func Loading(id, msg string) Notice { return Notice{Level: LevelLoading, Message: msg, ID: id} }

// Dismiss closes the loading notice with id.
func Dismiss(id string) Notice { return Notice{Level: LevelDismiss, ID: id} }
