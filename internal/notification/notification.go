package notification

import "context"

// Level is the severity of a user facing notice
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notice is a short message shown to the user after an operation
type Notice struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Sink delivers notices to a user. An empty userID addresses the operators.
type Sink interface {
	Notify(ctx context.Context, userID string, notice Notice) error
}

func Success(title, message string) Notice {
	return Notice{Level: LevelSuccess, Title: title, Message: message}
}

func Failure(title, message string) Notice {
	return Notice{Level: LevelError, Title: title, Message: message}
}
