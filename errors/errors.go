package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrUserAlreadyExists = fmt.Errorf("user already exists")
	ErrSessionNotFound   = fmt.Errorf("session not found")
	ErrSessionCodeTaken  = fmt.Errorf("session code already taken")
)
