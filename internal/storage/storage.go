package storage

import "errors"

var (
	ErrAdminExists      = errors.New("admin already exists")
	ErrAdminNotFound    = errors.New("admin not found")
	ErrAdminsRegistered = errors.New("admins already registered")
	ErrProjectNotFound  = errors.New("project not found")
	ErrVisitorNotFound  = errors.New("visitor not found")
	ErrVisitorExists    = errors.New("visitor already exists")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileName = errors.New("invalid file name")
	ErrFileNotFound    = errors.New("file not found")
)
