package editor

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrUpload is returned when the object store rejects an upload.
	ErrUpload = errors.New("error uploading file")
	// ErrDelete is returned when the object store rejects a removal.
	ErrDelete = errors.New("error deleting file")
	// ErrPersist is returned when the order record could not be written.
	ErrPersist = errors.New("error saving file order")
	// ErrTooLarge is returned for uploads over the configured size limit.
	ErrTooLarge = errors.New("file is too large")
	// ErrNotConfirmed is returned when a delete was not confirmed.
	ErrNotConfirmed = errors.New("deletion not confirmed")
	// ErrInvalidMove is returned for reorder indexes outside the list.
	ErrInvalidMove = errors.New("invalid move")
	// ErrNotReady is returned for mutations on a session that has not loaded.
	ErrNotReady = errors.New("files are not loaded")
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("editing session not found")
)

// Message turns an error into the sentence shown to the admin.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "Unknown error"
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:]
}
