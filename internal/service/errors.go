package service

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrSlugConflict        = errors.New("slug already exists")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("account is not allowed to sign in")
	ErrRateLimited         = errors.New("too many requests")
	ErrFileTooLarge        = errors.New("file is too large")
	ErrUnsupportedType     = errors.New("unsupported file type")
	ErrAdsenseNotConnected = errors.New("adsense account is not connected")
	ErrNotConfigured       = errors.New("integration is not configured")
)

func isNotConnected(err error) bool {
	return errors.Is(err, ErrAdsenseNotConnected)
}
