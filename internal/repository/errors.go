package repository

import "errors"

var (
	// ErrNoScreenshot indicates the request carried neither a URL nor
	// inline bytes.
	ErrNoScreenshot = errors.New("request carries no screenshot")

	// ErrBadEncoding indicates the inline screenshot was not valid base64
	// or not a decodable image.
	ErrBadEncoding = errors.New("screenshot bytes are not a decodable image")
)
