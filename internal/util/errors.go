package util

import "errors"

var (
	ErrNoPageImages = errors.New("no page images found for document")
)
