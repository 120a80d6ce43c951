package internal

import "errors"

var ErrLinkNotFound = errors.New("link not found")
var ErrInvalidCategory = errors.New("invalid category")
