package analysis

import "errors"

var (
	ErrNoImage         = errors.New("no image supplied")
	ErrUpstream        = errors.New("vision provider request failed")
	ErrUpstreamTimeout = errors.New("vision provider request timed out")
	ErrImageTooLarge   = errors.New("image exceeds size limit")
)
