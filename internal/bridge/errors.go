package bridge

import "errors"

// ErrContainerResolution indicates the construction-time container could not
// be resolved to a mountable element.
var ErrContainerResolution = errors.New("container resolution failed")

// ErrNoChannel indicates the embedded surface has no live inbound channel.
var ErrNoChannel = errors.New("surface channel unavailable")
