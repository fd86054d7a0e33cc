package tracker

import "errors"

var ErrUnknownFormat = errors.New("unknown export format (want csv or xlsx)")
