package messaging

import "errors"

var ErrBrokerClosed = errors.New("broker closed")
