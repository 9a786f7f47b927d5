package domain

import (
	"errors"
	"time"
)

var ErrDeviceCodeExpired = errors.New("device code expired before authorization completed")

// DeviceCode is what the user needs to authorize this machine, plus the
// polling parameters the provider asked for.
type DeviceCode struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	Interval        time.Duration
	ExpiresIn       time.Duration
}
