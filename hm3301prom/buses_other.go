//go:build !linux

package main

import (
	"fmt"

	"hm3301"
)

func openLinuxBus(deviceName string) (hm3301.Bus, func() error, error) {
	return nil, nil, fmt.Errorf("i2c-dev %v not available on this platform, use periph: true", deviceName)
}
