//go:build linux

package main

import "hm3301"

func openLinuxBus(deviceName string) (hm3301.Bus, func() error, error) {
	conn, err := hm3301.CreateLinuxI2C(deviceName, false)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Close, nil
}
