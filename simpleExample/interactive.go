//go:build linux

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/term"

	"hm3301"
)

func getch() []byte {
	t, errOpen := term.Open("/dev/tty")
	if errOpen != nil {
		return nil
	}
	term.RawMode(t)
	bytes := make([]byte, 3)
	numRead, err := t.Read(bytes)
	t.Restore()
	t.Close()
	if err != nil {
		return nil
	}
	return bytes[0:numRead]
}

func printInteractiveHelp() {
	fmt.Printf("---- Interactive commands ----\n")
	fmt.Printf("e = send select I2C mode command\n")
	fmt.Printf("r = read measurement\n")
	fmt.Printf("a = print sensor address\n")
	fmt.Printf("h = print this help\n")
	fmt.Printf("ctrl+c = exit\n")
}

// This have colors :)
func interactiveMode(dev *hm3301.Dev[hm3301.Bus]) error {
	printInteractiveHelp()

	for {
		arr := getch()
		if len(arr) == 0 {
			return fmt.Errorf("no terminal input")
		}
		switch string(arr[0]) {
		case "\x03":
			os.Exit(0)
			return nil //Hack exit
		case "e":
			fmt.Printf("selecting I2C mode\n")
			if err := hm3301.EnableI2C(dev); err != nil {
				printError("Error selecting I2C mode: %v\n", err.Error())
			} else {
				color.Set(color.FgGreen)
				fmt.Printf("OK\n")
				color.Unset()
			}
		case "r":
			meas, err := hm3301.ReadMeasurement(dev)
			if err != nil {
				printError("Error reading: %v\n", err.Error())
			} else {
				printMeasurement(meas)
			}
		case "a":
			fmt.Printf("sensor address 0x%02X\n", dev.Address())
		case "h":
			printInteractiveHelp()
		}
	}
}
