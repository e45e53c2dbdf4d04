//go:build linux

/*
Simple example how to use single HM3301 sensor on I2C bus

Reads n frames and prints them. Interactive mode allows sending commands by key press.
Simulated sensor can be used without hardware (-sim)
*/

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"hm3301"
	"hm3301/hm3301sim"
)

func listBuses() error {
	if _, err := host.Init(); err != nil {
		return err
	}
	for _, ref := range i2creg.All() {
		fmt.Printf("%v\t(number %v aliases %v)\n", ref.Name, ref.Number, ref.Aliases)
	}
	return nil
}

// bus and closing function
func openBus(deviceName string, usePeriph bool, simulate bool, exclusive bool) (hm3301.Bus, func() error, error) {
	if simulate {
		sim := hm3301sim.InitSimSensor(1)
		m := sim.Model()
		m.StdPM25 = hm3301sim.SignalModel{Offset: 12, Noise: 2, Amplitude: 5, Period: 60000}
		m.AtmPM25 = hm3301sim.SignalModel{Offset: 10, Noise: 2, Amplitude: 5, Period: 60000}
		m.StdPM10 = hm3301sim.SignalModel{Offset: 20, Noise: 3}
		m.AtmPM10 = hm3301sim.SignalModel{Offset: 18, Noise: 3}
		m.StdPM1 = hm3301sim.SignalModel{Offset: 6, Noise: 1}
		m.AtmPM1 = hm3301sim.SignalModel{Offset: 5, Noise: 1}
		sim.SetModel(m)
		return sim, func() error { return nil }, nil
	}
	if usePeriph {
		conn, closer, err := hm3301.OpenPeriph(deviceName)
		if err != nil {
			return nil, nil, err
		}
		return conn, closer.Close, nil
	}
	conn, err := hm3301.CreateLinuxI2C(deviceName, exclusive)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Close, nil
}

func printMeasurement(meas hm3301.Measurement) {
	color.Set(color.FgHiYellow)
	fmt.Printf("%v\n%v\n\n", time.Now().Format(time.RFC3339), meas.ToString())
	color.Unset()
}

func printError(format string, a ...interface{}) {
	color.Set(color.FgRed)
	fmt.Printf(format, a...)
	color.Unset()
}

func main() {
	pBusDevice := flag.String("bus", "", "i2c device file (/dev/i2c-1) or periph bus name with -periph")
	pPeriph := flag.Bool("periph", false, "use periph.io host drivers instead of i2c-dev")
	pSim := flag.Bool("sim", false, "use simulated sensor")
	pAddr := flag.String("addr", "40", "sensor address in hex")
	pCount := flag.Int("n", 1, "number of reads, 0=forever")
	pInterval := flag.Duration("interval", time.Second, "time between reads")
	pInteractive := flag.Bool("i", false, "interactive mode")
	pExclusive := flag.Bool("x", false, "refuse to run if other process has i2c device open")
	flag.Parse()

	if *pBusDevice == "" && !*pSim && !*pPeriph {
		fmt.Printf("Please define i2c device. (-h for help)\nList of i2c buses\n")
		if err := listBuses(); err != nil {
			printError("Error listing buses %v\n", err.Error())
			os.Exit(-1)
		}
		os.Exit(0)
	}

	addr, errAddr := strconv.ParseUint(*pAddr, 16, 16)
	if errAddr != nil {
		fmt.Printf("Invalid address, must be hex err=%v\n", errAddr.Error())
		os.Exit(-1)
	}

	bus, closeBus, errBus := openBus(*pBusDevice, *pPeriph, *pSim, *pExclusive)
	if errBus != nil {
		printError("Opening bus %v failed %v\n", *pBusDevice, errBus.Error())
		os.Exit(-1)
	}
	defer closeBus()

	dev, errDev := hm3301.NewAt(bus, uint16(addr))
	if errDev != nil {
		printError("%v\n", errDev.Error())
		return
	}

	if *pInteractive {
		if err := interactiveMode(dev); err != nil {
			printError("ERR=%v\n", err.Error())
		}
		return
	}

	if err := enableI2C(dev); err != nil {
		printError("Selecting I2C mode failed %v\n", err.Error())
		return
	}

	for i := 0; *pCount == 0 || i < *pCount; i++ {
		if 0 < i {
			time.Sleep(*pInterval)
		}
		meas, err := hm3301.ReadMeasurement(dev)
		if err != nil {
			printError("Read failed %v\n", err.Error())
			continue
		}
		printMeasurement(meas)
	}
}

// Bus may be busy, retry would block few times
func enableI2C(dev *hm3301.Dev[hm3301.Bus]) error {
	var err error
	for i := 0; i < 5; i++ {
		err = hm3301.EnableI2C(dev)
		if !errors.Is(err, hm3301.ErrWouldBlock) {
			return err
		}
		time.Sleep(10 * time.Millisecond)
	}
	return err
}
