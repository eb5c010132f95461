package main

import (
	"os"

	"github.com/blocklessnetwork/car-utils/car"
)

// openCar opens path as a random-access CAR v1 reader.
func openCar(path string) (*car.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := car.OpenReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return r, f, nil
}
