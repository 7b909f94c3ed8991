package main

import (
	"fmt"
	"strconv"

	"phaseshift/internal/config"
	"phaseshift/internal/errors"
)

var positionalNames = []string{
	"degree", "entry", "cs", "nc", "method", "num_integers", "bit_width", "cycles", "experiments",
}

// applyPositional overlays the run command's positional arguments on rc, in order
func applyPositional(rc *config.RunConfig, args []string) error {
	if len(args) > len(positionalNames) {
		return errors.ConfigInvalid(fmt.Sprintf("expected at most %d arguments, got %d", len(positionalNames), len(args)))
	}
	ints := []*int{&rc.Degree, &rc.Entry, &rc.CS, &rc.NC, nil, &rc.NumIntegers, &rc.BitWidth, &rc.Cycles, &rc.Experiments}
	for i, arg := range args {
		if ints[i] == nil {
			rc.Method = arg
			continue
		}
		v, err := strconv.Atoi(arg)
		if err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", positionalNames[i], arg))
		}
		*ints[i] = v
	}
	return nil
}
