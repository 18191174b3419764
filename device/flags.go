package device

import "strings"

// Flags report transient stream conditions seen by a callback.
type Flags uint

const (
	InputUnderflow Flags = 1 << iota
	InputOverflow
	OutputUnderflow
	OutputOverflow
	PrimingOutput
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{InputUnderflow, "input_underflow"},
	{InputOverflow, "input_overflow"},
	{OutputUnderflow, "output_underflow"},
	{OutputOverflow, "output_overflow"},
	{PrimingOutput, "priming_output"},
}

// Names lists the set flags.
func (f Flags) Names() []string {
	var out []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			out = append(out, fn.name)
		}
	}
	return out
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	return strings.Join(f.Names(), "|")
}
