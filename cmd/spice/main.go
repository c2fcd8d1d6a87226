// Package main provides the spice command: a DC operating-point solver for
// SPICE netlists.
//
// Usage:
//
//	spice op <netlist>...
//	spice query <netlist> <target>
//	spice serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
