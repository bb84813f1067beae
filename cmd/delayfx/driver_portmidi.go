//go:build portmidi

package main

// MIDI input for -midi goes through PortMidi; build with -tags portmidi and
// libportmidi installed.
import _ "gitlab.com/gomidi/midi/v2/drivers/portmididrv"
