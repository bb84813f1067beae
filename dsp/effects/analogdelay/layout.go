package analogdelay

// ChannelSet is a bus channel configuration, valued by its channel count.
type ChannelSet int

const (
	Disabled ChannelSet = 0
	Mono     ChannelSet = 1
	Stereo   ChannelSet = 2
)

// String returns the channel set name.
func (c ChannelSet) String() string {
	switch c {
	case Disabled:
		return "disabled"
	case Mono:
		return "mono"
	case Stereo:
		return "stereo"
	default:
		return "unsupported"
	}
}

// Layout is the main input/output bus pair offered by a host.
type Layout struct {
	Input  ChannelSet
	Output ChannelSet
}

// SupportsLayout reports whether the engine accepts l: the output must be
// mono or stereo, must not exceed the engine's channel count, and the input
// must match the output. Hosts call this before Prepare; Process never
// rejects a block.
func (e *Engine) SupportsLayout(l Layout) bool {
	if l.Output != Mono && l.Output != Stereo {
		return false
	}
	if int(l.Output) > e.numChannels {
		return false
	}
	return l.Input == l.Output
}
