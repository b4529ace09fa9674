package protocol

import "bytes"

const (
	// MaxTrailingArgs is how many trailing invocation arguments identify a node.
	MaxTrailingArgs = 3
	// MaxArgBytes bounds each argument's contribution to the descriptor.
	MaxArgBytes = 127
	// DescriptorCapacity is the daemon-side buffer size, terminator included.
	DescriptorCapacity = 256
	// MaxDescriptorBytes is the largest descriptor payload.
	MaxDescriptorBytes = DescriptorCapacity - 1
)

// TrailingArgs returns a copy of the last MaxTrailingArgs entries of args.
func TrailingArgs(args []string) []string {
	start := len(args) - MaxTrailingArgs
	if start < 0 {
		start = 0
	}
	out := make([]string, len(args)-start)
	copy(out, args[start:])
	return out
}

// BuildDescriptor concatenates trailing in reverse order. Each argument
// contributes at most MaxArgBytes bytes and the result never exceeds
// MaxDescriptorBytes; whatever does not fit is dropped. Truncation is
// byte-based and may split a multi-byte character.
func BuildDescriptor(trailing []string) string {
	var buf bytes.Buffer
	buf.Grow(MaxDescriptorBytes)
	for i := len(trailing) - 1; i >= 0; i-- {
		room := MaxDescriptorBytes - buf.Len()
		if room <= 0 {
			break
		}
		arg := trailing[i]
		if len(arg) > MaxArgBytes {
			arg = arg[:MaxArgBytes]
		}
		if len(arg) > room {
			arg = arg[:room]
		}
		buf.WriteString(arg)
	}
	return buf.String()
}
