package ggblend

// Builder is the vector-algebra backend the blend synthesizer emits into.
//
// V is a handle to one batch of packed pixels, four channels per pixel in
// storage order. Backends either evaluate each call immediately (the CPU
// lane backend) or record it (the WGSL backend). The synthesizer compares
// handles with == to detect values it already produced, so a backend must
// return the same handle for Zero and One on every call and a fresh handle
// for every computed value. The zero value of V means "no value".
type Builder[V comparable] interface {
	// Zero returns the all-zero vector.
	Zero() V
	// One returns the vector with every lane at 1.0 in the lane type.
	One() V

	Add(a, b V) V
	Sub(a, b V) V
	Mul(a, b V) V
	Min(a, b V) V
	Max(a, b V) V

	// Comp returns 1 - a.
	Comp(a V) V

	// And combines two masks.
	And(a, b V) V
	// Select picks a where mask is set and b elsewhere.
	Select(mask, a, b V) V

	// SelectChannels picks a at the storage positions set in channels and
	// b at the others, in every pixel.
	SelectChannels(channels [4]bool, a, b V) V
	// Broadcast copies storage position channel into all four positions
	// of every pixel.
	Broadcast(a V, channel int) V
	// ChannelMask returns a constant mask set at the storage positions
	// set in channels.
	ChannelMask(channels [4]bool) V

	// Name attaches a debug name to v. Backends without names return v.
	Name(v V, name string) V
}
