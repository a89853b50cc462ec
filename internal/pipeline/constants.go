package pipeline

// bufferGrowthFactor is the capacity multiplier applied when a RingBuffer
// runs out of space.
const bufferGrowthFactor = 2
