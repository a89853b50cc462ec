package main

// Default command-line flag values
const (
	defaultOutput   = "data/raw/survey_24ch.raw"
	defaultSeed     = 42
	defaultSeconds  = 7.5 // fifteen half-second segments
	defaultLineFreq = 60.0
)

// Memory conversion
const (
	bytesPerSample   = 4
	bytesPerKilobyte = 1024
	outDirPerm       = 0o755
)
