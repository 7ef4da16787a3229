package domain

import "time"

// Frame is one rendered raster image on disk, written once by the renderer
// and read once by the assembler. It persists after the run as a side
// artifact.
type Frame struct {
	Key      ScanKey
	Path     string
	ScanTime time.Time
}

// FrameSequence is the ordered list of frames, oldest to newest. Its order is
// the sole contract the assembler depends on.
type FrameSequence []Frame

// Paths returns the frame file paths in sequence order.
func (s FrameSequence) Paths() []string {
	paths := make([]string, len(s))
	for i, f := range s {
		paths[i] = f.Path
	}
	return paths
}
