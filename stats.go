package retroframe

// FrameStats is a FrameObserver that keeps running counters of uploads.
// A render pipeline can use it to detect geometry changes and refresh the
// display aspect ratio.
type FrameStats struct {
	Frames        uint64
	Reallocations uint64
	PerRowUploads uint64
	Last          FrameInfo
}

// FrameUploaded records info.
func (s *FrameStats) FrameUploaded(info FrameInfo) {
	s.Frames++
	if info.Reallocated {
		s.Reallocations++
	}
	if info.Path == UploadPerRow {
		s.PerRowUploads++
	}
	s.Last = info
}

// AspectRatio returns width/height of the last uploaded frame, or 0 if no
// frame has been seen.
func (s *FrameStats) AspectRatio() float64 {
	if s.Last.Height == 0 {
		return 0
	}
	return float64(s.Last.Width) / float64(s.Last.Height)
}

// Reset clears all counters.
func (s *FrameStats) Reset() {
	*s = FrameStats{}
}
