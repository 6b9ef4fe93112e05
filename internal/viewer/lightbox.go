package viewer

// Lightbox is the navigation state of the full-screen image view. Moving
// past either end wraps around.
type Lightbox struct {
	Count   int
	Current int
}

// NewLightbox opens a lightbox over count images at index start. An out of
// range start is wrapped into range.
func NewLightbox(count, start int) Lightbox {
	return Lightbox{Count: count, Current: wrap(start, count)}
}

// Next moves to the following image.
func (l Lightbox) Next() Lightbox {
	return Lightbox{Count: l.Count, Current: wrap(l.Current+1, l.Count)}
}

// Prev moves to the preceding image.
func (l Lightbox) Prev() Lightbox {
	return Lightbox{Count: l.Count, Current: wrap(l.Current-1, l.Count)}
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// gridColumns sizes the image grid to the number of images.
func gridColumns(count int) int {
	switch {
	case count <= 1:
		return 1
	case count == 2:
		return 2
	default:
		return 3
	}
}
