package block

import (
	"fmt"
	"time"
)

// Image describes one stored image of an image block.
type Image struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Alt        string    `json:"alt"`
	Caption    string    `json:"caption"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Images reads the images stored in b's props.
func Images(b Block) ([]Image, error) {
	raw, ok := b.Props[PropImages]
	if !ok || raw == nil {
		return []Image{}, nil
	}
	var images []Image
	if err := fromGeneric(raw, &images); err != nil {
		return nil, fmt.Errorf("%w: images: %v", ErrInvalidContent, err)
	}
	if images == nil {
		images = []Image{}
	}
	return images, nil
}

// WithImages returns a copy of b whose props hold images.
func WithImages(b Block, images []Image) (Block, error) {
	if images == nil {
		images = []Image{}
	}
	v, err := toGeneric(images)
	if err != nil {
		return Block{}, fmt.Errorf("%w: images: %v", ErrInvalidContent, err)
	}
	return b.WithProp(PropImages, v), nil
}
