package editor

import (
	"fmt"
	"unicode/utf8"

	"github.com/phrazzld/memoryblocks/internal/domain/block"
)

// MaxNoteLength bounds the mood note, in characters.
const MaxNoteLength = 500

// MoodEditor edits the pinned mood block. Its emotion becomes the
// emotion of the memory.
type MoodEditor struct {
	core
}

// NewMoodEditor wraps a mood block.
func NewMoodEditor(b block.Block, onChange func(block.Block), opts ...Option) (*MoodEditor, error) {
	e := &MoodEditor{}
	if err := e.init(b, block.TypeMood, onChange, opts); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *MoodEditor) setProp(key string, value any) {
	e.mu.Lock()
	updated := e.set(e.block.WithProp(key, value))
	e.mu.Unlock()

	e.emit(updated)
}

// SetEmotion selects one of block.Emotions.
func (e *MoodEditor) SetEmotion(emotion string) error {
	if !block.IsKnownEmotion(emotion) {
		return fmt.Errorf("%w: unknown emotion %q", ErrInvalidValue, emotion)
	}
	e.setProp(block.PropEmotion, emotion)
	return nil
}

// SetIntensity sets how strongly the emotion was felt.
func (e *MoodEditor) SetIntensity(n int) error {
	if n < block.MinIntensity || n > block.MaxIntensity {
		return fmt.Errorf("%w: intensity %d outside %d..%d", ErrInvalidValue, n, block.MinIntensity, block.MaxIntensity)
	}
	e.setProp(block.PropIntensity, n)
	return nil
}

// SetNote sets the free-form note.
func (e *MoodEditor) SetNote(note string) error {
	if utf8.RuneCountInString(note) > MaxNoteLength {
		return fmt.Errorf("%w: note longer than %d characters", ErrInvalidValue, MaxNoteLength)
	}
	e.setProp(block.PropNote, note)
	return nil
}
