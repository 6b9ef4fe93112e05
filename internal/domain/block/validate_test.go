package block

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, errs []error) []string {
	t.Helper()
	fields := make([]string, 0, len(errs))
	for _, err := range errs {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			fields = append(fields, vErr.Field)
			continue
		}
		fields = append(fields, err.Error())
	}
	return fields
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		block      Block
		wantValid  bool
		wantFields []string
	}{
		{
			name:       "missing id",
			block:      Block{Type: TypeDivider},
			wantFields: []string{"id"},
		},
		{
			name:       "missing type stops further checks",
			block:      Block{},
			wantFields: []string{"id", "type"},
		},
		{
			name:       "paragraph with empty content",
			block:      Block{ID: "1", Type: TypeParagraph},
			wantFields: []string{"content"},
		},
		{
			name:      "paragraph with content",
			block:     Block{ID: "1", Type: TypeParagraph, Content: []any{"<p>hello</p>"}},
			wantValid: true,
		},
		{
			name:       "image without images",
			block:      Block{ID: "1", Type: TypeImage, Props: map[string]any{PropImages: []any{}}},
			wantFields: []string{"props.images"},
		},
		{
			name:       "image with images missing entirely",
			block:      Block{ID: "1", Type: TypeImage},
			wantFields: []string{"props.images"},
		},
		{
			name: "image with one image",
			block: Block{ID: "1", Type: TypeImage, Props: map[string]any{
				PropImages: []any{map[string]any{"id": "a", "url": "https://example.com/a.png"}},
			}},
			wantValid: true,
		},
		{
			name: "mood with both rules broken reports both",
			block: Block{ID: "1", Type: TypeMood, Props: map[string]any{
				PropEmotion:   "",
				PropIntensity: 11,
			}},
			wantFields: []string{"props.emotion", "props.intensity"},
		},
		{
			name: "mood with fractional intensity",
			block: Block{ID: "1", Type: TypeMood, Props: map[string]any{
				PropEmotion:   "calm",
				PropIntensity: 4.5,
			}},
			wantFields: []string{"props.intensity"},
		},
		{
			name: "mood with intensity as json number",
			block: Block{ID: "1", Type: TypeMood, Props: map[string]any{
				PropEmotion:   "calm",
				PropIntensity: json.Number("10"),
			}},
			wantValid: true,
		},
		{
			name: "mood with zero intensity",
			block: Block{ID: "1", Type: TypeMood, Props: map[string]any{
				PropEmotion:   "calm",
				PropIntensity: 0,
			}},
			wantFields: []string{"props.intensity"},
		},
		{
			name:      "checklist has no block-level requirement",
			block:     Block{ID: "1", Type: TypeChecklist},
			wantValid: true,
		},
		{
			name:      "divider has no block-level requirement",
			block:     Block{ID: "1", Type: TypeDivider},
			wantValid: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res := Validate(tc.block)

			assert.Equal(t, tc.wantValid, res.Valid)
			assert.Equal(t, tc.wantFields, nilIfEmpty(fieldsOf(t, res.Errors)))
			for _, err := range res.Errors {
				assert.True(t, errors.Is(err, ErrBlockValidation))
			}
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestValidate_UnknownTypeShortCircuits(t *testing.T) {
	t.Parallel()

	res := Validate(Block{ID: "1", Type: "poll", Props: map[string]any{PropEmotion: ""}})

	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], ErrUnknownBlockType))
}

func TestValidate_NewMoodUntilComplete(t *testing.T) {
	t.Parallel()

	mood := mustNew(t, TypeMood)
	assert.False(t, Validate(mood).Valid, "fresh mood block has no emotion")

	mood = mood.WithProp(PropEmotion, "grateful")
	assert.True(t, Validate(mood).Valid)

	mood = mood.WithProp(PropIntensity, 11)
	assert.False(t, Validate(mood).Valid)

	mood = mood.WithProp(PropIntensity, 1)
	assert.True(t, Validate(mood).Valid)
}

func TestValidate_ImageBlockFromDescriptors(t *testing.T) {
	t.Parallel()

	b := mustNew(t, TypeImage)
	assert.False(t, Validate(b).Valid)

	b, err := WithImages(b, []Image{{ID: "a", URL: "https://example.com/a.png", UploadedAt: time.Now()}})
	require.NoError(t, err)
	assert.True(t, Validate(b).Valid)
}
