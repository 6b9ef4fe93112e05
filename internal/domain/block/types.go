package block

// Type identifies a block variant. The set of types is closed.
type Type string

// Registered block types
const (
	TypeParagraph Type = "paragraph"
	TypeChecklist Type = "checklist"
	TypeImage     Type = "image"
	TypeMood      Type = "mood"
	TypeDivider   Type = "divider"
)

// Category groups block types in the insertion selector.
type Category string

// Block categories, listed in selector order by Categories.
const (
	CategoryText     Category = "text"
	CategoryMedia    Category = "media"
	CategoryTracking Category = "tracking"
	CategoryLayout   Category = "layout"
)

// Divider styles
const (
	DividerLine   = "line"
	DividerDashed = "dashed"
	DividerDotted = "dotted"
	DividerDouble = "double"
	DividerStars  = "stars"
	DividerWave   = "wave"
)

// DividerStyles lists the accepted divider styles in display order.
var DividerStyles = []string{
	DividerLine, DividerDashed, DividerDotted, DividerDouble, DividerStars, DividerWave,
}

// Props keys shared by the factory, validation, editors and renderer.
const (
	PropImages    = "images"
	PropLayout    = "layout"
	PropEmotion   = "emotion"
	PropIntensity = "intensity"
	PropNote      = "note"
	PropStyle     = "style"
	PropColor     = "color"
)

// Intensity bounds for mood blocks.
const (
	MinIntensity     = 1
	MaxIntensity     = 10
	DefaultIntensity = 5
)

// DefaultDividerColor is the divider color assigned by the factory.
const DefaultDividerColor = "#d1d5db"

// Definition describes a registered block type.
type Definition struct {
	Type        Type     `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Category    Category `json:"category"`
	MaxUses     int      `json:"max_uses"`

	defaults map[string]any
}

// DefaultProps returns a deep copy of the type's default props.
func (d Definition) DefaultProps() map[string]any {
	return cloneMap(d.defaults)
}

// order fixes the presentation order of the registry.
var order = []Type{TypeMood, TypeParagraph, TypeChecklist, TypeImage, TypeDivider}

var categories = []Category{CategoryText, CategoryMedia, CategoryTracking, CategoryLayout}

var registry = map[Type]Definition{
	TypeParagraph: {
		Type:        TypeParagraph,
		Name:        "Text",
		Description: "Formatted text with headings, lists and colors",
		Icon:        "text",
		Category:    CategoryText,
		MaxUses:     1,
		defaults:    map[string]any{},
	},
	TypeChecklist: {
		Type:        TypeChecklist,
		Name:        "Checklist",
		Description: "A list of items that can be checked off",
		Icon:        "check-square",
		Category:    CategoryText,
		MaxUses:     1,
		defaults:    map[string]any{},
	},
	TypeImage: {
		Type:        TypeImage,
		Name:        "Images",
		Description: "Upload one or more photos",
		Icon:        "image",
		Category:    CategoryMedia,
		MaxUses:     3,
		defaults: map[string]any{
			PropImages: []any{},
			PropLayout: "grid",
		},
	},
	TypeMood: {
		Type:        TypeMood,
		Name:        "Mood",
		Description: "How you felt, and how strongly",
		Icon:        "smile",
		Category:    CategoryTracking,
		MaxUses:     1,
		defaults: map[string]any{
			PropEmotion:   "",
			PropIntensity: DefaultIntensity,
			PropNote:      "",
		},
	},
	TypeDivider: {
		Type:        TypeDivider,
		Name:        "Divider",
		Description: "A decorative separator",
		Icon:        "minus",
		Category:    CategoryLayout,
		MaxUses:     2,
		defaults: map[string]any{
			PropStyle: DividerLine,
			PropColor: DefaultDividerColor,
		},
	},
}

// Lookup returns the definition registered for t.
func Lookup(t Type) (Definition, bool) {
	def, ok := registry[t]
	return def, ok
}

// IsRegistered reports whether t is a known block type.
func IsRegistered(t Type) bool {
	_, ok := registry[t]
	return ok
}

// Definitions returns every registered definition in registry order.
func Definitions() []Definition {
	defs := make([]Definition, 0, len(order))
	for _, t := range order {
		defs = append(defs, registry[t])
	}
	return defs
}

// Categories returns the block categories in selector order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
