package block

import (
	"fmt"
	"strings"
)

// Result is the outcome of validating one block.
type Result struct {
	Valid  bool
	Errors []error
}

// Validate checks a block against the generic rules and then the rules of
// its type. An empty or unregistered type stops validation after the generic
// checks. Every violation is reported; none of them stops the others.
func Validate(b Block) Result {
	var errs []error

	if strings.TrimSpace(b.ID) == "" {
		errs = append(errs, newValidationError("id", "is required"))
	}
	if b.Type == "" {
		errs = append(errs, newValidationError("type", "is required"))
		return result(errs)
	}
	if !IsRegistered(b.Type) {
		errs = append(errs, &UnknownTypeError{Type: b.Type})
		return result(errs)
	}

	switch b.Type {
	case TypeParagraph:
		errs = append(errs, validateParagraph(b)...)
	case TypeImage:
		errs = append(errs, validateImage(b)...)
	case TypeMood:
		errs = append(errs, validateMood(b)...)
	}

	return result(errs)
}

func result(errs []error) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func validateParagraph(b Block) []error {
	if len(b.Content) == 0 {
		return []error{newValidationError("content", "must not be empty")}
	}
	return nil
}

func validateImage(b Block) []error {
	n, ok := sequenceLen(b.Props[PropImages])
	if !ok || n == 0 {
		return []error{newValidationError("props.images", "must contain at least one image")}
	}
	return nil
}

func validateMood(b Block) []error {
	var errs []error

	if strings.TrimSpace(b.StringProp(PropEmotion)) == "" {
		errs = append(errs, newValidationError("props.emotion", "is required"))
	}

	intensity, ok := toInt(b.Props[PropIntensity])
	if !ok || intensity < MinIntensity || intensity > MaxIntensity {
		errs = append(errs, newValidationError(
			"props.intensity",
			fmt.Sprintf("must be an integer between %d and %d", MinIntensity, MaxIntensity),
		))
	}

	return errs
}
