package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/drumil32/thumbnail-maker-backend/internal/config"
	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
)

// Description length bounds (after trimming)
const (
	MinDescriptionLen = 10
	MaxDescriptionLen = 500
	MinFollowUpLen    = 5
)

// Validator runs pure, side-effect-free checks against the field set.
// Each method returns an ordered list of human-readable violations; an
// empty list means the check passed.
type Validator struct {
	cfg config.UploadConfig
}

func NewFieldValidator(cfg config.UploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Images checks every attached file against the size ceiling and the
// image content-type requirement, and that every icon carrying a file has
// a non-blank description.
func (v *Validator) Images(fields *entity.FieldSet) []string {
	var violations []string

	check := func(label string, item *entity.ImageItem) {
		if item == nil || !item.Present() {
			return
		}
		if int64(len(item.Data)) > v.cfg.MaxFileSize {
			violations = append(violations, fmt.Sprintf(
				"%s: file too large (%d bytes, max %d)", label, len(item.Data), v.cfg.MaxFileSize))
		}
		if !strings.HasPrefix(item.ContentType, "image/") {
			violations = append(violations, fmt.Sprintf("%s: not a valid image", label))
		}
	}

	check("background image", fields.BgImg)
	check("major image", fields.MajorImg)

	if len(fields.ImgIcons) > v.cfg.MaxIconCount {
		violations = append(violations, fmt.Sprintf(
			"icons: at most %d icon images allowed, got %d", v.cfg.MaxIconCount, len(fields.ImgIcons)))
	}

	for i := range fields.ImgIcons {
		icon := &fields.ImgIcons[i]
		if !icon.Present() {
			continue
		}
		check(fmt.Sprintf("icon %d", i+1), icon)
		if strings.TrimSpace(icon.Description) == "" {
			violations = append(violations, fmt.Sprintf("icon %d: description is required", i+1))
		}
	}

	return violations
}

// Style checks that both theme color and category are set and well-formed
func (v *Validator) Style(fields *entity.FieldSet) []string {
	var violations []string

	switch {
	case fields.ThemeColor == "":
		violations = append(violations, "theme color is required")
	case !validThemeColor(fields.ThemeColor):
		violations = append(violations, fmt.Sprintf("theme color %q is not a color token or gradient", fields.ThemeColor))
	}

	switch {
	case fields.Category == "":
		violations = append(violations, "category is required")
	case !entity.ValidCategory(fields.Category):
		violations = append(violations, fmt.Sprintf("unknown category %q", fields.Category))
	}

	return violations
}

// Description checks the final description length bounds. Bounds count
// characters, not bytes. The violation message names the bound that was
// broken.
func (v *Validator) Description(text string) []string {
	length := utf8.RuneCountInString(strings.TrimSpace(text))

	if length < MinDescriptionLen {
		return []string{fmt.Sprintf("description is too short: at least %d characters required", MinDescriptionLen)}
	}
	if length > MaxDescriptionLen {
		return []string{fmt.Sprintf("description is too long: at most %d characters allowed", MaxDescriptionLen)}
	}

	return nil
}

// FollowUp checks a follow-up instruction before it goes to the service
func (v *Validator) FollowUp(text string) []string {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinFollowUpLen {
		return []string{fmt.Sprintf("follow-up instruction is too short: at least %d characters required", MinFollowUpLen)}
	}

	return nil
}

// validThemeColor accepts a flat "#RRGGBB"-style token or a CSS gradient
// descriptor, the two shapes the color picker produces
func validThemeColor(color string) bool {
	if strings.HasPrefix(color, "linear-gradient(") && strings.HasSuffix(color, ")") {
		return true
	}
	if !strings.HasPrefix(color, "#") || (len(color) != 4 && len(color) != 7) {
		return false
	}
	for _, r := range strings.ToLower(color[1:]) {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
