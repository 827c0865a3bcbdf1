package extraction

import (
	"sort"
	"strings"
	"unicode"
)

// Normalize returns a cleaned copy of r. Applying it twice yields the same result.
func Normalize(r *StructuredRecipe) *StructuredRecipe {
	if r == nil {
		return nil
	}
	out := r.Clone()

	out.Title = cleanTitle(out.Title)
	if out.Title == "" {
		out.Title = TitlePlaceholder
	}

	out.Images = dedupeImages(out.Images)

	sort.SliceStable(out.Instructions, func(i, j int) bool {
		return out.Instructions[i].Step < out.Instructions[j].Step
	})
	if len(out.Instructions) == 0 {
		out.Instructions = []Instruction{{Step: 1, Description: MissingInstructionsText}}
	}

	if len(out.Ingredients) == 0 {
		out.Ingredients = []Ingredient{{Name: MissingIngredientsName, Amount: DefaultAmount}}
	}
	for i := range out.Ingredients {
		out.Ingredients[i].Order = i + 1
	}

	return out
}

// imageKey is the identity used to detect duplicate images: lower-cased,
// without scheme, query string or fragment.
func imageKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(key, "://"); i >= 0 {
		key = key[i+3:]
	}
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	return key
}

func dedupeImages(images []Image) []Image {
	out := make([]Image, 0, len(images))
	seen := make(map[string]struct{}, len(images))
	for _, img := range images {
		if strings.TrimSpace(img.URL) == "" {
			continue
		}
		key := imageKey(img.URL)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		img.Order = len(out) + 1
		out = append(out, img)
		if len(out) == MaxImages {
			break
		}
	}
	return out
}

// cleanTitle strips emoji and other decorative symbols and collapses whitespace.
func cleanTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if isDecorative(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isDecorative(r rune) bool {
	switch {
	case r == '°':
		return false
	case r == 0x200D, r == 0x20E3:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	case r >= 0xE0020 && r <= 0xE007F:
		return true
	}
	return unicode.Is(unicode.So, r)
}
