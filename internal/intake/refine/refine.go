// Package refine applies user corrections to an AI-estimated feature
// summary during the confirmation exchange.
package refine

import "resale_support_backend/internal/intake/domain"

// designNoneSynonyms clear the design attribute instead of storing the
// literal text.
var designNoneSynonyms = map[string]bool{
	"なし":   true,
	"特になし": true,
	"無し":   true,
	"null": true,
	"None": true,
}

// Apply writes the edits into the feature summary in place.
//
// Category edits only take effect when the value names one of the three
// known category labels; anything else is silently ignored rather than
// erroring or clearing. Design edits treat the "none" synonyms as clearing
// the field. All other fields store the value verbatim: they are free text
// that downstream consumers interpret loosely.
//
// Apply is idempotent: running the same edit map twice leaves the summary
// exactly as after the first run.
func Apply(features *domain.Features, edits domain.Edits) {
	if features == nil {
		return
	}

	for field, value := range edits {
		switch field {
		case domain.EditBrand:
			features.Brand = value
		case domain.EditCategory:
			if c, ok := domain.ParseCategoryStrict(value); ok {
				features.Category = c
			}
		case domain.EditItemType:
			features.ItemType = value
		case domain.EditGender:
			features.Gender = value
		case domain.EditSize:
			features.Size = value
		case domain.EditColor:
			features.Color = value
		case domain.EditDesign:
			if designNoneSynonyms[value] {
				features.Design = ""
			} else {
				features.Design = value
			}
		case domain.EditEra:
			features.Era = value
		}
	}
}
