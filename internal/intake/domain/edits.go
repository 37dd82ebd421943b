package domain

// EditField enumerates the feature attributes the user can correct during
// confirmation. The numbering matches the confirmation summary, so the
// closed set replaces any dynamic field lookup: an index outside 1..8 simply
// has no EditField.
type EditField int

const (
	EditBrand EditField = iota + 1
	EditCategory
	EditItemType
	EditGender
	EditSize
	EditColor
	EditDesign
	EditEra
)

// EditFieldByIndex maps a confirmation-summary index to its field.
func EditFieldByIndex(n int) (EditField, bool) {
	if n < int(EditBrand) || n > int(EditEra) {
		return 0, false
	}
	return EditField(n), true
}

// Edits maps edited fields to their replacement values. Later instructions
// for the same field overwrite earlier ones.
type Edits map[EditField]string
