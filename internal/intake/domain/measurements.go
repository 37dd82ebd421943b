package domain

// Measurements holds up to eight garment measurements in centimeters.
// Nil means the value has not been supplied. Values are always positive
// integers when present.
type Measurements struct {
	// Tops
	Length   *int `json:"length,omitempty"`
	Width    *int `json:"width,omitempty"`
	Shoulder *int `json:"shoulder,omitempty"`
	Sleeve   *int `json:"sleeve,omitempty"`
	// Pants
	Waist    *int `json:"waist,omitempty"`
	Inseam   *int `json:"inseam,omitempty"`
	HemWidth *int `json:"hemWidth,omitempty"`
	Rise     *int `json:"rise,omitempty"`
}

// Get returns the value stored in the given field slot.
func (m *Measurements) Get(f MeasurementField) *int {
	switch f {
	case FieldLength:
		return m.Length
	case FieldWidth:
		return m.Width
	case FieldShoulder:
		return m.Shoulder
	case FieldSleeve:
		return m.Sleeve
	case FieldWaist:
		return m.Waist
	case FieldInseam:
		return m.Inseam
	case FieldHemWidth:
		return m.HemWidth
	case FieldRise:
		return m.Rise
	}
	return nil
}

// Set stores a value into the given field slot.
func (m *Measurements) Set(f MeasurementField, v *int) {
	switch f {
	case FieldLength:
		m.Length = v
	case FieldWidth:
		m.Width = v
	case FieldShoulder:
		m.Shoulder = v
	case FieldSleeve:
		m.Sleeve = v
	case FieldWaist:
		m.Waist = v
	case FieldInseam:
		m.Inseam = v
	case FieldHemWidth:
		m.HemWidth = v
	case FieldRise:
		m.Rise = v
	}
}

// HasTops reports whether all four upper-body fields are present.
func (m *Measurements) HasTops() bool {
	return m.Length != nil && m.Width != nil && m.Shoulder != nil && m.Sleeve != nil
}

// HasPants reports whether all four lower-body fields are present.
func (m *Measurements) HasPants() bool {
	return m.Waist != nil && m.Inseam != nil && m.HemWidth != nil && m.Rise != nil
}

// CompleteFor reports whether every field the category requires is present.
// Setup requires both groups.
func (m *Measurements) CompleteFor(c Category) bool {
	switch c {
	case CategoryPants:
		return m.HasPants()
	case CategorySetup:
		return m.HasTops() && m.HasPants()
	default:
		return m.HasTops()
	}
}

// CompleteForAny reports whether the set satisfies at least one of the two
// four-field groups. The collecting flow only adopts a freshly parsed set
// when this holds, so partial noise cannot overwrite a clean prior value.
func (m *Measurements) CompleteForAny() bool {
	return m.HasTops() || m.HasPants()
}

// Empty reports whether no field at all has been supplied.
func (m *Measurements) Empty() bool {
	return m.Length == nil && m.Width == nil && m.Shoulder == nil && m.Sleeve == nil &&
		m.Waist == nil && m.Inseam == nil && m.HemWidth == nil && m.Rise == nil
}

// IntPtr is a convenience for building measurement literals.
func IntPtr(v int) *int { return &v }
