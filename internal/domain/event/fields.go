package event

// FieldSet marks which fields a write touched.
type FieldSet uint32

const (
	FieldTitle FieldSet = 1 << iota
	FieldDescription
	FieldOverview
	FieldImage
	FieldVenue
	FieldLocation
	FieldDate
	FieldTime
	FieldMode
	FieldAudience
	FieldAgenda
	FieldOrganizer
	FieldTags
)

// AllFields is the change set of a create.
const AllFields = FieldTitle | FieldDescription | FieldOverview | FieldImage |
	FieldVenue | FieldLocation | FieldDate | FieldTime | FieldMode |
	FieldAudience | FieldAgenda | FieldOrganizer | FieldTags

func (s FieldSet) Has(f FieldSet) bool { return s&f != 0 }

func (s FieldSet) Empty() bool { return s == 0 }
