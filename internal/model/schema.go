package model

// Resource names as they appear in URLs and in the access policy table.
const (
	ResourceAccounts      = "accounts"
	ResourceClinics       = "clinics"
	ResourcePatients      = "patients"
	ResourceAppointments  = "appointments"
	ResourceDentalRecords = "dental-records"
	ResourceFiles         = "files"
	ResourceBlocklist     = "blocks"
	ResourceNotes         = "notes"
	ResourceAds           = "ads"
	ResourceUploads       = "uploads"
)

type FilterKind int

const (
	FilterUUID FilterKind = iota
	FilterEnum
	FilterBool
)

type Filter struct {
	Kind   FilterKind
	Values []string
}

// Schema lists the query keys a resource accepts for filtering, searching and ordering.
type Schema struct {
	Filters map[string]Filter
	Search  []string
	Sort    []string
}

func (s Schema) Sortable(field string) bool {
	for _, f := range s.Sort {
		if f == field {
			return true
		}
	}
	return false
}

func enum(values ...string) Filter {
	return Filter{Kind: FilterEnum, Values: values}
}

var (
	AccountSchema = Schema{
		Filters: map[string]Filter{"is_admin": {Kind: FilterBool}},
		Search:  []string{"username"},
		Sort:    []string{"username", "created_at"},
	}
	ClinicSchema = Schema{
		Search: []string{"name", "address"},
		Sort:   []string{"name", "address", "created_at"},
	}
	PatientSchema = Schema{
		Filters: map[string]Filter{
			"clinic":        {Kind: FilterUUID},
			"gender":        enum("other", "male", "female"),
			"social_status": enum("single", "married", "divorced", "widowed", "engaged"),
		},
		Search: []string{"first_name", "last_name", "username", "father_name", "mother_name"},
		Sort:   []string{"first_name", "last_name", "birth", "created_at", "clinic_name"},
	}
	AppointmentSchema = Schema{
		Filters: map[string]Filter{
			"clinic":  {Kind: FilterUUID},
			"account": {Kind: FilterUUID},
			"status":  enum("pending", "scheduled", "rejected", "canceled", "rescheduled", "completed", "missed"),
		},
		Sort: []string{"date", "status", "clinic", "account", "created_at"},
	}
	DentalRecordSchema = Schema{
		Filters: map[string]Filter{
			"clinic":  {Kind: FilterUUID},
			"patient": {Kind: FilterUUID},
		},
		Search: []string{"complaint", "diagnoses", "treatment", "patient_first_name", "patient_last_name"},
		Sort:   []string{"date", "clinic", "patient", "created_at"},
	}
	FileSchema = Schema{
		Filters: map[string]Filter{
			"appointment": {Kind: FilterUUID},
			"type":        enum("pdf", "image"),
		},
		Search: []string{"name"},
		Sort:   []string{"name", "type", "appointment"},
	}
	BlocklistSchema = Schema{
		Search: []string{"username", "ip_addr"},
		Sort:   []string{"account", "ip_addr", "created_at"},
	}
	NoteSchema = Schema{
		Search: []string{"title", "body"},
		Sort:   []string{"title", "account", "created_at"},
	}
	AdSchema = Schema{
		Sort: []string{"account", "created_at", "expires_at"},
	}
)
