package postgres

import "github.com/jwalitptl/dental-api/internal/model"

var accountTable = tableDef{
	resource: model.ResourceAccounts,
	name:     "accounts",
	alias:    "a",
	columns:  []string{"id", "username", "password_hash", "is_admin", "created_at"},
	keys: map[string]string{
		"username":   "a.username",
		"is_admin":   "a.is_admin",
		"created_at": "a.created_at",
	},
	search: model.AccountSchema.Search,
	owner:  "a.id",
	constraints: map[string]string{
		"accounts_username_key": "username",
	},
}

var clinicTable = tableDef{
	resource: model.ResourceClinics,
	name:     "clinics",
	alias:    "c",
	columns:  []string{"id", "name", "address", "image", "created_at"},
	keys: map[string]string{
		"name":       "c.name",
		"address":    "c.address",
		"created_at": "c.created_at",
	},
	search: model.ClinicSchema.Search,
	constraints: map[string]string{
		"clinics_name_key":              "name",
		"patients_clinic_id_fkey":       "patients",
		"dental_records_clinic_id_fkey": "dental_records",
	},
}

var patientTable = tableDef{
	resource: model.ResourcePatients,
	name:     "patients",
	alias:    "p",
	columns: []string{
		"id", "account_id", "first_name", "last_name", "father_name", "mother_name",
		"phonenumber", "address", "gender", "social_status", "birth", "general_history",
		"clinic_id", "created_at",
	},
	joins: " LEFT JOIN accounts a ON a.id = p.account_id LEFT JOIN clinics c ON c.id = p.clinic_id",
	keys: map[string]string{
		"clinic":        "p.clinic_id",
		"gender":        "p.gender",
		"social_status": "p.social_status",
		"first_name":    "p.first_name",
		"last_name":     "p.last_name",
		"father_name":   "p.father_name",
		"mother_name":   "p.mother_name",
		"username":      "a.username",
		"birth":         "p.birth",
		"created_at":    "p.created_at",
		"clinic_name":   "c.name",
	},
	search: model.PatientSchema.Search,
	owner:  "p.account_id",
	constraints: map[string]string{
		"patients_phonenumber_key": "phonenumber",
		"patients_account_id_key":  "account",
		"patients_account_id_fkey": "account",
		"patients_clinic_id_fkey":  "clinic",
	},
}

var appointmentTable = tableDef{
	resource: model.ResourceAppointments,
	name:     "appointments",
	alias:    "ap",
	columns:  []string{"id", "account_id", "patient_id", "clinic_id", "date", "status", "created_at", "updated_at"},
	keys: map[string]string{
		"clinic":     "ap.clinic_id",
		"account":    "ap.account_id",
		"status":     "ap.status",
		"date":       "ap.date",
		"created_at": "ap.created_at",
	},
	owner: "ap.account_id",
	constraints: map[string]string{
		"appointments_account_id_fkey": "account",
		"appointments_patient_id_fkey": "patient",
		"appointments_clinic_id_fkey":  "clinic",
	},
}

var dentalRecordTable = tableDef{
	resource: model.ResourceDentalRecords,
	name:     "dental_records",
	alias:    "r",
	columns:  []string{"id", "clinic_id", "patient_id", "date", "complaint", "diagnoses", "treatment", "created_at"},
	joins:    " LEFT JOIN patients pt ON pt.id = r.patient_id",
	keys: map[string]string{
		"clinic":             "r.clinic_id",
		"patient":            "r.patient_id",
		"complaint":          "r.complaint",
		"diagnoses":          "r.diagnoses",
		"treatment":          "r.treatment",
		"patient_first_name": "pt.first_name",
		"patient_last_name":  "pt.last_name",
		"date":               "r.date",
		"created_at":         "r.created_at",
	},
	search: model.DentalRecordSchema.Search,
	owner:  "pt.account_id",
	constraints: map[string]string{
		"dental_records_clinic_id_fkey":  "clinic",
		"dental_records_patient_id_fkey": "patient",
	},
}

var fileTable = tableDef{
	resource: model.ResourceFiles,
	name:     "files",
	alias:    "f",
	columns:  []string{"id", "appointment_id", "name", "type", "file", "created_at"},
	joins:    " LEFT JOIN appointments ap ON ap.id = f.appointment_id",
	keys: map[string]string{
		"appointment": "f.appointment_id",
		"type":        "f.type",
		"name":        "f.name",
		"file":        "f.file",
	},
	search: model.FileSchema.Search,
	owner:  "ap.account_id",
	constraints: map[string]string{
		"files_appointment_id_fkey": "appointment",
	},
}

var blocklistTable = tableDef{
	resource: model.ResourceBlocklist,
	name:     "blocklist",
	alias:    "b",
	columns:  []string{"id", "account_id", "ip_addr", "created_at"},
	joins:    " LEFT JOIN accounts a ON a.id = b.account_id",
	keys: map[string]string{
		"account":    "b.account_id",
		"username":   "a.username",
		"ip_addr":    "b.ip_addr",
		"created_at": "b.created_at",
	},
	search: model.BlocklistSchema.Search,
	constraints: map[string]string{
		"blocklist_account_id_key":  "account",
		"blocklist_account_id_fkey": "account",
		"blocklist_target_check":    "account",
	},
}

var noteTable = tableDef{
	resource: model.ResourceNotes,
	name:     "notes",
	alias:    "n",
	columns:  []string{"id", "account_id", "title", "body", "created_at"},
	keys: map[string]string{
		"title":      "n.title",
		"body":       "n.body",
		"account":    "n.account_id",
		"created_at": "n.created_at",
	},
	search: model.NoteSchema.Search,
	owner:  "n.account_id",
	constraints: map[string]string{
		"notes_account_id_key":  "account",
		"notes_account_id_fkey": "account",
	},
}

var adTable = tableDef{
	resource: model.ResourceAds,
	name:     "ads",
	alias:    "ad",
	columns:  []string{"id", "account_id", "image", "expires_at", "created_at"},
	keys: map[string]string{
		"account":    "ad.account_id",
		"created_at": "ad.created_at",
		"expires_at": "ad.expires_at",
	},
	owner: "ad.account_id",
	constraints: map[string]string{
		"ads_account_id_key":  "account",
		"ads_account_id_fkey": "account",
	},
}
