package report

import (
	"records-backend/internal/blocks"
)

// Record is one fully-extracted page keyed by output field name. Records are
// rebuilt from the raw block graph on every read and never persisted.
type Record map[string]string

// Reference anchors computed once per page. Fields that repeat across the
// officer and subject sections are told apart by their distance to the badge
// number, which only the officer section has. The two "Other (Specify" labels
// are told apart by their nearest unique neighbor instead.
type anchorRef int

const (
	anchorNone anchorRef = iota
	anchorBadge
	anchorFired
	anchorCanine
)

type fieldSpec struct {
	out      string
	label    string
	anchor   anchorRef
	position int
}

// The use-of-force report schema. Label spellings follow what the OCR
// actually reads off the scanned NJ form, misreadings included
// ("threatlattack"). Adding a new document type means adding a new table
// like this one, not new matching logic.
var reportFields = []fieldSpec{
	{out: "date", label: "Date"},
	{out: "time", label: "Time"},
	{out: "day_of_week", label: "Day of Week"},
	{out: "incident_number", label: "INCIDENT NUMBER"},
	{out: "location", label: "Location"},

	{out: "officer_badge_number", label: "Badge#"},
	{out: "officer_name", label: "Name, (Last, First, Middle)", anchor: anchorBadge},
	{out: "officer_race", label: "Race", anchor: anchorBadge},
	{out: "officer_sex", label: "Sex", anchor: anchorBadge},
	{out: "officer_age", label: "Age", anchor: anchorBadge},
	{out: "officer_rank", label: "Rank", anchor: anchorBadge},
	{out: "officer_on_duty", label: "On Duty", anchor: anchorBadge},
	{out: "officer_uniform", label: "Uniform", anchor: anchorBadge},
	{out: "officer_assignment", label: "Duty Assignment", anchor: anchorBadge},
	{out: "officer_years_of_service", label: "Years of Service", anchor: anchorBadge},
	{out: "officer_injured", label: "Injured", anchor: anchorBadge},
	{out: "officer_killed", label: "Killed", anchor: anchorBadge},

	{out: "subject_race", label: "Race", anchor: anchorBadge, position: 1},
	{out: "subject_sex", label: "Sex", anchor: anchorBadge, position: 1},
	{out: "subject_age", label: "Age", anchor: anchorBadge, position: 1},
	{out: "subject_under_influence", label: "Under the Influence", anchor: anchorBadge},
	{out: "subject_unusual_conduct", label: "Other unusual Condition (Specify)", anchor: anchorBadge},
	{out: "subject_injured", label: "Injured", anchor: anchorBadge, position: 1},
	{out: "subject_killed", label: "Killed", anchor: anchorBadge, position: 1},
	{out: "subject_arrested", label: "Arrested", anchor: anchorBadge, position: 1},
	{out: "subject_charges", label: "Charges", anchor: anchorBadge, position: 1},
	{out: "subject_actions_resisted_officer", label: "Resisted police officer control", anchor: anchorBadge},
	{out: "subject_actions_threat_attack_physical", label: "Physical threatlattack on officer or another", anchor: anchorBadge},
	{out: "subject_actions_threat_attack_blunt", label: "Threatened/attacked officer or another with blunt object", anchor: anchorBadge},
	{out: "subject_actions_threat_attack_knife", label: "Threatened/attacked officer or another with knife/cutting object", anchor: anchorBadge},
	{out: "subject_actions_threat_attack_vehicle", label: "Threatened/attacked officer or another with motor vehicle", anchor: anchorBadge},
	{out: "subject_actions_threat_attack_firearm", label: "Threatened officer or another with firearm", anchor: anchorBadge},
	{out: "subject_actions_fired", label: "Fired at officer or another", anchor: anchorBadge},
	{out: "subject_actions_other", label: "Other (Specify", anchor: anchorFired},

	{out: "incident_type_crime_in_progress", label: "Crime in Progress"},
	{out: "incident_type_domestic", label: "Domestic"},
	{out: "incident_type_other_dispute", label: "Other Dispute"},
	{out: "incident_type_suspicious_person", label: "Suspicious Person"},
	{out: "incident_type_traffic_stop", label: "Traffic Stop"},
	{out: "incident_type_other_type_of_call", label: "Other Type of Call"},

	{out: "officer_force_used_compliance_hold", label: "Compliance Hold", anchor: anchorBadge},
	{out: "officer_force_used_hands_fists", label: "Hands/Fists", anchor: anchorBadge},
	{out: "officer_force_used_kicks_feet", label: "Kicks/Feet", anchor: anchorBadge},
	{out: "officer_force_used_chemical_agent", label: "Chemical/Natural Agent", anchor: anchorBadge},
	{out: "officer_force_used_blunt_strike", label: "Strike/Use Baton or Other Object", anchor: anchorBadge},
	{out: "officer_force_used_canine", label: "Canine", anchor: anchorBadge},
	{out: "officer_force_used_firearm_intentional", label: "Intentional", anchor: anchorBadge},
	{out: "officer_force_used_firearm_accidental", label: "Accidental", anchor: anchorBadge},
	// The scan layout defeats the shot-count label; kept empty rather than
	// reporting a wrong number.
	{out: "officer_force_used_firearm_shots_fired", label: ""},
	{out: "officer_force_used_firearm_shots_hit", label: "Number of Hits:", anchor: anchorBadge},
	{out: "officer_force_used_other", label: "Other (Specify", anchor: anchorCanine},
}

// Fields returns the output field names in their fixed schema order.
func Fields() []string {
	out := make([]string, len(reportFields))
	for i, fs := range reportFields {
		out[i] = fs.out
	}
	return out
}

// BuildRecord extracts the use-of-force report schema from one page's block
// graph. A page with no recognizable labels yields a record with every field
// empty; a missing field is never an error.
func BuildRecord(list []blocks.Block) Record {
	fi := NewFieldIndex(list)

	badge, _ := fi.Anchor("badge")
	fired, _ := fi.Anchor("Fired at officer or another")
	canine, _ := fi.Anchor("Canine")

	rec := make(Record, len(reportFields))
	for _, fs := range reportFields {
		if fs.label == "" {
			rec[fs.out] = ""
			continue
		}
		switch fs.anchor {
		case anchorBadge:
			rec[fs.out] = fi.ValueNear(fs.label, badge, fs.position)
		case anchorFired:
			rec[fs.out] = fi.ValueNear(fs.label, fired, fs.position)
		case anchorCanine:
			rec[fs.out] = fi.ValueNear(fs.label, canine, fs.position)
		default:
			rec[fs.out] = fi.Value(fs.label)
		}
	}
	return rec
}
