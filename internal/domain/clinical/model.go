package clinical

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Vitals is one immutable snapshot of a patient's measurements, owned by
// exactly one appointment. A second recording for the same appointment is
// rejected, never overwritten.
type Vitals struct {
	ID               uuid.UUID `db:"id" json:"id"`
	AppointmentID    uuid.UUID `db:"appointment_id" json:"appointment_id"`
	TemperatureC     *float64  `db:"temperature_c" json:"temperature_c,omitempty"`
	BPSystolic       *int      `db:"bp_systolic" json:"bp_systolic,omitempty"`
	BPDiastolic      *int      `db:"bp_diastolic" json:"bp_diastolic,omitempty"`
	HeartRate        *int      `db:"heart_rate" json:"heart_rate,omitempty"`
	RespiratoryRate  *int      `db:"respiratory_rate" json:"respiratory_rate,omitempty"`
	OxygenSaturation *int      `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`
	WeightKg         *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
	HeightCm         *float64  `db:"height_cm" json:"height_cm,omitempty"`
	BMI              *float64  `db:"bmi" json:"bmi,omitempty"`
	Notes            *string   `db:"notes" json:"notes,omitempty"`
	CreatedByID      uuid.UUID `db:"created_by_id" json:"created_by_id"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// ComputeBMI derives body mass index from weight and height when both are
// present.
func ComputeBMI(weightKg, heightCm *float64) *float64 {
	if weightKg == nil || heightCm == nil || *heightCm <= 0 {
		return nil
	}
	hM := *heightCm / 100
	bmi := *weightKg / (hM * hM)
	// round to one decimal, the precision charts display
	bmi = float64(int(bmi*10+0.5)) / 10
	return &bmi
}

// LineList is an ordered free-text list. Older clients send these fields as
// either a JSON array or an object keyed by index, so unmarshalling accepts
// both shapes and converts once at the boundary. Empty lines are dropped;
// order and duplicates are preserved as clinically entered.
type LineList []string

func (l *LineList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = normalizeLines(arr)
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = normalizeLines([]string{one})
		return nil
	}
	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		// index keys sort numerically so "10" follows "9", not "1"
		sort.Slice(keys, func(i, j int) bool {
			a, aok := indexKey(keys[i])
			b, bok := indexKey(keys[j])
			if aok && bok {
				return a < b
			}
			if aok != bok {
				return aok
			}
			return keys[i] < keys[j]
		})
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, obj[k])
		}
		*l = normalizeLines(lines)
		return nil
	}
	return fmt.Errorf("line list must be a string, array, or object of strings")
}

func indexKey(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func normalizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, s := range lines {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// VitalsSnapshot is the copy of measurements embedded in a SOAP note's
// objective section at write time. It never tracks the live Vitals row.
type VitalsSnapshot struct {
	TemperatureC     *float64 `json:"temperature_c,omitempty"`
	BPSystolic       *int     `json:"bp_systolic,omitempty"`
	BPDiastolic      *int     `json:"bp_diastolic,omitempty"`
	HeartRate        *int     `json:"heart_rate,omitempty"`
	RespiratoryRate  *int     `json:"respiratory_rate,omitempty"`
	OxygenSaturation *int     `json:"oxygen_saturation,omitempty"`
	WeightKg         *float64 `json:"weight_kg,omitempty"`
	HeightCm         *float64 `json:"height_cm,omitempty"`
	BMI              *float64 `json:"bmi,omitempty"`
}

func snapshotOf(v *Vitals) *VitalsSnapshot {
	if v == nil {
		return nil
	}
	return &VitalsSnapshot{
		TemperatureC:     v.TemperatureC,
		BPSystolic:       v.BPSystolic,
		BPDiastolic:      v.BPDiastolic,
		HeartRate:        v.HeartRate,
		RespiratoryRate:  v.RespiratoryRate,
		OxygenSaturation: v.OxygenSaturation,
		WeightKg:         v.WeightKg,
		HeightCm:         v.HeightCm,
		BMI:              v.BMI,
	}
}

// Subjective is what the patient reports.
type Subjective struct {
	Symptoms       LineList `json:"symptoms,omitempty"`
	PurposeOfVisit string   `json:"purpose_of_visit,omitempty"`
	FreeText       string   `json:"free_text,omitempty"`
}

// Objective is what the clinician observes.
type Objective struct {
	ExamFindings   LineList          `json:"exam_findings,omitempty"`
	VitalsSnapshot *VitalsSnapshot   `json:"vitals_snapshot,omitempty"`
	Labs           map[string]string `json:"labs,omitempty"`
	FreeText       string            `json:"free_text,omitempty"`
}

// Assessment is the clinician's conclusions.
type Assessment struct {
	Diagnoses     LineList `json:"diagnoses,omitempty"`
	Differentials LineList `json:"differentials,omitempty"`
}

// Plan is the forward course of care.
type Plan struct {
	Prescriptions    LineList `json:"prescriptions,omitempty"`
	TestRequests     LineList `json:"test_requests,omitempty"`
	Recommendations  LineList `json:"recommendations,omitempty"`
	Referral         bool     `json:"referral,omitempty"`
	ReferredProvider string   `json:"referred_provider,omitempty"`
	FreeText         string   `json:"free_text,omitempty"`
}

// SoapNote is structured clinical documentation for one appointment. An
// appointment may accumulate several notes (amendments); each is immutable
// once saved except through the explicit Update path.
type SoapNote struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	AppointmentID uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	Subjective    Subjective `db:"subjective" json:"subjective"`
	Objective     Objective  `db:"objective" json:"objective"`
	Assessment    Assessment `db:"assessment" json:"assessment"`
	Plan          Plan       `db:"plan" json:"plan"`
	CreatedByID   uuid.UUID  `db:"created_by_id" json:"created_by_id"`
	AmendedByID   *uuid.UUID `db:"amended_by_id" json:"amended_by_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
