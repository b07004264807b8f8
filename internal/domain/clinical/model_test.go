package clinical

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestLineList_UnmarshalShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want LineList
	}{
		{"array", `["fever","cough"]`, LineList{"fever", "cough"}},
		{"single string", `"fever"`, LineList{"fever"}},
		{"object keyed by index", `{"0":"fever","1":"cough"}`, LineList{"fever", "cough"}},
		{"empty lines dropped", `["fever","","cough"]`, LineList{"fever", "cough"}},
		{"duplicates preserved", `["rest","rest"]`, LineList{"rest", "rest"}},
		{"empty array", `[]`, LineList{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got LineList
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLineList_ObjectKeysSortNumerically(t *testing.T) {
	in := `{"0":"line-00","1":"line-01","2":"line-02","10":"line-10","11":"line-11","3":"line-03"}`
	var got LineList
	if err := json.Unmarshal([]byte(in), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := LineList{"line-00", "line-01", "line-02", "line-03", "line-10", "line-11"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLineList_MixedKeysFallBackToLexicographic(t *testing.T) {
	in := `{"note":"b-line","2":"second","1":"first","addendum":"a-line"}`
	var got LineList
	if err := json.Unmarshal([]byte(in), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := LineList{"first", "second", "a-line", "b-line"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLineList_RejectsOtherShapes(t *testing.T) {
	var l LineList
	if err := json.Unmarshal([]byte(`42`), &l); err == nil {
		t.Error("number should not unmarshal into a line list")
	}
	if err := json.Unmarshal([]byte(`{"a":1}`), &l); err == nil {
		t.Error("object of numbers should not unmarshal into a line list")
	}
}

func TestComputeBMI(t *testing.T) {
	w, h := 70.0, 175.0
	bmi := ComputeBMI(&w, &h)
	if bmi == nil || *bmi != 22.9 {
		t.Errorf("BMI = %v, want 22.9", bmi)
	}

	if ComputeBMI(nil, &h) != nil || ComputeBMI(&w, nil) != nil {
		t.Error("BMI requires both weight and height")
	}

	zero := 0.0
	if ComputeBMI(&w, &zero) != nil {
		t.Error("zero height must not divide")
	}
}

func TestSnapshotOf_NilVitals(t *testing.T) {
	if snapshotOf(nil) != nil {
		t.Error("snapshot of nil vitals should be nil")
	}
}

func TestSnapshotOf_CopiesMeasurements(t *testing.T) {
	hr := 72
	v := &Vitals{HeartRate: &hr}
	snap := snapshotOf(v)
	if snap.HeartRate == nil || *snap.HeartRate != 72 {
		t.Errorf("snapshot heart rate = %v, want 72", snap.HeartRate)
	}
}
