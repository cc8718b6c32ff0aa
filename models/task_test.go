package models

import "testing"

func TestParseTaskStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    TaskStatus
		wantErr bool
	}{
		{"fixed", StatusFixed, false},
		{"FIXED", StatusFixed, false},
		{" too-hard ", StatusTooHard, false},
		{"1", StatusFixed, false},
		{"9", StatusDisabled, false},
		{"7", 0, true},
		{"bogus", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseTaskStatus(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTaskStatus(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTaskStatus(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTaskStatus(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseReviewStatus(t *testing.T) {
	got, err := ParseReviewStatus("disputed")
	if err != nil || got != ReviewDisputed {
		t.Errorf("ParseReviewStatus(disputed) = %v, %v", got, err)
	}
	got, err = ParseReviewStatus("2")
	if err != nil || got != ReviewRejected {
		t.Errorf("ParseReviewStatus(2) = %v, %v", got, err)
	}
	if _, err := ParseReviewStatus("42"); err == nil {
		t.Error("ParseReviewStatus(42): expected error")
	}
}

func TestStatusValidity(t *testing.T) {
	// 7 and 8 are unassigned codes inside the numeric range.
	for _, code := range []int{7, 8, -1, 10} {
		if IsValidTaskStatus(code) {
			t.Errorf("code %d must be invalid", code)
		}
	}
	for _, s := range []TaskStatus{StatusCreated, StatusFixed, StatusDisabled} {
		if !IsValidTaskStatus(int(s)) {
			t.Errorf("status %s must be valid", s)
		}
	}
	if IsValidReviewStatus(6) {
		t.Error("review code 6 must be invalid")
	}
}

func TestValidateStruct(t *testing.T) {
	task := Task{ID: 1, Name: "fix crossing"}
	if err := ValidateStruct(task); err != nil {
		t.Errorf("valid task rejected: %v", err)
	}
	if err := ValidateStruct(Task{ID: 1}); err == nil {
		t.Error("task without a name must fail validation")
	}

	bundle := TaskBundle{ID: 1, OwnerID: 7, Name: "b", TaskIDs: []int64{1}}
	if err := ValidateStruct(bundle); err != nil {
		t.Errorf("valid bundle rejected: %v", err)
	}
	if err := ValidateStruct(TaskBundle{ID: 1, OwnerID: 7, Name: "b"}); err == nil {
		t.Error("bundle without members must fail validation")
	}
}
