package models

import "testing"

func TestStreakStateValidate(t *testing.T) {
	cases := []struct {
		name    string
		state   StreakState
		wantErr bool
	}{
		{"never logged", StreakState{0, 0}, false},
		{"active streak", StreakState{3, 20100}, false},
		{"count without day", StreakState{1, 0}, true},
		{"day without count", StreakState{0, 20100}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.state.Validate()
			if tc.wantErr && err == nil {
				t.Errorf("Expected %+v to be rejected", tc.state)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected %+v to be valid, got %v", tc.state, err)
			}
		})
	}
}
