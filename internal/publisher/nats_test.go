package publisher

import (
	"testing"

	"olexparser/internal/core/model"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"20241213-ab12cd34", "olex.cases.analyzed.20241213-ab12cd34"},
		{"a.b c", "olex.cases.analyzed.a_b_c"},
		{"", "olex.cases.analyzed._"},
		{"x>*", "olex.cases.analyzed.x__"},
	}
	for _, tt := range tests {
		if got := Subject("olex.cases", tt.id); got != tt.want {
			t.Errorf("Subject(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestNewCaseMessage(t *testing.T) {
	r := &model.CaseReport{
		ID:   "r1",
		Root: "/evidence",
		TripFiles: []model.TripFileReport{
			{Trips: []model.TripReport{{Number: 1}, {Number: 2}}},
		},
		RouteFiles: []model.RouteFileReport{
			{Routes: []model.RouteReport{{Name: "a"}}},
		},
		Counts: map[string]int{"FileCount": 1},
	}
	msg := NewCaseMessage(r)
	if msg.ID != "r1" || msg.Trips != 2 || msg.Routes != 1 || msg.Diagnostics["FileCount"] != 1 {
		t.Errorf("NewCaseMessage() = %+v", msg)
	}
}
