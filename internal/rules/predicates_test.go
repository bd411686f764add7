package rules

import (
	"strings"
	"testing"

	"github.com/zulandar/waybill/internal/models"
)

func TestTrainNameAvailable(t *testing.T) {
	trains := []models.Train{
		{ID: "t1", Name: "Local 1", SessionNumber: 1},
		{ID: "t2", Name: "Local 2", SessionNumber: 1},
		{ID: "t3", Name: "Local 1", SessionNumber: 2},
	}
	tests := []struct {
		name      string
		trainName string
		session   int
		exclude   string
		want      bool
	}{
		{"taken in session", "Local 1", 1, "", false},
		{"free in other session", "Local 3", 1, "", true},
		{"same name different session", "Local 2", 2, "", true},
		{"editing self", "Local 1", 1, "t1", true},
		{"editing other keeps conflict", "Local 1", 1, "t2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrainNameAvailable(trains, tt.trainName, tt.session, tt.exclude); got != tt.want {
				t.Errorf("TrainNameAvailable(%q, %d, %q) = %v, want %v", tt.trainName, tt.session, tt.exclude, got, tt.want)
			}
		})
	}
}

func TestLocomotiveConflicts(t *testing.T) {
	trains := []models.Train{
		{ID: "t1", Status: models.TrainPlanned, LocomotiveIDs: []string{"l1"}},
		{ID: "t2", Status: models.TrainInProgress, LocomotiveIDs: []string{"l2", "l3"}},
		{ID: "t3", Status: models.TrainCompleted, LocomotiveIDs: []string{"l4"}},
		{ID: "t4", Status: models.TrainCancelled, LocomotiveIDs: []string{"l5"}},
	}
	tests := []struct {
		name    string
		locos   []string
		exclude string
		want    []string
	}{
		{"free locomotive", []string{"l9"}, "", nil},
		{"planned conflict", []string{"l1"}, "", []string{"l1"}},
		{"in-progress conflict", []string{"l2"}, "", []string{"l2"}},
		{"completed train does not hold", []string{"l4"}, "", nil},
		{"cancelled train does not hold", []string{"l5"}, "", nil},
		{"multiple conflicts", []string{"l1", "l3", "l9"}, "", []string{"l1", "l3"}},
		{"exclude self", []string{"l1"}, "t1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LocomotiveConflicts(trains, tt.locos, tt.exclude)
			if len(got) != len(tt.want) {
				t.Fatalf("LocomotiveConflicts = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("LocomotiveConflicts[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLocomotiveIdentityAvailable(t *testing.T) {
	locos := []models.Locomotive{
		{ID: "l1", ReportingMarks: "ATSF", ReportingNumber: "3751"},
		{ID: "l2", ReportingMarks: "SP", ReportingNumber: "4449"},
	}
	tests := []struct {
		name    string
		marks   string
		number  string
		exclude string
		want    bool
	}{
		{"taken", "ATSF", "3751", "", false},
		{"same marks different number", "ATSF", "1234", "", true},
		{"same number different marks", "SP", "3751", "", true},
		{"editing self", "ATSF", "3751", "l1", true},
		{"editing other keeps conflict", "ATSF", "3751", "l2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocomotiveIdentityAvailable(locos, tt.marks, tt.number, tt.exclude); got != tt.want {
				t.Errorf("LocomotiveIdentityAvailable(%q, %q, %q) = %v, want %v", tt.marks, tt.number, tt.exclude, got, tt.want)
			}
		})
	}
}

func TestDCCAddressAvailable(t *testing.T) {
	locos := []models.Locomotive{
		{ID: "l1", IsDCC: true, DCCAddress: 42},
		{ID: "l2", IsDCC: false, DCCAddress: 0},
	}
	tests := []struct {
		name    string
		address int
		exclude string
		want    bool
	}{
		{"taken", 42, "", false},
		{"free", 7, "", true},
		{"dc locomotive holds no address", 0, "", true},
		{"editing self", 42, "l1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DCCAddressAvailable(locos, tt.address, tt.exclude); got != tt.want {
				t.Errorf("DCCAddressAvailable(%d, %q) = %v, want %v", tt.address, tt.exclude, got, tt.want)
			}
		})
	}
}

func TestCarIdentityAvailable(t *testing.T) {
	cars := []models.Car{
		{ID: "c1", ReportingMarks: "ATSF", ReportingNumber: "1001"},
	}
	if CarIdentityAvailable(cars, "ATSF", "1001", "") {
		t.Error("duplicate identity reported available")
	}
	if !CarIdentityAvailable(cars, "ATSF", "1002", "") {
		t.Error("free identity reported taken")
	}
	if !CarIdentityAvailable(cars, "ATSF", "1001", "c1") {
		t.Error("editing self reported taken")
	}
}

func TestRouteNameAvailable(t *testing.T) {
	routes := []models.Route{
		{ID: "r1", Name: "Mill Turn"},
	}
	if RouteNameAvailable(routes, "Mill Turn", "") {
		t.Error("duplicate name reported available")
	}
	if !RouteNameAvailable(routes, "Harbor Job", "") {
		t.Error("free name reported taken")
	}
	if !RouteNameAvailable(routes, "Mill Turn", "r1") {
		t.Error("editing self reported taken")
	}
}

func TestIsDuplicateOrder(t *testing.T) {
	existing := []models.CarOrder{
		{IndustryID: "i1", AarTypeID: "box", SessionNumber: 1, Status: models.OrderPending},
		{IndustryID: "i1", AarTypeID: "flat", SessionNumber: 1, Status: models.OrderDelivered},
	}
	tests := []struct {
		name     string
		industry string
		aarType  string
		session  int
		want     bool
	}{
		{"pending duplicate", "i1", "box", 1, true},
		{"different session", "i1", "box", 2, false},
		{"different type", "i1", "tank", 1, false},
		{"non-pending existing does not count", "i1", "flat", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateOrder(existing, tt.industry, tt.aarType, tt.session); got != tt.want {
				t.Errorf("IsDuplicateOrder(%q, %q, %d) = %v, want %v", tt.industry, tt.aarType, tt.session, got, tt.want)
			}
		})
	}
}

func TestAssignmentErrors_Accumulates(t *testing.T) {
	order := &models.CarOrder{ID: "o1", AarTypeID: "box", Status: models.OrderAssigned}
	car := &models.Car{ID: "c1", CarType: "flat", IsInService: false}

	errs := AssignmentErrors(car, order)
	if len(errs) != 3 {
		t.Fatalf("AssignmentErrors = %v, want 3 reasons", errs)
	}
	joined := strings.Join(errs, "; ")
	for _, want := range []string{"out of service", "does not match", "must be pending"} {
		if !strings.Contains(joined, want) {
			t.Errorf("AssignmentErrors missing %q: %v", want, errs)
		}
	}
}

func TestAssignmentErrors_Valid(t *testing.T) {
	order := &models.CarOrder{ID: "o1", AarTypeID: "box", Status: models.OrderPending}
	car := &models.Car{ID: "c1", CarType: "box", IsInService: true}
	if errs := AssignmentErrors(car, order); len(errs) != 0 {
		t.Errorf("AssignmentErrors(valid pairing) = %v", errs)
	}
}

func TestAssignmentErrors_MissingCar(t *testing.T) {
	order := &models.CarOrder{ID: "o1", AarTypeID: "box", Status: models.OrderPending}
	errs := AssignmentErrors(nil, order)
	if len(errs) != 1 || !strings.Contains(errs[0], "does not exist") {
		t.Errorf("AssignmentErrors(nil car) = %v", errs)
	}
}
