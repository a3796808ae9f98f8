package user

import "testing"

func TestFullName(t *testing.T) {
	u := &User{FirstName: "Rahul", LastName: "Kumar"}
	if got := u.FullName(); got != "Rahul Kumar" {
		t.Errorf("expected %q, got %q", "Rahul Kumar", got)
	}
	u.LastName = ""
	if got := u.FullName(); got != "Rahul" {
		t.Errorf("expected %q, got %q", "Rahul", got)
	}
}

func TestValidBloodGroup(t *testing.T) {
	for _, bg := range BloodGroups {
		if !ValidBloodGroup(bg) {
			t.Errorf("expected %q to be valid", bg)
		}
	}
	if ValidBloodGroup("C+") {
		t.Error("expected C+ to be invalid")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleUser, RoleDoctor, RoleAdmin} {
		if !ValidRole(r) {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if ValidRole("superuser") {
		t.Error("expected superuser to be invalid")
	}
}
