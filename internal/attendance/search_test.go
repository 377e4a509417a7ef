package attendance

import "testing"

var roster = []UserRecord{
	{UID: 1, UserID: "E001", Name: "Ana Petrova", Privilege: PrivilegeAdmin},
	{UID: 2, UserID: "E002", Name: "Bo Lindqvist", Privilege: PrivilegeDefault},
	{UID: 3, UserID: "E003", Name: "ana szabo", Privilege: PrivilegeDefault},
}

func TestFilterByUserID(t *testing.T) {
	if got := FilterByUserID(roster, "E002"); len(got) != 1 || got[0].UID != 2 {
		t.Errorf("FilterByUserID(E002) = %+v, want the single Bo entry", got)
	}
	if got := FilterByUserID(roster, "E999"); got != nil {
		t.Errorf("FilterByUserID(E999) = %+v, want nil", got)
	}
}

func TestFilterByName(t *testing.T) {
	got := FilterByName(roster, "ANA")
	if len(got) != 2 {
		t.Fatalf("FilterByName(ANA) matched %d, want 2 (case-insensitive substring)", len(got))
	}
}

func TestAdmins(t *testing.T) {
	got := Admins(roster)
	if len(got) != 1 || got[0].UserID != "E001" {
		t.Errorf("Admins() = %+v, want only E001", got)
	}
}
