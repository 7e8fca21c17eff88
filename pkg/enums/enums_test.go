package enums

import "testing"

func TestParsePlaceCategory(t *testing.T) {
	got, err := ParsePlaceCategory(" Cafe ")
	if err != nil || got != PlaceCategoryCafe {
		t.Fatalf("expected cafe, got %q err=%v", got, err)
	}
	if _, err := ParsePlaceCategory(PlaceCategoryAll); err == nil {
		t.Fatal("all is a listing sentinel, not a category")
	}
	if len(PlaceCategories()) != 12 {
		t.Fatalf("unexpected category count %d", len(PlaceCategories()))
	}
}

func TestParsePlaceStatus(t *testing.T) {
	if _, err := ParsePlaceStatus("deleted"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
	if s, _ := ParsePlaceStatus("PUBLISHED"); s != PlaceStatusPublished {
		t.Fatalf("expected published, got %q", s)
	}
}

func TestParseUserRole(t *testing.T) {
	if r, err := ParseUserRole("admin"); err != nil || r != UserRoleAdmin {
		t.Fatalf("expected admin role, got %q err=%v", r, err)
	}
	if UserRole("owner").IsValid() {
		t.Fatal("owner is not a platform role")
	}
}

func TestApprovalStateOf(t *testing.T) {
	cases := []struct {
		role     UserRole
		approved bool
		want     ApprovalState
	}{
		{UserRoleUser, false, ApprovalStatePending},
		{UserRoleUser, true, ApprovalStateApproved},
		{UserRoleAdmin, false, ApprovalStateAdmin},
		{UserRoleAdmin, true, ApprovalStateAdmin},
	}
	for _, tc := range cases {
		if got := ApprovalStateOf(tc.role, tc.approved); got != tc.want {
			t.Fatalf("ApprovalStateOf(%s,%v) = %s want %s", tc.role, tc.approved, got, tc.want)
		}
	}
}
