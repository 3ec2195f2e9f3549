package store

import (
	"testing"
	"time"

	"github.com/runeberget/krets/internal/database"
)

func setupAttendanceTestDB(t *testing.T) (*AttendanceStore, *UserStore, *MeetingStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAttendanceStore(db), NewUserStore(db), NewMeetingStore(db)
}

func TestAttendanceStatusesSeeded(t *testing.T) {
	as, _, _ := setupAttendanceTestDB(t)

	statuses, err := as.ListStatuses()
	if err != nil {
		t.Fatalf("list statuses: %v", err)
	}
	if len(statuses) != 3 {
		t.Fatalf("len = %d, want 3", len(statuses))
	}

	names := map[string]bool{}
	for _, st := range statuses {
		names[st.Name] = true
	}
	for _, want := range []string{"Attending", "Attended", "Absent"} {
		if !names[want] {
			t.Errorf("missing seeded status %q", want)
		}
	}
}

func TestAttendanceSet(t *testing.T) {
	as, us, ms := setupAttendanceTestDB(t)

	u, _ := us.Create("Alice", "alice@example.com")
	start := time.Now().Add(time.Hour)
	m, _ := ms.Create("Board meeting", "", start, start.Add(time.Hour))

	a, err := as.Set(u.ID, m.ID, "status-attending")
	if err != nil {
		t.Fatalf("set attendance: %v", err)
	}
	if a.StatusID != "status-attending" {
		t.Errorf("status_id = %q, want %q", a.StatusID, "status-attending")
	}
}

func TestAttendanceSetUpserts(t *testing.T) {
	as, us, ms := setupAttendanceTestDB(t)

	u, _ := us.Create("Alice", "alice@example.com")
	start := time.Now().Add(time.Hour)
	m, _ := ms.Create("Board meeting", "", start, start.Add(time.Hour))

	first, _ := as.Set(u.ID, m.ID, "status-attending")
	second, err := as.Set(u.ID, m.ID, "status-absent")
	if err != nil {
		t.Fatalf("second set: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert created a new row: %q != %q", second.ID, first.ID)
	}
	if second.StatusID != "status-absent" {
		t.Errorf("status_id = %q, want %q", second.StatusID, "status-absent")
	}

	all, _ := as.ListAll()
	if len(all) != 1 {
		t.Errorf("record count = %d, want 1", len(all))
	}
}

func TestAttendanceListRecentByUser(t *testing.T) {
	as, us, ms := setupAttendanceTestDB(t)

	u, _ := us.Create("Alice", "alice@example.com")
	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	old, _ := ms.Create("Old meeting", "", base.Add(-240*time.Hour), base.Add(-238*time.Hour))
	recent, _ := ms.Create("Recent meeting", "", base, base.Add(2*time.Hour))

	as.Set(u.ID, old.ID, "status-attended")
	as.Set(u.ID, recent.ID, "status-attending")

	records, err := as.ListRecentByUser(u.ID, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].Meeting.Title != "Recent meeting" {
		t.Errorf("first record = %q, want most recent meeting", records[0].Meeting.Title)
	}
	if records[0].Status.Name != "Attending" {
		t.Errorf("status = %q, want %q", records[0].Status.Name, "Attending")
	}
}

func TestAttendanceGetStatusByID(t *testing.T) {
	as, _, _ := setupAttendanceTestDB(t)

	st, err := as.GetStatusByID("status-absent")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if st == nil || st.Name != "Absent" {
		t.Errorf("status = %v, want Absent", st)
	}

	missing, err := as.GetStatusByID("status-bogus")
	if err != nil {
		t.Fatalf("get missing status: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown status id")
	}
}
