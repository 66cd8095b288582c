package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eswarnandha-a/sece-space/internal/model"
)

func newTestClassroomService() (*ClassroomService, *fakeClassroomStore, *fakeFileStore, *fakeEventStore) {
	classrooms := newFakeClassroomStore()
	files := &fakeFileStore{}
	events := &fakeEventStore{}
	return NewClassroomService(classrooms, files, events), classrooms, files, events
}

func TestNewJoinCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := NewJoinCode()
		if len(code) != 6 {
			t.Fatalf("code %q has length %d, want 6", code, len(code))
		}
		for _, r := range code {
			if !strings.ContainsRune(joinCodeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the uppercase base-36 alphabet", code, r)
			}
		}
		seen[code] = true
	}
	// 1000 draws from a 36^6 space colliding down to a handful would
	// mean the generator is broken.
	if len(seen) < 990 {
		t.Errorf("only %d distinct codes in 1000 draws", len(seen))
	}
}

func TestCreateClassroom(t *testing.T) {
	svc, _, _, _ := newTestClassroomService()
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}

	c, err := svc.Create(context.Background(), faculty, CreateClassroomInput{
		Name: "CS-DS", Branch: "CSE", Subject: "Data Structures",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" || len(c.Code) != 6 {
		t.Errorf("classroom missing id or code: %+v", c)
	}
	if c.FacultyID != "f1" {
		t.Errorf("faculty id = %q, want f1", c.FacultyID)
	}
	if c.Archived {
		t.Error("new classroom must not be archived")
	}
}

func TestCreateClassroomStudentForbidden(t *testing.T) {
	svc, _, _, _ := newTestClassroomService()
	student := Principal{ID: "s1", Role: model.RoleStudent}

	if _, err := svc.Create(context.Background(), student, CreateClassroomInput{Name: "X"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestJoinClassroom(t *testing.T) {
	svc, _, _, _ := newTestClassroomService()
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}
	student := Principal{ID: "s1", Role: model.RoleStudent}

	c, err := svc.Create(context.Background(), faculty, CreateClassroomInput{Name: "CS-DS"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	joined, err := svc.Join(context.Background(), student, c.Code)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(joined.Students) != 1 || joined.Students[0].ID != "s1" {
		t.Errorf("students = %+v, want [s1]", joined.Students)
	}

	// Second join of the same student fails and leaves membership alone.
	if _, err := svc.Join(context.Background(), student, c.Code); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("second join err = %v, want ErrAlreadyMember", err)
	}
	again, err := svc.GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(again.Students) != 1 {
		t.Errorf("membership changed on rejected join: %+v", again.Students)
	}

	// Codes typed in lowercase resolve to the same classroom.
	other := Principal{ID: "s2", Role: model.RoleStudent}
	joined, err = svc.Join(context.Background(), other, strings.ToLower(c.Code))
	if err != nil {
		t.Fatalf("lowercase join: %v", err)
	}
	if len(joined.Students) != 2 {
		t.Errorf("students = %+v, want 2 members", joined.Students)
	}
}

func TestJoinClassroomErrors(t *testing.T) {
	svc, _, _, _ := newTestClassroomService()
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}
	student := Principal{ID: "s1", Role: model.RoleStudent}

	t.Run("UnknownCode", func(t *testing.T) {
		if _, err := svc.Join(context.Background(), student, "NOPE00"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("FacultyCannotJoin", func(t *testing.T) {
		c, _ := svc.Create(context.Background(), faculty, CreateClassroomInput{Name: "X"})
		if _, err := svc.Join(context.Background(), faculty, c.Code); !errors.Is(err, ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("ArchivedRejectsJoin", func(t *testing.T) {
		c, _ := svc.Create(context.Background(), faculty, CreateClassroomInput{Name: "Y"})
		if err := svc.Archive(context.Background(), faculty, c.ID); err != nil {
			t.Fatalf("archive: %v", err)
		}
		if _, err := svc.Join(context.Background(), student, c.Code); !errors.Is(err, ErrArchived) {
			t.Fatalf("err = %v, want ErrArchived", err)
		}
	})
}

func TestAddFilesReturnsFullList(t *testing.T) {
	svc, _, _, _ := newTestClassroomService()
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}
	c, _ := svc.Create(context.Background(), faculty, CreateClassroomInput{Name: "CS-DS"})

	first, err := svc.AddFiles(context.Background(), faculty, c.ID, []FileEntryInput{
		{Name: "unit1.pdf", URL: "https://example.com/unit1.pdf", Kind: model.FileKindDocument},
	})
	if err != nil {
		t.Fatalf("add files: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("list after first append = %d entries, want 1", len(first))
	}

	second, err := svc.AddFiles(context.Background(), faculty, c.ID, []FileEntryInput{
		{Name: "unit2.pdf", URL: "https://example.com/unit2.pdf", Kind: model.FileKindDocument},
	})
	if err != nil {
		t.Fatalf("add files: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("list after second append = %d entries, want 2", len(second))
	}
}

func TestAddFilesOwnershipEnforced(t *testing.T) {
	svc, _, _, _ := newTestClassroomService()
	owner := Principal{ID: "f1", Role: model.RoleFaculty}
	other := Principal{ID: "f2", Role: model.RoleFaculty}
	c, _ := svc.Create(context.Background(), owner, CreateClassroomInput{Name: "CS-DS"})

	_, err := svc.AddFiles(context.Background(), other, c.ID, []FileEntryInput{
		{Name: "x.pdf", URL: "https://example.com/x.pdf", Kind: model.FileKindDocument},
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestRemoveFileMissingIsNoop(t *testing.T) {
	svc, _, files, _ := newTestClassroomService()
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}
	c, _ := svc.Create(context.Background(), faculty, CreateClassroomInput{Name: "CS-DS"})
	svc.AddFiles(context.Background(), faculty, c.ID, []FileEntryInput{
		{Name: "unit1.pdf", URL: "https://example.com/unit1.pdf", Kind: model.FileKindDocument},
	})

	if err := svc.RemoveFile(context.Background(), faculty, c.ID, "does-not-exist"); err != nil {
		t.Fatalf("removing a missing file must be a no-op, got %v", err)
	}
	if len(files.files) != 1 {
		t.Errorf("file list changed: %d entries, want 1", len(files.files))
	}
}

func TestAddEventReturnsInsertedEntry(t *testing.T) {
	svc, _, _, _ := newTestClassroomService()
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}
	c, _ := svc.Create(context.Background(), faculty, CreateClassroomInput{Name: "CS-DS"})

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	e, err := svc.AddEvent(context.Background(), faculty, c.ID, "IA-1", "Units 1-2", date)
	if err != nil {
		t.Fatalf("add event: %v", err)
	}
	if e.ID == "" || e.Title != "IA-1" || !e.Date.Equal(date) {
		t.Errorf("inserted event not returned faithfully: %+v", e)
	}
	if e.CreatedAt.IsZero() {
		t.Error("created_at must be set server-side")
	}
	if e.CreatedBy != "f1" {
		t.Errorf("created_by = %q, want f1", e.CreatedBy)
	}
}

func TestDeleteClassroom(t *testing.T) {
	svc, _, _, _ := newTestClassroomService()
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}
	c, _ := svc.Create(context.Background(), faculty, CreateClassroomInput{Name: "CS-DS"})

	if err := svc.Delete(context.Background(), faculty, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteClassroomKeepsStoredObjects(t *testing.T) {
	svc, _, files, _ := newTestClassroomService()
	gw := &fakeGateway{}
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}
	c, _ := svc.Create(context.Background(), faculty, CreateClassroomInput{Name: "CS-DS"})

	if err := files.AddFiles(context.Background(), []model.ClassroomFile{{
		ID:          "file1",
		ClassroomID: c.ID,
		Name:        "notes.pdf",
		Kind:        model.FileKindDocument,
		URL:         "https://res.cloudinary.com/demo/raw/upload/v1/notes.pdf",
		ObjectID:    "sece-space/notes",
	}}); err != nil {
		t.Fatalf("add files: %v", err)
	}

	if err := svc.Delete(context.Background(), faculty, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Deleting a classroom removes records only. Objects stay with the
	// storage provider; releasing them later must be a deliberate
	// change, so any gateway delete here is a regression.
	if len(gw.deletes) != 0 {
		t.Errorf("gateway deletes = %v, want none", gw.deletes)
	}
}

func TestBackfillMissingCodes(t *testing.T) {
	svc, classrooms, _, _ := newTestClassroomService()

	// Legacy rows created before code generation existed.
	classrooms.classrooms["legacy1"] = &model.Classroom{ID: "legacy1", Name: "Old 1", FacultyID: "f1"}
	classrooms.classrooms["legacy2"] = &model.Classroom{ID: "legacy2", Name: "Old 2", FacultyID: "f1"}

	n, err := svc.BackfillMissingCodes(context.Background())
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if n != 2 {
		t.Fatalf("backfilled %d classrooms, want 2", n)
	}
	for _, id := range []string{"legacy1", "legacy2"} {
		if len(classrooms.classrooms[id].Code) != 6 {
			t.Errorf("classroom %s still missing a code", id)
		}
	}

	// A second sweep finds nothing.
	n, err = svc.BackfillMissingCodes(context.Background())
	if err != nil {
		t.Fatalf("second backfill: %v", err)
	}
	if n != 0 {
		t.Errorf("second sweep touched %d classrooms, want 0", n)
	}
}
