package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eswarnandha-a/sece-space/internal/config"
	"github.com/eswarnandha-a/sece-space/internal/model"
)

func newTestUploadService(gateway *fakeGateway) (*UploadService, *fakeClassroomStore, *fakeFileStore) {
	classrooms := newFakeClassroomStore()
	files := &fakeFileStore{}
	cfg := &config.Config{
		UploadFolder:         "sece-space",
		MaxProfileImageBytes: 2 * 1024 * 1024,
		MaxCoverImageBytes:   5 * 1024 * 1024,
		MaxDocumentBytes:     10 * 1024 * 1024,
	}
	return NewUploadService(files, classrooms, gateway, cfg, zerolog.Nop()), classrooms, files
}

func TestUploadProfileImageValidation(t *testing.T) {
	gateway := &fakeGateway{}
	svc, _, _ := newTestUploadService(gateway)

	t.Run("UnsupportedType", func(t *testing.T) {
		_, err := svc.UploadProfileImage(context.Background(), []byte("x"), "application/pdf")
		if !errors.Is(err, ErrUnsupportedFileType) {
			t.Fatalf("err = %v, want ErrUnsupportedFileType", err)
		}
	})

	t.Run("TooLarge", func(t *testing.T) {
		data := bytes.Repeat([]byte("a"), 3*1024*1024)
		_, err := svc.UploadProfileImage(context.Background(), data, "image/png")
		if !errors.Is(err, ErrFileTooLarge) {
			t.Fatalf("err = %v, want ErrFileTooLarge", err)
		}
	})

	if gateway.uploads != 0 {
		t.Errorf("rejected uploads must never reach the gateway, got %d calls", gateway.uploads)
	}
}

func TestUploadProfileImage(t *testing.T) {
	gateway := &fakeGateway{}
	svc, _, _ := newTestUploadService(gateway)

	result, err := svc.UploadProfileImage(context.Background(), []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(result.PublicID, "profile-images") {
		t.Errorf("public id %q not under the profile-images folder", result.PublicID)
	}
}

func TestUploadDocument(t *testing.T) {
	gateway := &fakeGateway{}
	svc, classrooms, files := newTestUploadService(gateway)
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}

	classrooms.Create(context.Background(), &model.Classroom{ID: "c1", Name: "CS-DS", FacultyID: "f1", Code: "ABC123"})

	f, err := svc.UploadDocument(context.Background(), faculty, "c1", []byte("%PDF-1.4"), "application/pdf", "Unit 1 Notes.pdf")
	if err != nil {
		t.Fatalf("upload document: %v", err)
	}
	if f.Kind != model.FileKindDocument {
		t.Errorf("kind = %q, want document", f.Kind)
	}
	if f.Name != "Unit 1 Notes.pdf" {
		t.Errorf("name = %q, want original filename", f.Name)
	}
	if f.ObjectID == "" {
		t.Error("object id must record the stored public id")
	}
	if f.UploadedAt.IsZero() {
		t.Error("uploaded_at must be set server-side")
	}
	if len(files.files) != 1 {
		t.Fatalf("persisted %d files, want 1", len(files.files))
	}
}

func TestUploadDocumentImageKind(t *testing.T) {
	gateway := &fakeGateway{}
	svc, classrooms, _ := newTestUploadService(gateway)
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}
	classrooms.Create(context.Background(), &model.Classroom{ID: "c1", FacultyID: "f1", Code: "ABC123"})

	f, err := svc.UploadDocument(context.Background(), faculty, "c1", []byte("png"), "image/png", "diagram.png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if f.Kind != model.FileKindImage {
		t.Errorf("kind = %q, want image", f.Kind)
	}
}

func TestUploadDocumentErrors(t *testing.T) {
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}
	student := Principal{ID: "s1", Role: model.RoleStudent}

	t.Run("StudentForbidden", func(t *testing.T) {
		svc, _, _ := newTestUploadService(&fakeGateway{})
		_, err := svc.UploadDocument(context.Background(), student, "c1", []byte("x"), "application/pdf", "a.pdf")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("UnknownClassroom", func(t *testing.T) {
		svc, _, _ := newTestUploadService(&fakeGateway{})
		_, err := svc.UploadDocument(context.Background(), faculty, "missing", []byte("x"), "application/pdf", "a.pdf")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("GatewayFailureHidden", func(t *testing.T) {
		gateway := &fakeGateway{uploadErr: errors.New("api key rejected")}
		svc, classrooms, _ := newTestUploadService(gateway)
		classrooms.Create(context.Background(), &model.Classroom{ID: "c1", FacultyID: "f1", Code: "ABC123"})

		_, err := svc.UploadDocument(context.Background(), faculty, "c1", []byte("x"), "application/pdf", "a.pdf")
		if !errors.Is(err, ErrUploadFailed) {
			t.Fatalf("err = %v, want ErrUploadFailed", err)
		}
		if strings.Contains(err.Error(), "api key") {
			t.Errorf("provider detail leaked to caller: %v", err)
		}
	})
}

func TestAddExternalLink(t *testing.T) {
	svc, classrooms, _ := newTestUploadService(&fakeGateway{})
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}
	classrooms.Create(context.Background(), &model.Classroom{ID: "c1", FacultyID: "f1", Code: "ABC123"})

	f, err := svc.AddExternalLink(context.Background(), faculty, "c1", "https://youtu.be/dQw4w9WgXcQ", "")
	if err != nil {
		t.Fatalf("add link: %v", err)
	}
	if f.Kind != model.FileKindVideo {
		t.Errorf("kind = %q, want video", f.Kind)
	}
	if f.Name != "Untitled" {
		t.Errorf("empty title must default to Untitled, got %q", f.Name)
	}
}

func TestDeleteResource(t *testing.T) {
	faculty := Principal{ID: "f1", Role: model.RoleFaculty}

	t.Run("DeletesRecordAndObject", func(t *testing.T) {
		gateway := &fakeGateway{}
		svc, _, files := newTestUploadService(gateway)
		files.AddFiles(context.Background(), []model.ClassroomFile{
			{ID: "file1", ClassroomID: "c1", Name: "a.pdf", Kind: model.FileKindDocument, ObjectID: "sece-space/documents/a"},
		})

		if err := svc.DeleteResource(context.Background(), faculty, "file1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if len(files.files) != 0 {
			t.Error("record still present after delete")
		}
		if len(gateway.deletes) != 1 || gateway.deletes[0] != "sece-space/documents/a" {
			t.Errorf("gateway deletes = %v, want the stored object id", gateway.deletes)
		}
	})

	t.Run("LinkWithoutObjectSkipsGateway", func(t *testing.T) {
		gateway := &fakeGateway{}
		svc, _, files := newTestUploadService(gateway)
		files.AddFiles(context.Background(), []model.ClassroomFile{
			{ID: "file1", ClassroomID: "c1", Name: "Lecture", Kind: model.FileKindVideo, URL: "https://youtu.be/x"},
		})

		if err := svc.DeleteResource(context.Background(), faculty, "file1"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if len(gateway.deletes) != 0 {
			t.Errorf("external links must not trigger object deletion, got %v", gateway.deletes)
		}
	})

	t.Run("MissingIsNotFound", func(t *testing.T) {
		svc, _, _ := newTestUploadService(&fakeGateway{})
		if err := svc.DeleteResource(context.Background(), faculty, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}
