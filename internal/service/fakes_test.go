package service

import (
	"context"
	"errors"
	"time"

	"github.com/eswarnandha-a/sece-space/internal/model"
	"github.com/eswarnandha-a/sece-space/internal/repository"
	"github.com/eswarnandha-a/sece-space/internal/storage"
)

// In-memory store fakes. They mirror the pgx repositories' behavior
// closely enough for service-level tests: sentinel errors, duplicate
// detection, timestamps filled on insert.

type fakeClassroomStore struct {
	classrooms map[string]*model.Classroom
	members    map[string]map[string]bool
}

func newFakeClassroomStore() *fakeClassroomStore {
	return &fakeClassroomStore{
		classrooms: make(map[string]*model.Classroom),
		members:    make(map[string]map[string]bool),
	}
}

func (f *fakeClassroomStore) Create(_ context.Context, c *model.Classroom) error {
	for _, existing := range f.classrooms {
		if existing.Code == c.Code && c.Code != "" {
			return repository.ErrDuplicate
		}
	}
	c.CreatedAt = time.Now()
	cp := *c
	f.classrooms[c.ID] = &cp
	return nil
}

func (f *fakeClassroomStore) GetByID(_ context.Context, id string) (*model.Classroom, error) {
	c, ok := f.classrooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	cp.Students = f.studentRefs(id)
	cp.Files = []model.ClassroomFile{}
	cp.Events = []model.ClassroomEvent{}
	return &cp, nil
}

func (f *fakeClassroomStore) GetByCode(_ context.Context, code string) (*model.Classroom, error) {
	for id, c := range f.classrooms {
		if c.Code == code {
			cp := *c
			cp.Students = f.studentRefs(id)
			cp.Files = []model.ClassroomFile{}
			cp.Events = []model.ClassroomEvent{}
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeClassroomStore) ListByFaculty(_ context.Context, facultyID string) ([]model.Classroom, error) {
	var out []model.Classroom
	for _, c := range f.classrooms {
		if c.FacultyID == facultyID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeClassroomStore) ListByStudent(_ context.Context, studentID string) ([]model.Classroom, error) {
	var out []model.Classroom
	for id, c := range f.classrooms {
		if f.members[id][studentID] {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeClassroomStore) AddStudent(_ context.Context, classroomID, studentID string) error {
	if _, ok := f.classrooms[classroomID]; !ok {
		return repository.ErrNotFound
	}
	if f.members[classroomID] == nil {
		f.members[classroomID] = make(map[string]bool)
	}
	if f.members[classroomID][studentID] {
		return repository.ErrDuplicate
	}
	f.members[classroomID][studentID] = true
	return nil
}

func (f *fakeClassroomStore) Archive(_ context.Context, id string) error {
	c, ok := f.classrooms[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Archived = true
	return nil
}

func (f *fakeClassroomStore) Delete(_ context.Context, id string) error {
	if _, ok := f.classrooms[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.classrooms, id)
	delete(f.members, id)
	return nil
}

func (f *fakeClassroomStore) ListWithoutCode(_ context.Context) ([]string, error) {
	var ids []string
	for id, c := range f.classrooms {
		if c.Code == "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeClassroomStore) SetCode(_ context.Context, id, code string) error {
	c, ok := f.classrooms[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Code = code
	return nil
}

func (f *fakeClassroomStore) studentRefs(classroomID string) []model.UserRef {
	refs := []model.UserRef{}
	for sid := range f.members[classroomID] {
		refs = append(refs, model.UserRef{ID: sid, Role: model.RoleStudent})
	}
	return refs
}

type fakeFileStore struct {
	files []model.ClassroomFile
}

func (f *fakeFileStore) AddFiles(_ context.Context, files []model.ClassroomFile) error {
	for i := range files {
		files[i].UploadedAt = time.Now()
	}
	f.files = append(f.files, files...)
	return nil
}

func (f *fakeFileStore) ListByClassroom(_ context.Context, classroomID string) ([]model.ClassroomFile, error) {
	out := []model.ClassroomFile{}
	for _, file := range f.files {
		if file.ClassroomID == classroomID {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeFileStore) ListByClassroomNewestFirst(ctx context.Context, classroomID string) ([]model.ClassroomFile, error) {
	out, _ := f.ListByClassroom(ctx, classroomID)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (f *fakeFileStore) GetByID(_ context.Context, classroomID, fileID string) (*model.ClassroomFile, error) {
	for _, file := range f.files {
		if file.ClassroomID == classroomID && file.ID == fileID {
			cp := file
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeFileStore) Delete(_ context.Context, fileID string) (*model.ClassroomFile, error) {
	for i, file := range f.files {
		if file.ID == fileID {
			f.files = append(f.files[:i], f.files[i+1:]...)
			cp := file
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeFileStore) DeleteFromClassroom(_ context.Context, classroomID, fileID string) error {
	for i, file := range f.files {
		if file.ClassroomID == classroomID && file.ID == fileID {
			f.files = append(f.files[:i], f.files[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeEventStore struct {
	events []model.ClassroomEvent
}

func (f *fakeEventStore) Add(_ context.Context, e *model.ClassroomEvent) error {
	e.CreatedAt = time.Now()
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeEventStore) ListByClassroom(_ context.Context, classroomID string) ([]model.ClassroomEvent, error) {
	out := []model.ClassroomEvent{}
	for _, e := range f.events {
		if e.ClassroomID == classroomID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users map[string]*model.UserRef
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.UserRef)}
}

func (f *fakeUserStore) GetRef(_ context.Context, id string) (*model.UserRef, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) Upsert(_ context.Context, u *model.UserRef) error {
	if existing, ok := f.users[u.ID]; ok {
		existing.Name, existing.Email, existing.Role = u.Name, u.Email, u.Role
		return nil
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) SetAvatar(_ context.Context, id, avatarURL string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.AvatarURL = avatarURL
	return nil
}

// fakeGateway records calls instead of talking to the provider.
type fakeGateway struct {
	uploads       int
	deletes       []string
	uploadErr     error
	resources     map[string]string
	signed        string
	signedErr     error
	signedClasses []string
	owned         string
}

func (g *fakeGateway) Upload(_ context.Context, _ []byte, _ string, p storage.UploadParams) (*storage.UploadResult, error) {
	if g.uploadErr != nil {
		return nil, g.uploadErr
	}
	g.uploads++
	publicID := p.Folder + "/" + p.PublicID
	return &storage.UploadResult{
		PublicID:     publicID,
		SecureURL:    "https://res.cloudinary.com/demo/auto/upload/" + publicID,
		ResourceType: p.ResourceType,
	}, nil
}

func (g *fakeGateway) Resource(_ context.Context, publicID, resourceType string) (*storage.ResourceInfo, error) {
	if rt, ok := g.resources[publicID]; ok && rt == resourceType {
		return &storage.ResourceInfo{PublicID: publicID, ResourceType: resourceType}, nil
	}
	return nil, errors.New("resource not found")
}

func (g *fakeGateway) SignedURL(publicID, resourceType string, _ time.Time) (string, error) {
	g.signedClasses = append(g.signedClasses, resourceType)
	if g.signedErr != nil {
		return "", g.signedErr
	}
	if g.signed != "" {
		return g.signed, nil
	}
	return "https://api.cloudinary.com/signed/" + resourceType + "/" + publicID, nil
}

func (g *fakeGateway) Delete(_ context.Context, publicID, _ string) error {
	g.deletes = append(g.deletes, publicID)
	return nil
}

func (g *fakeGateway) Owns(rawURL string) bool {
	if g.owned == "" {
		return false
	}
	return rawURL == g.owned || g.owned == "*"
}
