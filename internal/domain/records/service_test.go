package records

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/92kareeem/healthai/internal/platform/ipfs"
	"github.com/92kareeem/healthai/internal/platform/phi"
)

type mockRepo struct {
	byID       map[uuid.UUID]*MedicalRecord
	createFail error
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: map[uuid.UUID]*MedicalRecord{}}
}

func (m *mockRepo) Create(_ context.Context, rec *MedicalRecord) error {
	if m.createFail != nil {
		return m.createFail
	}
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now()
	cp := *rec
	m.byID[rec.ID] = &cp
	return nil
}

func (m *mockRepo) Get(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	rec, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, recordType string, limit, offset int) ([]*MedicalRecord, int, error) {
	var out []*MedicalRecord
	for _, rec := range m.byID {
		if rec.PatientID == patientID && (recordType == "" || rec.RecordType == recordType) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func newTestService(t *testing.T, repo *mockRepo, store ipfs.FileStore) *Service {
	t.Helper()
	enc, err := phi.NewEncryptor([]byte(strings.Repeat("k", 32)))
	if err != nil {
		t.Fatalf("encryptor: %v", err)
	}
	return NewService(repo, store, enc, 1024, zerolog.Nop())
}

func TestUpload(t *testing.T) {
	repo := newMockRepo()
	store := ipfs.NewMemoryStore(1 << 20)
	svc := newTestService(t, repo, store)
	pid, doctor := uuid.New(), uuid.New()

	content := []byte("CBC panel results for review")
	rec, err := svc.Upload(context.Background(), pid, doctor, UploadInput{
		RecordType:  "laboratory_report",
		Title:       "CBC Panel",
		Description: "fasting sample, morning draw",
		FileName:    "cbc.pdf",
		ContentType: "application/pdf",
	}, bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if rec.CID == "" {
		t.Error("expected CID assigned")
	}
	sum := sha256.Sum256(content)
	if rec.ContentHash != hex.EncodeToString(sum[:]) {
		t.Errorf("unexpected content hash %q", rec.ContentHash)
	}
	if rec.FileSize != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), rec.FileSize)
	}
	if rec.Description != "fasting sample, morning draw" {
		t.Errorf("expected plaintext description in response, got %q", rec.Description)
	}

	// At rest the description is ciphertext.
	stored := repo.byID[rec.ID]
	if stored.Description == "fasting sample, morning draw" {
		t.Error("expected encrypted description at rest")
	}
}

func TestUpload_Validation(t *testing.T) {
	svc := newTestService(t, newMockRepo(), ipfs.NewMemoryStore(1<<20))
	ctx := context.Background()
	pid, doctor := uuid.New(), uuid.New()
	body := func() io.Reader { return strings.NewReader("x") }

	tests := []struct {
		name string
		pid  uuid.UUID
		in   UploadInput
		file io.Reader
	}{
		{"nil patient", uuid.Nil, UploadInput{RecordType: "prescription", Title: "t", FileName: "f"}, body()},
		{"bad type", pid, UploadInput{RecordType: "selfie", Title: "t", FileName: "f"}, body()},
		{"missing title", pid, UploadInput{RecordType: "prescription", FileName: "f"}, body()},
		{"missing file name", pid, UploadInput{RecordType: "prescription", Title: "t"}, body()},
		{"empty file", pid, UploadInput{RecordType: "prescription", Title: "t", FileName: "f"}, strings.NewReader("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Upload(ctx, tt.pid, doctor, tt.in, tt.file); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestUpload_SizeLimit(t *testing.T) {
	svc := newTestService(t, newMockRepo(), ipfs.NewMemoryStore(1<<20))

	big := strings.NewReader(strings.Repeat("a", 2048))
	_, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), UploadInput{
		RecordType: "imaging_report",
		Title:      "chest x-ray",
		FileName:   "xray.dcm",
	}, big)
	if err != ipfs.ErrFileTooLarge {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestUpload_RepoFailureUnpins(t *testing.T) {
	repo := newMockRepo()
	repo.createFail = context.DeadlineExceeded
	store := ipfs.NewMemoryStore(1 << 20)
	svc := newTestService(t, repo, store)

	content := []byte("some document")
	_, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), UploadInput{
		RecordType: "prescription",
		Title:      "rx",
		FileName:   "rx.pdf",
	}, bytes.NewReader(content))
	if err == nil {
		t.Fatal("expected upload failure")
	}

	// The pin was rolled back, so fetching by the content CID must fail.
	pin, err := store.Pin(context.Background(), "probe", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("probe pin: %v", err)
	}
	if err := store.Unpin(context.Background(), pin.CID); err != nil {
		t.Fatalf("expected probe CID pinned exactly once, unpin failed: %v", err)
	}
}

func TestDownloadRoundTrip(t *testing.T) {
	repo := newMockRepo()
	store := ipfs.NewMemoryStore(1 << 20)
	svc := newTestService(t, repo, store)

	content := []byte("discharge instructions")
	rec, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), UploadInput{
		RecordType: "discharge_summary",
		Title:      "Discharge",
		FileName:   "discharge.txt",
	}, bytes.NewReader(content))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	got, body, err := svc.Download(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("content mismatch: %q", data)
	}
	if got.FileName != "discharge.txt" {
		t.Errorf("unexpected file name %q", got.FileName)
	}
}

func TestListByPatient_TypeFilter(t *testing.T) {
	repo := newMockRepo()
	store := ipfs.NewMemoryStore(1 << 20)
	svc := newTestService(t, repo, store)
	ctx := context.Background()
	pid, doctor := uuid.New(), uuid.New()

	for i, rt := range []string{"prescription", "laboratory_report"} {
		content := []byte{byte('a' + i)}
		if _, err := svc.Upload(ctx, pid, doctor, UploadInput{
			RecordType: rt,
			Title:      rt,
			FileName:   rt + ".pdf",
		}, bytes.NewReader(content)); err != nil {
			t.Fatalf("upload %s: %v", rt, err)
		}
	}

	items, total, err := svc.ListByPatient(ctx, pid, "prescription", 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 prescription, got total=%d items=%d", total, len(items))
	}
	if items[0].RecordType != "prescription" {
		t.Errorf("unexpected type %q", items[0].RecordType)
	}

	if _, _, err := svc.ListByPatient(ctx, pid, "memes", 20, 0); err == nil {
		t.Error("expected error for invalid type filter")
	}
}

func TestDelete_Unpins(t *testing.T) {
	repo := newMockRepo()
	store := ipfs.NewMemoryStore(1 << 20)
	svc := newTestService(t, repo, store)
	ctx := context.Background()

	rec, err := svc.Upload(ctx, uuid.New(), uuid.New(), UploadInput{
		RecordType: "consultation_note",
		Title:      "note",
		FileName:   "note.txt",
	}, strings.NewReader("follow up in two weeks"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, rec.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := store.Fetch(ctx, rec.CID); err != ipfs.ErrNotFound {
		t.Errorf("expected content unpinned, got %v", err)
	}
}
