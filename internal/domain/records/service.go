package records

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/92kareeem/healthai/internal/platform/ipfs"
	"github.com/92kareeem/healthai/internal/platform/phi"
)

type Service struct {
	repo    Repository
	store   ipfs.FileStore
	enc     *phi.Encryptor
	maxSize int64
	log     zerolog.Logger
}

// NewService wires the medical records service. enc may be nil in
// development, in which case descriptions are stored as plaintext.
func NewService(repo Repository, store ipfs.FileStore, enc *phi.Encryptor, maxSize int64, log zerolog.Logger) *Service {
	return &Service{repo: repo, store: store, enc: enc, maxSize: maxSize, log: log}
}

type UploadInput struct {
	RecordType  string
	Title       string
	Description string
	FileName    string
	ContentType string
}

// Upload pins a document to IPFS and stores its metadata. The file content is
// hashed so later downloads can be integrity-checked against the pinned copy.
func (s *Service) Upload(ctx context.Context, patientID, uploadedBy uuid.UUID, in UploadInput, file io.Reader) (*MedicalRecord, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if !validRecordType(in.RecordType) {
		return nil, fmt.Errorf("invalid record type %q", in.RecordType)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if in.FileName == "" {
		return nil, fmt.Errorf("file name is required")
	}

	// Read through a one-byte-over limit so oversize files are detected
	// without buffering arbitrary input.
	content, err := io.ReadAll(io.LimitReader(file, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(content)) > s.maxSize {
		return nil, ipfs.ErrFileTooLarge
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	sum := sha256.Sum256(content)

	pin, err := s.store.Pin(ctx, in.FileName, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("pin file: %w", err)
	}

	desc := in.Description
	if s.enc != nil && desc != "" {
		if desc, err = s.enc.Encrypt(desc); err != nil {
			return nil, fmt.Errorf("encrypt description: %w", err)
		}
	}

	rec := &MedicalRecord{
		PatientID:   patientID,
		UploadedBy:  uploadedBy,
		RecordType:  in.RecordType,
		Title:       in.Title,
		Description: desc,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		FileSize:    int64(len(content)),
		ContentHash: hex.EncodeToString(sum[:]),
		CID:         pin.CID,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		// Roll the pin back so the store does not accumulate orphans.
		if unpinErr := s.store.Unpin(ctx, pin.CID); unpinErr != nil {
			s.log.Error().Err(unpinErr).Str("cid", pin.CID).Msg("orphan pin cleanup failed")
		}
		return nil, fmt.Errorf("store medical record: %w", err)
	}

	s.log.Info().
		Str("record_id", rec.ID.String()).
		Str("patient_id", patientID.String()).
		Str("record_type", rec.RecordType).
		Str("cid", rec.CID).
		Int64("size", rec.FileSize).
		Msg("medical record uploaded")

	rec.Description = in.Description
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.decryptDescription(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, recordType string, limit, offset int) ([]*MedicalRecord, int, error) {
	if recordType != "" && !validRecordType(recordType) {
		return nil, 0, fmt.Errorf("invalid record type %q", recordType)
	}
	items, total, err := s.repo.ListByPatient(ctx, patientID, recordType, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, rec := range items {
		if err := s.decryptDescription(rec); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// Download fetches the pinned content for a record.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (*MedicalRecord, io.ReadCloser, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.store.Fetch(ctx, rec.CID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", rec.CID, err)
	}
	return rec, body, nil
}

// Delete removes the metadata row and unpins the content.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Unpin(ctx, rec.CID); err != nil {
		s.log.Error().Err(err).Str("cid", rec.CID).Msg("unpin failed")
	}
	return nil
}

func (s *Service) decryptDescription(rec *MedicalRecord) error {
	if s.enc == nil || rec.Description == "" {
		return nil
	}
	plain, err := s.enc.Decrypt(rec.Description)
	if err != nil {
		return fmt.Errorf("decrypt description for record %s: %w", rec.ID, err)
	}
	rec.Description = plain
	return nil
}
