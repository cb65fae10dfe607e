package trade

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProofStorage stores proof-of-payment files.
type ProofStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// allowed proof content types and the extension stored with them
var proofContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ProofUpload describes an incoming proof-of-payment file
type ProofUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProofResponse is returned after a successful upload
type ProofResponse struct {
	ProofFileRef string `json:"proof_file_ref"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
}

// ProofService uploads proof-of-payment files and hands back the reference
// a customer passes to checkout.
type ProofService struct {
	storage ProofStorage
	maxSize int64
	now     func() time.Time
	logger  *zap.Logger
}

// NewProofService creates a new ProofService
func NewProofService(storage ProofStorage, maxSize int64, logger *zap.Logger) *ProofService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProofService{
		storage: storage,
		maxSize: maxSize,
		now:     time.Now,
		logger:  logger,
	}
}

// Upload validates and stores a proof file under proofs/<yyyy>/<mm>/<uuid><ext>
func (s *ProofService) Upload(ctx context.Context, actor shared.Actor, upload ProofUpload) (*ProofResponse, error) {
	if actor.ID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(upload.ContentType, ";", 2)[0]))
	ext, ok := proofContentTypes[contentType]
	if !ok {
		return nil, shared.NewInvalidInputError("unsupported proof content type %q", upload.ContentType)
	}
	if upload.Size <= 0 {
		return nil, shared.NewInvalidInputError("proof file is empty")
	}
	if s.maxSize > 0 && upload.Size > s.maxSize {
		return nil, shared.NewInvalidInputError("proof file exceeds %d bytes", s.maxSize)
	}

	now := s.now().UTC()
	key := path.Join("proofs", now.Format("2006"), now.Format("01"), uuid.New().String()+ext)

	if err := s.storage.Put(ctx, key, io.LimitReader(upload.Body, upload.Size), upload.Size, contentType); err != nil {
		s.logger.Error("Failed to store proof of payment",
			zap.String("key", key),
			zap.String("actor_id", actor.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Proof of payment stored",
		zap.String("key", key),
		zap.String("file_name", upload.FileName),
		zap.Int64("size", upload.Size),
	)

	return &ProofResponse{
		ProofFileRef: key,
		Size:         upload.Size,
		ContentType:  contentType,
	}, nil
}

// Verify reports whether ref points to a stored proof file.
func (s *ProofService) Verify(ctx context.Context, ref string) (bool, error) {
	if !strings.HasPrefix(ref, "proofs/") {
		return false, nil
	}
	return s.storage.Exists(ctx, ref)
}
