package upload

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/policy"
	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/internal/service/resource"
	"github.com/jwalitptl/dental-api/pkg/blob"
	"github.com/jwalitptl/dental-api/pkg/errors"
)

// Kinds of upload and the content types each accepts.
var allowed = map[string][]string{
	"images":  {"image/jpeg", "image/png", "image/gif", "image/webp"},
	filesKind: {"application/pdf", "image/jpeg", "image/png"},
}

// Keys under filesKind hold File record content. Only admins and the account
// owning the File record may read them.
const filesKind = "files"

type Service struct {
	store   blob.Store
	files   repository.Repository[model.File]
	policy  resource.Authorizer
	maxSize int64
}

func NewService(store blob.Store, files repository.Repository[model.File], authorizer resource.Authorizer, maxSize int64) *Service {
	return &Service{store: store, files: files, policy: authorizer, maxSize: maxSize}
}

// Upload stores data and returns the key to put in an image or file field.
func (s *Service) Upload(ctx context.Context, caller policy.Caller, kind, filename string, data []byte) (string, error) {
	if err := s.policy.Authorize(ctx, caller, model.ResourceUploads, policy.ActionCreate); err != nil {
		return "", err
	}

	types, ok := allowed[kind]
	if !ok {
		return "", errors.Validation(errors.FieldError{Field: "kind", Message: "must be one of: files, images"})
	}
	if len(data) == 0 {
		return "", errors.Validation(errors.FieldError{Field: "file", Message: "this field is required"})
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", errors.Validation(errors.FieldError{
			Field:   "file",
			Message: fmt.Sprintf("must be at most %d bytes", s.maxSize),
		})
	}

	contentType := http.DetectContentType(data)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !slices.Contains(types, contentType) {
		return "", errors.Validation(errors.FieldError{Field: "file", Message: "unsupported content type " + contentType})
	}

	key := kind + "/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
	if err := s.store.Put(ctx, blob.Object{Key: key, ContentType: contentType, Data: data}); err != nil {
		return "", errors.Internal(err)
	}

	log.Info().Str("key", key).Int("size", len(data)).Str("account", caller.AccountID.String()).Msg("Upload stored")
	return key, nil
}

func (s *Service) Download(ctx context.Context, caller policy.Caller, key string) (*blob.Object, error) {
	if err := s.policy.Authorize(ctx, caller, model.ResourceUploads, policy.ActionRetrieve); err != nil {
		return nil, err
	}
	if strings.HasPrefix(key, filesKind+"/") && !caller.IsAdmin {
		owned, err := s.ownsFile(ctx, caller, key)
		if err != nil {
			return nil, errors.Internal(err)
		}
		if !owned {
			return nil, errors.NotFound("upload", nil)
		}
	}

	obj, err := s.store.Get(ctx, key)
	if err != nil {
		if stderrors.Is(err, blob.ErrNotFound) {
			return nil, errors.NotFound("upload", err)
		}
		return nil, errors.Internal(err)
	}
	return obj, nil
}

func (s *Service) ownsFile(ctx context.Context, caller policy.Caller, key string) (bool, error) {
	q := model.ListQuery{
		Filters:  map[string]string{"file": key},
		Owner:    &caller.AccountID,
		Page:     1,
		PageSize: 1,
	}
	for _, err := range s.files.List(ctx, q) {
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
