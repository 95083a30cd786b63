package upload

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/policy"
	"github.com/jwalitptl/dental-api/internal/repository/memory"
	"github.com/jwalitptl/dental-api/pkg/blob"
	"github.com/jwalitptl/dental-api/pkg/errors"
)

var (
	png    = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")
	pdf    = []byte("%PDF-1.4\n%âãÏÓ\n")
	admin  = policy.Caller{AccountID: uuid.New(), IsAdmin: true}
	member = policy.Caller{AccountID: uuid.New()}
)

func newService(maxSize int64) *Service {
	svc, _ := newServiceWithStore(maxSize)
	return svc
}

func newServiceWithStore(maxSize int64) (*Service, *memory.Store) {
	store := memory.New()
	svc := NewService(blob.NewMemoryStore(), store.Files(), policy.NewEngine(store.Blocklist(), nil, nil), maxSize)
	return svc, store
}

func TestUploadAndDownload(t *testing.T) {
	svc := newService(1 << 20)
	ctx := context.Background()

	key, err := svc.Upload(ctx, admin, "images", "Front.PNG", png)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "images/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	obj, err := svc.Download(ctx, member, key)
	require.NoError(t, err)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, png, obj.Data)

	key, err = svc.Upload(ctx, admin, "files", "xray.pdf", pdf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "files/"))
}

func TestDownloadFileContentNeedsOwnership(t *testing.T) {
	svc, store := newServiceWithStore(1 << 20)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	stranger := policy.Caller{AccountID: uuid.New()}

	for _, caller := range []policy.Caller{member, stranger} {
		err := store.Accounts().Create(ctx, &model.Account{
			Base:     model.Base{ID: caller.AccountID, CreatedAt: now},
			Username: caller.AccountID.String(),
		})
		require.NoError(t, err)
	}
	clinic := &model.Clinic{Base: model.Base{ID: uuid.New(), CreatedAt: now}, Name: "Downtown", Address: "1 Main St"}
	require.NoError(t, store.Clinics().Create(ctx, clinic))
	appt := &model.Appointment{
		Base:      model.Base{ID: uuid.New(), CreatedAt: now},
		AccountID: member.AccountID,
		ClinicID:  clinic.ID,
		Date:      now,
		Status:    model.AppointmentStatusScheduled,
		UpdatedAt: now,
	}
	require.NoError(t, store.Appointments().Create(ctx, appt))

	key, err := svc.Upload(ctx, admin, "files", "xray.pdf", pdf)
	require.NoError(t, err)

	_, err = svc.Download(ctx, member, key)
	assert.True(t, errors.Is(err, errors.ErrNotFound), "no file record yet")

	require.NoError(t, store.Files().Create(ctx, &model.File{
		Base:          model.Base{ID: uuid.New(), CreatedAt: now},
		AppointmentID: appt.ID,
		Name:          "X-ray",
		Type:          model.FileTypePDF,
		File:          key,
	}))

	obj, err := svc.Download(ctx, member, key)
	require.NoError(t, err)
	assert.Equal(t, pdf, obj.Data)

	_, err = svc.Download(ctx, stranger, key)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = svc.Download(ctx, admin, key)
	assert.NoError(t, err)
}

func TestUploadRejects(t *testing.T) {
	svc := newService(8)
	ctx := context.Background()

	_, err := svc.Upload(ctx, member, "images", "a.png", png)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	_, err = svc.Upload(ctx, admin, "videos", "a.mp4", png)
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = svc.Upload(ctx, admin, "images", "a.png", png)
	assert.True(t, errors.Is(err, errors.ErrValidation), "larger than the limit")

	_, err = newService(0).Upload(ctx, admin, "images", "a.pdf", pdf)
	assert.True(t, errors.Is(err, errors.ErrValidation), "pdf is not an image")

	_, err = svc.Download(ctx, member, "images/missing.png")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = svc.Download(ctx, policy.Caller{}, "images/missing.png")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}
