package transfer_controller

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/datastores"
	"github.com/t2bot/transfer-repo/errcache"
	"github.com/t2bot/transfer-repo/internal_cache"
	"github.com/t2bot/transfer-repo/notifier"
	"github.com/t2bot/transfer-repo/storage/metadata"
	"github.com/t2bot/transfer-repo/types"
	"github.com/t2bot/transfer-repo/util/ids"
)

type notification struct {
	kind     notifier.EventKind
	id       string
	shareUrl string
}

type recordingNotifier struct {
	lock sync.Mutex
	seen []notification
}

func (n *recordingNotifier) Notify(ctx rcontext.RequestContext, kind notifier.EventKind, transfer *types.Transfer, shareUrl string) bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.seen = append(n.seen, notification{kind: kind, id: transfer.Id, shareUrl: shareUrl})
	_, ok := transfer.Sender.Email()
	return ok
}

type fixture struct {
	controller *Controller
	ds         datastores.Datastore
	meta       *metadata.Store
	notifier   *recordingNotifier
	ctx        rcontext.RequestContext
}

var fixedNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func newFixture(t *testing.T, idList ...string) *fixture {
	cfg := config.NewDefaultConfig()
	cfg.General.PublicOrigin = "https://transfer.example.org"
	ds := datastores.NewLocalDatastore(memfs.New(), "signing-key", cfg.General.PublicOrigin)
	meta := metadata.NewStore(ds, internal_cache.NewMemoryCache(cfg.Cache))
	n := &recordingNotifier{}
	if len(idList) == 0 {
		idList = []string{"AbCdEf12"}
	}
	c := New(ds, meta, &ids.FixedGenerator{Ids: idList}, n).WithClock(func() time.Time { return fixedNow })
	return &fixture{
		controller: c,
		ds:         ds,
		meta:       meta,
		notifier:   n,
		ctx:        rcontext.Initial(cfg),
	}
}

func validRequest() *CreateRequest {
	return &CreateRequest{
		Filename:    "ann_20240501_1030.zip",
		SizeBytes:   1024,
		ContentType: "application/zip",
		Sender:      types.EmailSender("ann@example.org"),
	}
}

func (f *fixture) upload(t *testing.T, transfer *types.Transfer) {
	data := bytes.Repeat([]byte{'x'}, int(transfer.SizeBytes))
	require.NoError(t, f.ds.PutObject(f.ctx, transfer.ObjectKey(), bytes.NewReader(data), transfer.SizeBytes, transfer.ContentType))
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	res, err := f.controller.Create(f.ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "AbCdEf12", res.Transfer.Id)
	assert.Equal(t, "https://transfer.example.org/d/AbCdEf12", res.ShareUrl)
	assert.True(t, strings.HasPrefix(res.UploadUrl, "https://transfer.example.org/_storage/transfers/AbCdEf12/"))
	assert.True(t, fixedNow.Equal(res.Transfer.CreatedAt))

	stored, err := f.meta.Get(f.ctx, "AbCdEf12")
	require.NoError(t, err)
	assert.Equal(t, "ann_20240501_1030.zip", stored.Filename)
	assert.Equal(t, int64(1024), stored.SizeBytes)
	assert.Equal(t, "application/zip", stored.ContentType)

	require.Len(t, f.notifier.seen, 1)
	assert.Equal(t, notifier.EventCreated, f.notifier.seen[0].kind)
	assert.Equal(t, res.ShareUrl, f.notifier.seen[0].shareUrl)
}

func TestCreateDefaultsContentType(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.ContentType = ""

	res, err := f.controller.Create(f.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultContentType, res.Transfer.ContentType)
}

func TestCreateRejectsInvalidRequests(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *CreateRequest)
	}{
		{"empty filename", func(r *CreateRequest) { r.Filename = "  " }},
		{"path in filename", func(r *CreateRequest) { r.Filename = "../etc/passwd" }},
		{"backslash in filename", func(r *CreateRequest) { r.Filename = `a\b.zip` }},
		{"dot filename", func(r *CreateRequest) { r.Filename = ".." }},
		{"control character", func(r *CreateRequest) { r.Filename = "a\nb.zip" }},
		{"descriptor filename", func(r *CreateRequest) { r.Filename = "meta.json" }},
		{"padded filename", func(r *CreateRequest) { r.Filename = " a.zip" }},
		{"padded sender", func(r *CreateRequest) { r.Sender = types.EmailSender("ann@example.org ") }},
		{"zero size", func(r *CreateRequest) { r.SizeBytes = 0 }},
		{"negative size", func(r *CreateRequest) { r.SizeBytes = -5 }},
		{"missing sender", func(r *CreateRequest) { r.Sender = types.SenderIdentity{} }},
		{"bad email", func(r *CreateRequest) { r.Sender = types.EmailSender("not-an-email") }},
		{"bad content type", func(r *CreateRequest) { r.ContentType = "???" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t)
			req := validRequest()
			c.mutate(req)

			res, err := f.controller.Create(f.ctx, req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, common.ErrValidation)

			_, err = f.meta.Get(f.ctx, "AbCdEf12")
			assert.ErrorIs(t, err, common.ErrTransferNotFound)
			assert.Empty(t, f.notifier.seen)
		})
	}
}

func TestCreateTooLarge(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.SizeBytes = config.MaxTransferSizeBytes + 1

	_, err := f.controller.Create(f.ctx, req)
	assert.ErrorIs(t, err, common.ErrTransferTooLarge)

	_, err = f.meta.Get(f.ctx, "AbCdEf12")
	assert.ErrorIs(t, err, common.ErrTransferNotFound)
}

func TestCreateReportsFieldErrorsBeforeSize(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.SizeBytes = config.MaxTransferSizeBytes + 1
	req.Sender = types.EmailSender("not-an-email")

	_, err := f.controller.Create(f.ctx, req)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.NotErrorIs(t, err, common.ErrTransferTooLarge)
}

func TestCreateKeepsNamesExactly(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.Filename = "meta.json.zip"
	req.Sender = types.DisplayNameSender("Ann  Example")

	res, err := f.controller.Create(f.ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "transfers/AbCdEf12/meta.json.zip", res.Transfer.ObjectKey())

	stored, err := f.meta.Get(f.ctx, "AbCdEf12")
	require.NoError(t, err)
	assert.Equal(t, "meta.json.zip", stored.Filename)
	name, _ := stored.Sender.DisplayName()
	assert.Equal(t, "Ann  Example", name)
}

func TestCreateAtLimit(t *testing.T) {
	f := newFixture(t)
	f.ctx.Config.Transfers.MaxSizeBytes = 2048
	req := validRequest()
	req.SizeBytes = 2048

	_, err := f.controller.Create(f.ctx, req)
	require.NoError(t, err)

	f = newFixture(t)
	f.ctx.Config.Transfers.MaxSizeBytes = 2048
	req.SizeBytes = 2049
	_, err = f.controller.Create(f.ctx, req)
	assert.ErrorIs(t, err, common.ErrTransferTooLarge)
}

func TestCreateSenderKindRestriction(t *testing.T) {
	f := newFixture(t)
	f.ctx.Config.Transfers.SenderKind = config.SenderKindEmail
	req := validRequest()
	req.Sender = types.DisplayNameSender("Ann")
	_, err := f.controller.Create(f.ctx, req)
	assert.ErrorIs(t, err, common.ErrValidation)

	f = newFixture(t)
	f.ctx.Config.Transfers.SenderKind = config.SenderKindName
	_, err = f.controller.Create(f.ctx, validRequest())
	assert.ErrorIs(t, err, common.ErrValidation)

	req = validRequest()
	req.Sender = types.DisplayNameSender("Ann")
	_, err = f.controller.Create(f.ctx, req)
	assert.NoError(t, err)
}

func TestCreateIdFailure(t *testing.T) {
	f := newFixture(t)
	f.controller.ids = &ids.FixedGenerator{}

	_, err := f.controller.Create(f.ctx, validRequest())
	assert.True(t, common.IsStorageError(err))
	assert.Empty(t, f.notifier.seen)
}

func TestResolveBeforeUpload(t *testing.T) {
	f := newFixture(t)
	_, err := f.controller.Create(f.ctx, validRequest())
	require.NoError(t, err)

	_, err = f.controller.Resolve(f.ctx, "AbCdEf12")
	assert.ErrorIs(t, err, common.ErrNotYetUploaded)
}

func TestResolveWithoutVerification(t *testing.T) {
	f := newFixture(t)
	f.ctx.Config.Transfers.VerifyUploadOnResolve = false
	_, err := f.controller.Create(f.ctx, validRequest())
	require.NoError(t, err)

	res, err := f.controller.Resolve(f.ctx, "AbCdEf12")
	require.NoError(t, err)
	assert.NotEmpty(t, res.DownloadUrl)
}

func TestResolveAfterUpload(t *testing.T) {
	f := newFixture(t)
	created, err := f.controller.Create(f.ctx, validRequest())
	require.NoError(t, err)
	f.upload(t, created.Transfer)

	res, err := f.controller.Resolve(f.ctx, "AbCdEf12")
	require.NoError(t, err)
	assert.Equal(t, "ann_20240501_1030.zip", res.Transfer.Filename)
	assert.Equal(t, int64(1024), res.Transfer.SizeBytes)
	assert.Equal(t, "https://transfer.example.org/d/AbCdEf12", res.ShareUrl)
	assert.True(t, strings.HasPrefix(res.DownloadUrl, "https://transfer.example.org/_storage/transfers/AbCdEf12/"))
	assert.NotEqual(t, created.UploadUrl, res.DownloadUrl)
}

func TestResolveUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.Resolve(f.ctx, "Zz9_-Zz9")
	assert.ErrorIs(t, err, common.ErrTransferNotFound)

	_, err = f.controller.Resolve(f.ctx, "../../etc")
	assert.ErrorIs(t, err, common.ErrTransferNotFound)
}

func TestConfirm(t *testing.T) {
	f := newFixture(t)
	_, err := f.controller.Create(f.ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, f.controller.Confirm(f.ctx, "AbCdEf12"))
	require.NoError(t, f.controller.Confirm(f.ctx, "AbCdEf12"))

	require.Len(t, f.notifier.seen, 3)
	assert.Equal(t, notifier.EventConfirmed, f.notifier.seen[1].kind)
	assert.Equal(t, notifier.EventConfirmed, f.notifier.seen[2].kind)
	assert.Equal(t, "AbCdEf12", f.notifier.seen[2].id)
}

func TestConfirmUnknown(t *testing.T) {
	f := newFixture(t)
	err := f.controller.Confirm(f.ctx, "Zz9_-Zz9")
	assert.ErrorIs(t, err, common.ErrTransferNotFound)
	assert.Empty(t, f.notifier.seen)
}

func TestCreatedIdsAreDistinct(t *testing.T) {
	f := newFixture(t, "AAAAAAAA", "BBBBBBBB")
	a, err := f.controller.Create(f.ctx, validRequest())
	require.NoError(t, err)
	b, err := f.controller.Create(f.ctx, validRequest())
	require.NoError(t, err)
	assert.NotEqual(t, a.Transfer.Id, b.Transfer.Id)
	assert.NotEqual(t, a.UploadUrl, b.UploadUrl)
}

func TestResolveRemembersMissingUpload(t *testing.T) {
	f := newFixture(t)
	f.controller.WithUploadMissCache(errcache.NewErrCache(time.Minute))
	created, err := f.controller.Create(f.ctx, validRequest())
	require.NoError(t, err)

	_, err = f.controller.Resolve(f.ctx, "AbCdEf12")
	assert.ErrorIs(t, err, common.ErrNotYetUploaded)

	// Still reported as missing until the remembered miss expires
	f.upload(t, created.Transfer)
	_, err = f.controller.Resolve(f.ctx, "AbCdEf12")
	assert.ErrorIs(t, err, common.ErrNotYetUploaded)

	f.controller.uploadMisses.Forget("AbCdEf12")
	res, err := f.controller.Resolve(f.ctx, "AbCdEf12")
	require.NoError(t, err)
	assert.NotEmpty(t, res.DownloadUrl)
}
