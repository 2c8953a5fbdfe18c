package transfer_controller

import (
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/datastores"
	"github.com/t2bot/transfer-repo/errcache"
	"github.com/t2bot/transfer-repo/metrics"
	"github.com/t2bot/transfer-repo/notifier"
	"github.com/t2bot/transfer-repo/types"
	"github.com/t2bot/transfer-repo/util"
	"github.com/t2bot/transfer-repo/util/ids"
)

type MetadataStore interface {
	Put(ctx rcontext.RequestContext, id string, transfer *types.Transfer) error
	Get(ctx rcontext.RequestContext, id string) (*types.Transfer, error)
}

type Notifier interface {
	Notify(ctx rcontext.RequestContext, kind notifier.EventKind, transfer *types.Transfer, shareUrl string) bool
}

type CreateRequest struct {
	Filename    string
	SizeBytes   int64
	ContentType string
	Sender      types.SenderIdentity
}

type CreateResult struct {
	Transfer  *types.Transfer
	UploadUrl string
	ShareUrl  string
}

type ResolveResult struct {
	Transfer    *types.Transfer
	DownloadUrl string
	ShareUrl    string
}

// Controller runs the server side of the transfer lifecycle: announce, resolve and confirm.
type Controller struct {
	ds       datastores.Datastore
	meta     MetadataStore
	ids      ids.Generator
	notifier Notifier
	now      func() time.Time

	// Recent stat misses, so recipients polling before the upload lands don't each hit storage
	uploadMisses *errcache.ErrCache
}

func New(ds datastores.Datastore, meta MetadataStore, gen ids.Generator, n Notifier) *Controller {
	return &Controller{
		ds:       ds,
		meta:     meta,
		ids:      gen,
		notifier: n,
		now:      time.Now,
	}
}

func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

func (c *Controller) WithUploadMissCache(cache *errcache.ErrCache) *Controller {
	c.uploadMisses = cache
	return c
}

// Create validates the request, issues an upload URL and records the descriptor. The descriptor
// is written before the caller learns the URL, so it can exist without an uploaded artifact.
func (c *Controller) Create(ctx rcontext.RequestContext, req *CreateRequest) (*CreateResult, error) {
	req, err := validateCreate(ctx.Config.Transfers, req)
	if err != nil {
		return nil, err
	}

	id, err := c.ids.NewTransferId()
	if err != nil {
		return nil, common.NewStorageError("generate_id", "", err)
	}
	ctx = ctx.LogWithFields(logrus.Fields{"transferId": id})

	transfer := &types.Transfer{
		Id:          id,
		Filename:    req.Filename,
		SizeBytes:   req.SizeBytes,
		ContentType: req.ContentType,
		Sender:      req.Sender,
		CreatedAt:   c.now().UTC(),
	}

	ttl := util.SecondsDuration(ctx.Config.Transfers.UploadUrlTtlSeconds)
	uploadUrl, err := c.ds.PresignUpload(ctx, transfer.ObjectKey(), transfer.ContentType, transfer.SizeBytes, ttl)
	if err != nil {
		return nil, c.storageFault(ctx, err)
	}

	if err = c.meta.Put(ctx, id, transfer); err != nil {
		return nil, c.storageFault(ctx, err)
	}

	shareUrl := util.ShareUrl(ctx.Config.General.PublicOrigin, id)
	c.notifier.Notify(ctx, notifier.EventCreated, transfer, shareUrl)

	metrics.TransfersCreated.With(prometheus.Labels{"sender_kind": string(transfer.Sender.Kind())}).Inc()
	metrics.TransferBytesAnnounced.Observe(float64(transfer.SizeBytes))
	ctx.Log.WithFields(logrus.Fields{
		"filename": transfer.Filename,
		"size":     transfer.SizeBytes,
	}).Info("Transfer created")

	return &CreateResult{
		Transfer:  transfer,
		UploadUrl: uploadUrl,
		ShareUrl:  shareUrl,
	}, nil
}

// Resolve looks up a transfer and issues a download URL for it. When upload verification is
// enabled, a transfer whose artifact has not arrived yet returns common.ErrNotYetUploaded.
func (c *Controller) Resolve(ctx rcontext.RequestContext, id string) (*ResolveResult, error) {
	transfer, err := c.lookup(ctx, id)
	if err != nil {
		metrics.TransfersResolved.With(prometheus.Labels{"result": resultLabel(err)}).Inc()
		return nil, err
	}
	ctx = ctx.LogWithFields(logrus.Fields{"transferId": id})

	if ctx.Config.Transfers.VerifyUploadOnResolve {
		if err = c.verifyUploaded(ctx, transfer); err != nil {
			return nil, err
		}
	}

	ttl := util.SecondsDuration(ctx.Config.Transfers.DownloadUrlTtlSeconds)
	downloadUrl, err := c.ds.PresignDownload(ctx, transfer.ObjectKey(), ttl, transfer.Filename)
	if err != nil {
		return nil, c.storageFault(ctx, err)
	}

	metrics.TransfersResolved.With(prometheus.Labels{"result": "ok"}).Inc()
	return &ResolveResult{
		Transfer:    transfer,
		DownloadUrl: downloadUrl,
		ShareUrl:    util.ShareUrl(ctx.Config.General.PublicOrigin, id),
	}, nil
}

// Confirm re-reads the descriptor and notifies the recorded sender. Every call notifies again.
func (c *Controller) Confirm(ctx rcontext.RequestContext, id string) error {
	transfer, err := c.lookup(ctx, id)
	if err != nil {
		return err
	}

	c.notifier.Notify(ctx, notifier.EventConfirmed, transfer, util.ShareUrl(ctx.Config.General.PublicOrigin, id))
	metrics.TransfersConfirmed.Inc()
	ctx.Log.WithField("transferId", id).Info("Transfer receipt confirmed")
	return nil
}

func (c *Controller) verifyUploaded(ctx rcontext.RequestContext, transfer *types.Transfer) error {
	if c.uploadMisses != nil {
		if err := c.uploadMisses.Get(transfer.Id); err != nil {
			metrics.TransfersResolved.With(prometheus.Labels{"result": "not_uploaded"}).Inc()
			return err
		}
	}

	info, err := c.ds.StatObject(ctx, transfer.ObjectKey())
	if err != nil {
		if errors.Is(err, common.ErrObjectNotFound) {
			if c.uploadMisses != nil {
				c.uploadMisses.Set(transfer.Id, common.ErrNotYetUploaded)
			}
			metrics.TransfersResolved.With(prometheus.Labels{"result": "not_uploaded"}).Inc()
			return common.ErrNotYetUploaded
		}
		return c.storageFault(ctx, err)
	}
	if info.SizeBytes != transfer.SizeBytes {
		ctx.Log.Warnf("Stored object is %d bytes but %d bytes were announced", info.SizeBytes, transfer.SizeBytes)
	}
	return nil
}

func (c *Controller) lookup(ctx rcontext.RequestContext, id string) (*types.Transfer, error) {
	if !ids.IsValidTransferId(id) {
		return nil, common.ErrTransferNotFound
	}
	transfer, err := c.meta.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrTransferNotFound) {
			return nil, err
		}
		return nil, c.storageFault(ctx, err)
	}
	return transfer, nil
}

func (c *Controller) storageFault(ctx rcontext.RequestContext, err error) error {
	if !common.IsStorageError(err) {
		err = common.NewStorageError("unknown", "", err)
	}
	ctx.Log.Error("Storage error: ", err)
	sentry.CaptureException(err)
	return err
}

func resultLabel(err error) string {
	if errors.Is(err, common.ErrTransferNotFound) {
		return "not_found"
	}
	return "error"
}
