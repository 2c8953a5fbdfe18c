package client

import (
	"context"
	"errors"

	"github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/bundler"
	"github.com/t2bot/transfer-repo/types"
	"github.com/t2bot/transfer-repo/util"
	"github.com/t2bot/transfer-repo/util/readers"
)

type State string

const (
	StateCollectingInput State = "collecting-input"
	StateBundling        State = "bundling"
	StateRequestingUrl   State = "requesting-url"
	StateUploading       State = "uploading"
	StateComplete        State = "complete"
	StateFailed          State = "failed"
)

var ErrMissingSender = errors.New("a sender email address or name is required")

type SendOptions struct {
	Selection bundler.Selection
	Sender    types.SenderIdentity
	Bundle    bundler.Options

	OnState    func(state State)
	OnProgress readers.ProgressFunc
}

type SendResult struct {
	Created  *Created
	Filename string
	Size     int64
}

// Send runs the whole sending side: bundle the selection, announce it, then upload it. Any
// failure moves to StateFailed and the transfer must be retried from the start.
func (c *Client) Send(ctx context.Context, fs billy.Filesystem, opts SendOptions) (*SendResult, error) {
	setState := func(s State) {
		logrus.Debug("Send state: ", s)
		if opts.OnState != nil {
			opts.OnState(s)
		}
	}
	fail := func(err error) (*SendResult, error) {
		setState(StateFailed)
		return nil, err
	}

	setState(StateCollectingInput)
	if opts.Sender.IsZero() {
		return fail(ErrMissingSender)
	}
	if len(opts.Selection.Files) == 0 && len(opts.Selection.Dirs) == 0 {
		return fail(bundler.ErrEmptySelection)
	}

	setState(StateBundling)
	bundleOpts := opts.Bundle
	if bundleOpts.Label == "" {
		bundleOpts.Label = opts.Sender.String()
	}
	bundle, err := bundler.Build(ctx, fs, opts.Selection, bundleOpts)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := bundle.Close(); err != nil {
			logrus.Warn("Error cleaning up bundle: ", err)
		}
	}()

	setState(StateRequestingUrl)
	created, err := c.CreateTransfer(ctx, &CreateRequest{
		Filename:    bundle.Filename,
		Size:        bundle.SizeBytes,
		ContentType: bundle.ContentType,
		Sender:      opts.Sender,
	})
	if err != nil {
		return fail(err)
	}
	logrus.WithField("transferId", created.Id).Debug("Uploading to ", util.LogSafeUrl(created.UploadUrl))

	setState(StateUploading)
	body, err := bundle.Reader()
	if err != nil {
		return fail(err)
	}
	if err = c.Upload(ctx, created.UploadUrl, body, bundle.SizeBytes, bundle.ContentType, opts.OnProgress); err != nil {
		return fail(err)
	}

	setState(StateComplete)
	return &SendResult{
		Created:  created,
		Filename: bundle.Filename,
		Size:     bundle.SizeBytes,
	}, nil
}
