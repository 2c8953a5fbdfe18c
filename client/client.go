package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/t2bot/transfer-repo/common/version"
	"github.com/t2bot/transfer-repo/types"
	"github.com/t2bot/transfer-repo/util"
	"github.com/t2bot/transfer-repo/util/cleanup"
	"github.com/t2bot/transfer-repo/util/readers"
)

const maxApiResponseBytes = 1024 * 1024

// Client talks to a transfer-repo deployment and moves bytes to and from its object store.
type Client struct {
	baseUrl    string
	httpClient *http.Client
	userAgent  string
}

func New(baseUrl string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseUrl:    strings.TrimSuffix(baseUrl, "/"),
		httpClient: httpClient,
		userAgent:  version.UserAgent(),
	}
}

type CreateRequest struct {
	Filename    string               `json:"filename"`
	Size        int64                `json:"size"`
	ContentType string               `json:"contentType,omitempty"`
	Sender      types.SenderIdentity `json:"sender"`
}

type Created struct {
	Id        string `json:"id"`
	UploadUrl string `json:"uploadUrl"`
	ShareUrl  string `json:"shareUrl"`
}

type Resolved struct {
	Meta        *types.Transfer `json:"meta"`
	DownloadUrl string          `json:"downloadUrl"`
	ShareUrl    string          `json:"shareUrl"`
}

func (c *Client) CreateTransfer(ctx context.Context, req *CreateRequest) (*Created, error) {
	res := &Created{}
	if err := c.callApi(ctx, http.MethodPost, util.MakeUrl(c.baseUrl, "transfer"), req, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Resolve looks a transfer up. Unknown ids return an error wrapping common.ErrTransferNotFound.
func (c *Client) Resolve(ctx context.Context, id string) (*Resolved, error) {
	res := &Resolved{}
	if err := c.callApi(ctx, http.MethodGet, util.MakeUrl(c.baseUrl, "transfer", url.PathEscape(id)), nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Confirm(ctx context.Context, id string) error {
	return c.callApi(ctx, http.MethodPost, util.MakeUrl(c.baseUrl, "transfer", url.PathEscape(id), "confirm"), nil, nil)
}

// Upload sends the artifact to a presigned upload URL in a single PUT. Progress is reported as
// whole percentages, never decreasing, ending at 100 on success.
func (c *Client) Upload(ctx context.Context, uploadUrl string, body io.Reader, size int64, contentType string, onProgress readers.ProgressFunc) error {
	progress := readers.NewUploadProgressReader(body, size, onProgress)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadUrl, progress)
	if err != nil {
		return &TransportError{Err: err}
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer cleanup.DumpAndCloseStream(res.Body)
	if !util.IsSuccessStatus(res.StatusCode) {
		return &TransportError{StatusCode: res.StatusCode, Err: errors.New(res.Status)}
	}
	progress.Complete()
	return nil
}

// Download copies the artifact behind a presigned download URL into w.
func (c *Client) Download(ctx context.Context, downloadUrl string, w io.Writer, size int64, onProgress readers.ProgressFunc) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadUrl, nil)
	if err != nil {
		return 0, &TransportError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &TransportError{Err: err}
	}
	defer cleanup.DumpAndCloseStream(res.Body)
	if !util.IsSuccessStatus(res.StatusCode) {
		return 0, &TransportError{StatusCode: res.StatusCode, Err: errors.New(res.Status)}
	}

	if size <= 0 {
		size = res.ContentLength
	}
	written, err := io.Copy(w, readers.NewProgressReader(res.Body, size, onProgress))
	if err != nil {
		return written, &TransportError{StatusCode: res.StatusCode, Err: err}
	}
	return written, nil
}

func (c *Client) callApi(ctx context.Context, method string, target string, body interface{}, into interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return &TransportError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer cleanup.DumpAndCloseStream(res.Body)

	b, err := io.ReadAll(io.LimitReader(res.Body, maxApiResponseBytes))
	if err != nil {
		return &TransportError{StatusCode: res.StatusCode, Err: err}
	}
	if !util.IsSuccessStatus(res.StatusCode) {
		apiErr := &apiError{kind: kindForStatus(res.StatusCode)}
		if jsonErr := json.Unmarshal(b, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = res.Status
		}
		return &TransportError{StatusCode: res.StatusCode, Err: apiErr}
	}

	if into == nil {
		return nil
	}
	if err = json.Unmarshal(b, into); err != nil {
		return &TransportError{StatusCode: res.StatusCode, Err: err}
	}
	return nil
}
