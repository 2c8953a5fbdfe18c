package transfer_controller

import (
	"mime"
	"strings"
	"unicode"

	"github.com/alioygur/is"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/types"
)

const maxFilenameLength = 255

// validateCreate checks a create request against the deployment's transfer limits. It runs before
// anything touches storage. Field problems are reported before the size ceiling. The returned
// request only differs from the input by its defaulted content type.
func validateCreate(conf config.TransfersConfig, req *CreateRequest) (*CreateRequest, error) {
	normalised := *req

	if err := validateFilename(req.Filename); err != nil {
		return nil, err
	}

	if req.SizeBytes <= 0 {
		return nil, common.NewValidationError("size", "must be a positive number of bytes")
	}

	normalised.ContentType = strings.TrimSpace(req.ContentType)
	if normalised.ContentType == "" {
		normalised.ContentType = types.DefaultContentType
	} else if _, _, err := mime.ParseMediaType(normalised.ContentType); err != nil {
		return nil, common.NewValidationError("contentType", "is not a valid media type")
	}

	if err := validateSender(conf, req.Sender); err != nil {
		return nil, err
	}

	if req.SizeBytes > maxSizeBytes(conf) {
		return nil, &common.ValidationError{
			Field:   "size",
			Message: "exceeds the maximum transfer size",
			Err:     common.ErrTransferTooLarge,
		}
	}
	return &normalised, nil
}

func maxSizeBytes(conf config.TransfersConfig) int64 {
	if conf.MaxSizeBytes <= 0 || conf.MaxSizeBytes > config.MaxTransferSizeBytes {
		return config.MaxTransferSizeBytes
	}
	return conf.MaxSizeBytes
}

func validateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return common.NewValidationError("filename", "is required")
	}
	if hasSurroundingSpace(name) {
		return common.NewValidationError("filename", "must not start or end with whitespace")
	}
	if len(name) > maxFilenameLength {
		return common.NewValidationError("filename", "is too long")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return common.NewValidationError("filename", "must be a base name without path separators")
	}
	if name == types.MetadataFilename {
		return common.NewValidationError("filename", "is reserved")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return common.NewValidationError("filename", "must not contain control characters")
		}
	}
	return nil
}

func validateSender(conf config.TransfersConfig, sender types.SenderIdentity) error {
	if sender.IsZero() {
		return common.NewValidationError("sender", "an email address or display name is required")
	}

	if hasSurroundingSpace(sender.String()) {
		return common.NewValidationError("sender", "must not start or end with whitespace")
	}

	switch sender.Kind() {
	case types.SenderKindEmail:
		if conf.SenderKind == config.SenderKindName {
			return common.NewValidationError("sender", "a display name is required")
		}
		addr, _ := sender.Email()
		if !is.Email(addr) || strings.ContainsAny(addr, " \t") {
			return common.NewValidationError("sender.email", "is not a valid email address")
		}
	case types.SenderKindName:
		if conf.SenderKind == config.SenderKindEmail {
			return common.NewValidationError("sender", "an email address is required")
		}
	}
	return nil
}

func hasSurroundingSpace(s string) bool {
	return strings.TrimSpace(s) != s
}
