package templating

import (
	"github.com/dustin/go-humanize"
)

type TransferAvailableModel struct {
	Filename       string
	SizeBytes      int64
	SizeBytesHuman string
	ShareUrl       string
	LinkExpiryDays int
}

func NewTransferAvailableModel(filename string, sizeBytes int64, shareUrl string, linkExpiryDays int) *TransferAvailableModel {
	return &TransferAvailableModel{
		Filename:       filename,
		SizeBytes:      sizeBytes,
		SizeBytesHuman: humanize.Bytes(uint64(sizeBytes)),
		ShareUrl:       shareUrl,
		LinkExpiryDays: linkExpiryDays,
	}
}
