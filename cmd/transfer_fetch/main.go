package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/client"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/version"
)

func main() {
	serverUrl := flag.String("server", "http://localhost:8000", "The transfer repository to fetch from")
	outDir := flag.String("out", ".", "Directory to save the file into")
	confirm := flag.Bool("confirm", true, "Tell the sender once the file has been received")
	versionFlag := flag.Bool("version", false, "Prints the version and exits")
	flag.Parse()

	if *versionFlag {
		version.Print(false)
		return // exit 0
	}
	if flag.NArg() != 1 {
		logrus.Fatal("Usage: transfer_fetch [flags] <transfer id>")
	}
	id := flag.Arg(0)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	c := client.New(*serverUrl, nil)
	resolved, err := c.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrTransferNotFound) {
			logrus.Fatal("No transfer exists with that id")
		}
		if errors.Is(err, common.ErrNotYetUploaded) {
			logrus.Fatal("The sender has not finished uploading yet, try again later")
		}
		logrus.Fatal(err)
	}

	meta := resolved.Meta
	fmt.Printf("%s (%s) from %s, sent %s\n", meta.Filename, humanize.Bytes(uint64(meta.SizeBytes)), meta.Sender.String(), humanize.Time(meta.CreatedAt))

	target := filepath.Join(*outDir, filepath.Base(meta.Filename))
	f, err := os.Create(target)
	if err != nil {
		logrus.Fatal(err)
	}
	_, err = c.Download(ctx, resolved.DownloadUrl, f, meta.SizeBytes, func(percent int) {
		fmt.Printf("\rDownloading... %d%%", percent)
		if percent == 100 {
			fmt.Println()
		}
	})
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(target)
		logrus.Fatal(err)
	}
	fmt.Println("Saved to " + target)

	if *confirm {
		if err = c.Confirm(ctx, id); err != nil {
			logrus.Warn("Could not confirm receipt: ", err)
		}
	}
}
