package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/bundler"
	"github.com/t2bot/transfer-repo/client"
	"github.com/t2bot/transfer-repo/common/version"
	"github.com/t2bot/transfer-repo/types"
)

func main() {
	serverUrl := flag.String("server", "http://localhost:8000", "The transfer repository to send through")
	email := flag.String("email", "", "Your email address, to be told when the transfer is ready")
	name := flag.String("name", "", "Your name, when not giving an email address")
	forceZip := flag.Bool("zip", false, "Archive the selection even when it is a single file")
	tempDir := flag.String("temp", os.TempDir(), "Where to build archives before uploading")
	debug := flag.Bool("debug", false, "Enables debug logging")
	versionFlag := flag.Bool("version", false, "Prints the version and exits")
	flag.Parse()

	if *versionFlag {
		version.Print(false)
		return // exit 0
	}
	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if flag.NArg() == 0 {
		logrus.Fatal("Usage: transfer_send [flags] <file or directory>...")
	}

	var sender types.SenderIdentity
	if addr := strings.TrimSpace(*email); addr != "" {
		sender = types.EmailSender(addr)
	} else {
		sender = types.DisplayNameSender(strings.TrimSpace(*name))
	}

	selection := bundler.Selection{}
	for _, arg := range flag.Args() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			logrus.Fatal(err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			logrus.Fatal(err)
		}
		if info.IsDir() {
			selection.Dirs = append(selection.Dirs, filepath.ToSlash(abs))
		} else {
			selection.Files = append(selection.Files, filepath.ToSlash(abs))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	c := client.New(*serverUrl, nil)
	res, err := c.Send(ctx, osfs.New("/", osfs.WithBoundOS()), client.SendOptions{
		Selection: selection,
		Sender:    sender,
		Bundle: bundler.Options{
			ForceZip: *forceZip,
			TempDir:  *tempDir,
		},
		OnState: func(state client.State) {
			logrus.Info("State: ", state)
		},
		OnProgress: func(percent int) {
			fmt.Printf("\rUploading... %d%%", percent)
			if percent == 100 {
				fmt.Println()
			}
		},
	})
	if err != nil {
		logrus.Fatal(err)
	}

	fmt.Printf("Sent %s (%s)\n", res.Filename, humanize.Bytes(uint64(res.Size)))
	fmt.Println("Share this link: " + res.Created.ShareUrl)
}
