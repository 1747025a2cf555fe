// Command ninefsd serves one 9P2000 client at a time over a Unix
// domain socket, keeping its entire file tree in memory. Grounded on
// mars9-ramfs's cmd/ramfs/main.go (flag/env-based CLI, single daemon
// process serving one filesystem) and droyo-styx/server.go's
// retry-backed accept loop, adapted to hand the single in-memory tree
// from one finished connection to the next rather than running
// connections concurrently (SPEC_FULL.md section 5 is single-client
// by construction).
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"aqwari.net/retry"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/styxfs/ninefs/server"
	"github.com/styxfs/ninefs/tree"
)

const usageMsg = `
ninefsd serves a single, entirely in-memory 9P2000 file tree over a
Unix domain socket. Only one client is served at a time; the tree
persists across connections for the lifetime of the process.
`

func main() {
	sockPath := flag.String("sock", "", "path to the Unix domain socket to listen on (required)")
	uid := flag.String("uid", os.Getenv("NINEFS_USER"), "owner of the tree's root directory (default: $NINEFS_USER)")
	verbose := flag.Bool("v", false, "enable debug-level logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -sock <path> [options]\n", os.Args[0])
		fmt.Fprint(os.Stderr, usageMsg)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *sockPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *uid == "" {
		*uid = "none"
	}

	if err := run(*sockPath, *uid, log); err != nil {
		log.WithError(err).Error("ninefsd: fatal")
		os.Exit(1)
	}
}

func run(sockPath, uid string, log *logrus.Logger) error {
	if err := removeStaleSocket(sockPath); err != nil {
		return err
	}
	l, err := net.Listen("unix", sockPath)
	if err != nil {
		return err
	}
	defer l.Close()

	log.WithField("sock", sockPath).Info("listening")
	return serveOn(l, uid, log)
}

// serveOn runs the accept loop against an already-bound listener,
// split out from run so tests can drive it over an in-process
// listener instead of a real Unix socket.
func serveOn(l net.Listener, uid string, log *logrus.Logger) error {
	t := tree.New(uid, tree.SystemClock)

	type tempErr interface {
		Temporary() bool
	}
	backoff := retry.Exponential(time.Millisecond).Max(time.Second)
	try := 0

	for {
		rwc, err := l.Accept()
		if err != nil {
			if terr, ok := err.(tempErr); ok && terr.Temporary() {
				try++
				wait := backoff(try)
				log.WithError(err).Warnf("accept error, retrying in %v", wait)
				time.Sleep(wait)
				continue
			}
			return err
		}
		try = 0

		log.Info("client connected")
		entry := logrus.NewEntry(log)
		conn := server.NewConn(rwc, t, entry)
		returnedTree, serveErr := conn.Serve(context.Background())
		if serveErr != nil {
			log.WithError(serveErr).Warn("connection ended")
		} else {
			log.Info("client disconnected")
		}
		t = returnedTree
	}
}

func removeStaleSocket(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.Remove(path)
}
