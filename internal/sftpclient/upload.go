// Package sftpclient publishes generated artifacts to the web host.
package sftpclient

import (
	"context"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"course-promo/internal/concurrency"
)

const (
	dialTimeout = 20 * time.Second

	// uploadWorkers is the number of files written concurrently over the
	// one SFTP session.
	uploadWorkers = 4
)

type Config struct {
	Host      string
	Port      int
	User      string
	Pass      string
	RemoteDir string

	// KnownHostsFile verifies the server key. Without it the connection is
	// refused unless InsecureIgnoreHostKey is set.
	KnownHostsFile        string
	InsecureIgnoreHostKey bool
}

func (c Config) withDefaults() Config {
	if c.Port <= 0 {
		c.Port = 22
	}
	if c.RemoteDir == "" {
		c.RemoteDir = "/"
	}
	return c
}

func (c Config) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if c.KnownHostsFile != "" {
		cb, err := knownhosts.New(c.KnownHostsFile)
		if err != nil {
			return nil, errors.Wrapf(err, "sftp: load known hosts %s", c.KnownHostsFile)
		}
		return cb, nil
	}
	if c.InsecureIgnoreHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	return nil, errors.WithHint(
		errors.New("sftp: no host key verification configured"),
		"set SFTP_KNOWN_HOSTS, or SFTP_INSECURE=true for a trusted network",
	)
}

// UploadFiles copies each local file into cfg.RemoteDir under its base name,
// over a single connection. A failed file does not stop the others; it
// returns how many were uploaded and the first error in input order.
func UploadFiles(ctx context.Context, cfg Config, localPaths []string, log *zap.Logger) (int, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return 0, errors.WithHint(
			errors.New("sftp: missing host, user or password"),
			"set SFTP_HOST, SFTP_USER and SFTP_PASS",
		)
	}
	if len(localPaths) == 0 {
		return 0, nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	cb, err := cfg.hostKeyCallback()
	if err != nil {
		return 0, err
	}
	sshClient, err := dial(ctx, cfg, cb)
	if err != nil {
		return 0, err
	}
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return 0, errors.Wrap(err, "sftp: new client")
	}
	defer client.Close()

	return uploadAll(ctx, client, cfg.RemoteDir, localPaths, log)
}

func dial(ctx context.Context, cfg Config, cb ssh.HostKeyCallback) (*ssh.Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Pass)},
		HostKeyCallback: cb,
		Timeout:         dialTimeout,
	}

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "sftp: dial %s", addr)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshCfg)
	if err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "sftp: handshake %s", addr)
	}
	return ssh.NewClient(c, chans, reqs), nil
}

func uploadAll(ctx context.Context, client *sftp.Client, remoteDir string, localPaths []string, log *zap.Logger) (int, error) {
	if err := client.MkdirAll(remoteDir); err != nil {
		return 0, errors.Wrapf(err, "sftp: mkdir %s", remoteDir)
	}

	var uploaded atomic.Int32
	errs := concurrency.ForEach(ctx, localPaths, concurrency.Options{MaxWorkers: uploadWorkers}, func(_ context.Context, _ int, p string) error {
		remote := path.Join(remoteDir, filepath.Base(p))
		if err := put(client, p, remote); err != nil {
			return err
		}
		uploaded.Add(1)
		log.Debug("uploaded", zap.String("path", p), zap.String("remote", remote))
		return nil
	})
	return int(uploaded.Load()), concurrency.FirstError(errs)
}

func put(client *sftp.Client, localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return errors.Wrap(err, "sftp: open local file")
	}
	defer src.Close()

	dst, err := client.Create(remotePath)
	if err != nil {
		return errors.Wrapf(err, "sftp: create %s", remotePath)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.Wrapf(err, "sftp: copy to %s", remotePath)
	}
	return errors.Wrapf(dst.Close(), "sftp: close %s", remotePath)
}
