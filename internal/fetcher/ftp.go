package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures the FTP fetcher.
type FTPOptions struct {
	Timeout  time.Duration
	User     string
	Password string
}

// FTPFetcher retrieves documents from an FTP server. Some provincial
// agencies still publish certificate archives this way.
type FTPFetcher struct {
	opts FTPOptions
}

// NewFTPFetcher creates a new FTPFetcher with the given options.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.User == "" {
		opts.User = "anonymous"
		opts.Password = "anonymous@"
	}
	return &FTPFetcher{opts: opts}
}

// parseFTPBucket extracts host (with port) and base path from an FTP bucket URL.
func parseFTPBucket(bucket string) (host string, base string, err error) {
	u, err := url.Parse(bucket)
	if err != nil {
		return "", "", eris.Wrap(err, "ftp: parse bucket url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("ftp: expected ftp scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return "", "", eris.New("ftp: empty host in bucket url")
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}
	return host, u.Path, nil
}

// Fetch connects, logs in, retrieves bucket-base/path and returns its bytes.
func (f *FTPFetcher) Fetch(ctx context.Context, bucket, path string) ([]byte, error) {
	host, base, err := parseFTPBucket(bucket)
	if err != nil {
		return nil, err
	}
	full := strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")

	zap.L().Debug("ftp: connecting", zap.String("host", host), zap.String("path", full))

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "ftp: dial")
	}
	defer conn.Quit() //nolint:errcheck

	if err := conn.Login(f.opts.User, f.opts.Password); err != nil {
		return nil, eris.Wrap(err, "ftp: login")
	}

	resp, err := conn.Retr(full)
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: retrieve %s", full)
	}
	defer resp.Close() //nolint:errcheck

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: read %s", full)
	}
	return data, nil
}
