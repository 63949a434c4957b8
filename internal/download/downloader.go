package download

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/esoctl/internal/addons"
	"github.com/bnema/esoctl/internal/catalog"
	"github.com/bnema/esoctl/internal/reconcile"
)

var (
	ErrChecksumDecode   = errors.New("invalid checksum in file details")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrInvalidFileName  = errors.New("invalid archive file name")
	ErrNoDownloadURI    = errors.New("file details have no download URI")
)

// DetailsLookup resolves per-item download details by catalog id
type DetailsLookup interface {
	FileDetails(ctx context.Context, id int) ([]catalog.FileDetails, error)
}

// HTTPClient is the subset of *http.Client the downloader needs
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProgressFunc reports bytes written for the item being downloaded
type ProgressFunc func(downloaded, total int64)

// Status is the outcome of one planned item
type Status int

const (
	StatusFailed Status = iota
	StatusDownloaded
	StatusAlreadyDownloaded
	StatusPlanned // Dry run: nothing fetched
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusAlreadyDownloaded:
		return "already downloaded"
	case StatusPlanned:
		return "planned"
	default:
		return "failed"
	}
}

// ItemResult is the outcome of one planned item
type ItemResult struct {
	Path    string // Normalized install path
	Entry   catalog.Entry
	Details *catalog.FileDetails
	Archive string // Location in the download cache
	Status  Status
	Err     error
}

// RunResult collects the outcome of a whole run
type RunResult struct {
	Items []ItemResult
}

// Failed returns the items that failed
func (r *RunResult) Failed() []ItemResult {
	var out []ItemResult
	for _, it := range r.Items {
		if it.Status == StatusFailed {
			out = append(out, it)
		}
	}
	return out
}

// Count returns the number of items with a status
func (r *RunResult) Count(s Status) int {
	n := 0
	for _, it := range r.Items {
		if it.Status == s {
			n++
		}
	}
	return n
}

// Downloader fetches replacement archives for outdated installs
type Downloader struct {
	httpClient  HTTPClient
	details     DetailsLookup
	downloadDir string
	store       *addons.StoreManager
	installer   Installer
	progress    ProgressFunc
	dryRun      bool
	log         *log.Logger
}

// Option configures a Downloader
type Option func(*Downloader)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c HTTPClient) Option {
	return func(d *Downloader) {
		if c != nil {
			d.httpClient = c
		}
	}
}

// WithStore records every fetched archive in the download store
func WithStore(s *addons.StoreManager) Option {
	return func(d *Downloader) {
		d.store = s
	}
}

// WithInstaller sets the collaborator that receives downloaded archives
func WithInstaller(i Installer) Option {
	return func(d *Downloader) {
		if i != nil {
			d.installer = i
		}
	}
}

// WithProgressFunc sets the progress callback
func WithProgressFunc(fn ProgressFunc) Option {
	return func(d *Downloader) {
		d.progress = fn
	}
}

// WithDryRun resolves details but never touches the download cache
func WithDryRun(dryRun bool) Option {
	return func(d *Downloader) {
		d.dryRun = dryRun
	}
}

// New creates a Downloader writing into downloadDir
func New(downloadDir string, details DetailsLookup, logger *log.Logger, opts ...Option) *Downloader {
	d := &Downloader{
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
		details:     details,
		downloadDir: downloadDir,
		installer:   KeepArchive{Logger: logger},
		log:         logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetProgressFunc replaces the progress callback between items
func (d *Downloader) SetProgressFunc(fn ProgressFunc) {
	d.progress = fn
}

// Run processes every planned item in path order. A failing item never
// stops the remaining ones; only cancellation of ctx does.
func (d *Downloader) Run(ctx context.Context, plan reconcile.Plan) *RunResult {
	result := &RunResult{}

	for _, path := range plan.Paths() {
		if err := ctx.Err(); err != nil {
			result.Items = append(result.Items, ItemResult{
				Path:   path,
				Entry:  plan[path].Entry,
				Status: StatusFailed,
				Err:    err,
			})
			continue
		}
		result.Items = append(result.Items, d.Process(ctx, path, plan[path]))
	}

	d.SaveStore()
	return result
}

// SaveStore persists the download store, if one is attached
func (d *Downloader) SaveStore() {
	if d.store == nil || d.dryRun {
		return
	}
	if err := d.store.Save(); err != nil {
		d.log.Warn("Failed to save download store", "error", err)
	}
}

// Process handles a single planned item
func (d *Downloader) Process(ctx context.Context, path string, item reconcile.PlanItem) ItemResult {
	res := ItemResult{Path: path, Entry: item.Entry, Status: StatusFailed}

	details, err := d.details.FileDetails(ctx, item.Entry.ID)
	if err != nil {
		res.Err = fmt.Errorf("failed to resolve details for %d: %w", item.Entry.ID, err)
		d.log.Error("Details lookup failed", "path", path, "id", item.Entry.ID, "error", err)
		return res
	}
	if len(details) == 0 {
		res.Err = fmt.Errorf("%w: id %d", catalog.ErrNoDetails, item.Entry.ID)
		return res
	}
	res.Details = &details[0]

	archive, err := d.archivePath(path, item.Install, res.Details.FileName)
	if err != nil {
		res.Err = err
		return res
	}
	res.Archive = archive

	if d.dryRun {
		res.Status = StatusPlanned
		return res
	}

	status, err := d.fetch(ctx, archive, res.Details)
	if err != nil {
		res.Err = err
		d.log.Error("Download failed", "path", path, "id", item.Entry.ID, "error", err)
		return res
	}
	res.Status = status

	if d.store != nil {
		d.store.Set(path, addons.DownloadRecord{
			ID:           item.Entry.ID,
			Title:        item.Entry.Title,
			Version:      res.Details.Version.String(),
			Checksum:     strings.ToLower(res.Details.Checksum),
			Archive:      archive,
			DownloadedAt: time.Now(),
		})
	}

	if err := d.installer.InstallArchive(ctx, archive); err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("failed to install archive: %w", err)
		return res
	}

	return res
}

// archivePath computes downloadDir/<local directory name>/<file name>
func (d *Downloader) archivePath(path string, install *addons.InstalledAddon, fileName string) (string, error) {
	dirName := path
	if install != nil && install.Name != "" {
		dirName = install.Name
	}
	dirName = filepath.Base(dirName)

	base := filepath.Base(strings.ReplaceAll(fileName, `\`, "/"))
	if fileName == "" || base == "." || base == ".." || base == "/" || dirName == "." || dirName == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, fileName)
	}

	return filepath.Join(d.downloadDir, dirName, base), nil
}

// fetch verifies an existing archive and downloads it when missing or stale.
// The checksum is decoded first; a fetched file must be verified against it.
func (d *Downloader) fetch(ctx context.Context, archive string, details *catalog.FileDetails) (Status, error) {
	expected, err := decodeChecksum(details.Checksum)
	if err != nil {
		return StatusFailed, err
	}

	if _, err := os.Stat(archive); err == nil {
		ok, err := VerifyFile(archive, expected)
		if err != nil {
			return StatusFailed, err
		}
		if ok {
			d.log.Debug("Archive already downloaded", "path", archive)
			return StatusAlreadyDownloaded, nil
		}
		d.log.Debug("Cached archive is stale, re-fetching", "path", archive)
	}

	if details.DownloadURI == "" {
		return StatusFailed, ErrNoDownloadURI
	}

	if err := d.stream(ctx, details.DownloadURI, archive); err != nil {
		return StatusFailed, err
	}

	ok, err := VerifyFile(archive, expected)
	if err != nil {
		return StatusFailed, err
	}
	if !ok {
		_ = os.Remove(archive)
		return StatusFailed, fmt.Errorf("%w: %s", ErrChecksumMismatch, filepath.Base(archive))
	}

	return StatusDownloaded, nil
}

// stream writes the response body to archive as bytes arrive
func (d *Downloader) stream(ctx context.Context, uri, archive string) error {
	if err := os.MkdirAll(filepath.Dir(archive), 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	d.log.Debug("Starting download", "url", uri, "path", archive)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	tmpPath := archive + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	var src io.Reader = resp.Body
	if d.progress != nil {
		src = &progressReader{r: resp.Body, total: resp.ContentLength, report: d.progress}
	}

	written, err := io.Copy(out, src)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}

	d.log.Debug("Download complete", "bytes_written", written)

	if err := os.Rename(tmpPath, archive); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move file: %w", err)
	}
	return nil
}

// decodeChecksum turns the hex checksum of a detail record into a digest
func decodeChecksum(s string) ([]byte, error) {
	sum, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChecksumDecode, err)
	}
	if len(sum) != md5.Size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrChecksumDecode, md5.Size, len(sum))
	}
	return sum, nil
}

// VerifyFile reports whether the MD5 digest of the file equals expected
func VerifyFile(path string, expected []byte) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = file.Close() }()

	hasher := md5.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return false, fmt.Errorf("failed to hash archive: %w", err)
	}
	return bytes.Equal(hasher.Sum(nil), expected), nil
}

type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.report(p.read, p.total)
	}
	return n, err
}
