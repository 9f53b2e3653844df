package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"github.com/five82/folio/internal/gallery"
)

// ObjectClient is the subset of *minio.Client the backend uses.
type ObjectClient interface {
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Fetcher downloads upload sources. *http.Client satisfies it.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	defaultContentType = "application/octet-stream"
	presignExpiry      = 7 * 24 * time.Hour
	maxUploadBytes     = 20 << 20

	metaTitle       = "title"
	metaDescription = "description"
)

// MinioOptions configure NewMinio.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Folders   []string
	Logger    logrus.FieldLogger
}

// Minio stores images as objects under RootPrefix in one bucket.
type Minio struct {
	client  ObjectClient
	bucket  string
	fetch   Fetcher
	folders []string
	log     logrus.FieldLogger
	now     func() time.Time
}

var _ Backend = (*Minio)(nil)

// NewMinio connects to an S3-compatible endpoint.
func NewMinio(opts MinioOptions) (*Minio, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", opts.Endpoint, err)
	}
	return NewMinioWithClient(client, opts.Bucket, &http.Client{Timeout: 30 * time.Second}, opts.Folders, opts.Logger), nil
}

// NewMinioWithClient builds the backend on an existing client.
func NewMinioWithClient(client ObjectClient, bucket string, fetch Fetcher, folders []string, logger logrus.FieldLogger) *Minio {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Minio{
		client:  client,
		bucket:  bucket,
		fetch:   fetch,
		folders: append([]string(nil), folders...),
		log:     logger.WithField("component", "media"),
		now:     time.Now,
	}
}

// List implements Backend.
func (m *Minio) List(ctx context.Context, folder string) ([]gallery.Image, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:       folderPrefix(folder),
		Recursive:    true,
		WithMetadata: true,
	})

	var images []gallery.Image
	for object := range objects {
		if object.Err != nil {
			return nil, fmt.Errorf("list %s: %w", folder, object.Err)
		}
		if strings.HasSuffix(object.Key, "/") {
			continue
		}
		link, err := m.client.PresignedGetObject(ctx, m.bucket, object.Key, presignExpiry, nil)
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", object.Key, err)
		}
		title := metaValue(object.UserMetadata, metaTitle)
		if title == "" {
			title = UntitledTitle
		}
		images = append(images, gallery.Image{
			ID:          object.Key,
			Title:       title,
			URL:         link.String(),
			Description: metaValue(object.UserMetadata, metaDescription),
			CreatedAt:   object.LastModified,
			Category:    folder,
		})
	}
	sort.SliceStable(images, func(i, j int) bool { return images[i].CreatedAt.After(images[j].CreatedAt) })
	if images == nil {
		images = []gallery.Image{}
	}
	return images, nil
}

// Upload implements Backend. The source URL is downloaded and stored; the
// returned record points at a presigned URL of the stored copy.
func (m *Minio) Upload(ctx context.Context, folder string, fields gallery.Fields) (gallery.Image, error) {
	if err := gallery.ValidateCategory(folder); err != nil {
		return gallery.Image{}, err
	}
	if err := gallery.Validate(fields); err != nil {
		return gallery.Image{}, err
	}
	fields = fields.Normalize()

	body, contentType, err := m.download(ctx, fields.URL)
	if err != nil {
		return gallery.Image{}, err
	}

	key := folderPrefix(folder) + gallery.NewID()
	_, err = m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			metaTitle:       fields.Title,
			metaDescription: fields.Description,
		},
	})
	if err != nil {
		return gallery.Image{}, fmt.Errorf("put %s: %w", key, err)
	}

	link, err := m.client.PresignedGetObject(ctx, m.bucket, key, presignExpiry, nil)
	if err != nil {
		return gallery.Image{}, fmt.Errorf("presign %s: %w", key, err)
	}
	m.log.WithFields(logrus.Fields{"key": key, "bytes": len(body)}).Info("image uploaded")
	return gallery.Image{
		ID:          key,
		Title:       fields.Title,
		URL:         link.String(),
		Description: fields.Description,
		CreatedAt:   m.now(),
		Category:    folder,
	}, nil
}

func (m *Minio) download(ctx context.Context, source string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create source request: %w", err)
	}
	resp, err := m.fetch.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch source: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("fetch source: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read source: %w", err)
	}
	if len(body) > maxUploadBytes {
		return nil, "", fmt.Errorf("source larger than %d bytes", maxUploadBytes)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	return body, contentType, nil
}

// Delete implements Backend.
func (m *Minio) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, m.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	m.log.WithField("key", id).Info("image removed")
	return nil
}

// Categories implements Backend. Configured folders come first, followed by
// any other folder found in the bucket.
func (m *Minio) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	seen := make(map[string]bool, len(m.folders))
	out := make([]string, 0, len(m.folders))
	for _, f := range m.folders {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}

	var extra []string
	for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: RootPrefix}) {
		if object.Err != nil {
			return nil, fmt.Errorf("list folders: %w", object.Err)
		}
		if !strings.HasSuffix(object.Key, "/") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(object.Key, RootPrefix), "/")
		if name == "" || strings.Contains(name, "/") || seen[name] {
			continue
		}
		seen[name] = true
		extra = append(extra, name)
	}
	sort.Strings(extra)
	return append(out, extra...), nil
}

// metaValue looks a user metadata entry up regardless of how the server
// spelled the key.
func metaValue(meta map[string]string, name string) string {
	for k, v := range meta {
		k = strings.ToLower(k)
		if k == name || k == "x-amz-meta-"+name {
			return v
		}
	}
	return ""
}
