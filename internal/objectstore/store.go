// Package objectstore uploads achievement images to an S3-compatible bucket
// through presigned PUT URLs and deletes them again by token.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/dmitrijs2005/lifetrack/internal/netx"
)

// probeExtensions are tried in order when deleting by token, since the
// stored token carries no extension.
var probeExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
)

type presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type objectAPI interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store uploads and deletes image objects.
type Store struct {
	cfg        Config
	presigner  presigner
	objects    objectAPI
	httpClient *http.Client
	log        logging.Logger
	now        func() time.Time
}

// New builds a Store from static credentials.
func New(ctx context.Context, cfg Config, log logging.Logger) (*Store, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.endpoint())
		o.UsePathStyle = true
	})

	return newStore(cfg, newS3PresignClient(client), client, &http.Client{Timeout: time.Minute}, log), nil
}

func newStore(cfg Config, p presigner, o objectAPI, hc *http.Client, log logging.Logger) *Store {
	return &Store{
		cfg:        cfg.withDefaults(),
		presigner:  p,
		objects:    o,
		httpClient: hc,
		log:        log.With("module", "objectstore"),
		now:        time.Now,
	}
}

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewToken returns the wall-clock milliseconds followed by nine random
// base-36 characters.
func NewToken(now time.Time) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	for i := 0; i < 9; i++ {
		b.WriteByte(tokenAlphabet[rand.IntN(len(tokenAlphabet))])
	}
	return b.String()
}

func (s *Store) key(token, ext string) string {
	return s.cfg.Namespace + "/" + token + "." + ext
}

// UploadOne stores file under a fresh token and returns its public URL.
func (s *Store) UploadOne(ctx context.Context, file models.ImageFile) (models.UploadedImage, error) {
	token := NewToken(s.now())
	key := s.key(token, extension(file.Name))

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.cfg.PresignExpiry))
	if err != nil {
		return models.UploadedImage{}, fmt.Errorf("%w: presign %s: %v", common.ErrUploadFailure, key, err)
	}

	if err := s.put(ctx, req, contentType, file.Data); err != nil {
		return models.UploadedImage{}, fmt.Errorf("%w: %s: %v", common.ErrUploadFailure, key, err)
	}

	s.log.Debug(ctx, "image uploaded", "key", key)
	return models.UploadedImage{URL: s.cfg.publicBase() + "/" + key, Token: token}, nil
}

func (s *Store) put(ctx context.Context, presigned *v4.PresignedHTTPRequest, contentType string, data []byte) error {
	return netx.UploadToPresignedURL(ctx, s.httpClient, netx.PresignedRequest{
		Method: presigned.Method,
		URL:    presigned.URL,
		Header: presigned.SignedHeader,
	}, contentType, data)
}

// UploadMany uploads files one after another, preserving order. When one
// fails, objects already uploaded by this call are removed best-effort.
func (s *Store) UploadMany(ctx context.Context, files []models.ImageFile) ([]models.UploadedImage, error) {
	out := make([]models.UploadedImage, 0, len(files))
	for _, f := range files {
		u, err := s.UploadOne(ctx, f)
		if err != nil {
			tokens := make([]string, 0, len(out))
			for _, done := range out {
				tokens = append(tokens, done.Token)
			}
			if derr := s.DeleteMany(ctx, tokens); derr != nil {
				s.log.Warn(ctx, "cleanup after failed upload incomplete", "error", derr)
			}
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// DeleteOne removes the object for token, probing the known image
// extensions. It fails with common.ErrStorageFailure when none exists.
func (s *Store) DeleteOne(ctx context.Context, token string) error {
	for _, ext := range probeExtensions {
		key := s.key(token, ext)
		_, err := s.objects.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(key),
		})
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: head %s: %v", common.ErrStorageFailure, key, err)
		}

		if _, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("%w: delete %s: %v", common.ErrStorageFailure, key, err)
		}
		s.log.Debug(ctx, "image deleted", "key", key)
		return nil
	}
	return fmt.Errorf("%w: no object for token %s", common.ErrStorageFailure, token)
}

// DeleteMany deletes every token in turn. Failures are logged and joined;
// one failure does not stop the rest.
func (s *Store) DeleteMany(ctx context.Context, tokens []string) error {
	var errs []error
	for _, t := range tokens {
		if err := s.DeleteOne(ctx, t); err != nil {
			s.log.Warn(ctx, "failed to delete image", "token", t, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

func extension(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}
