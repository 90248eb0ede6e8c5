package objectstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- fakes --------

type fakePresigner struct {
	baseURL string
	err     error
	inputs  []*s3.PutObjectInput
	expires []time.Duration
}

func (f *fakePresigner) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.inputs = append(f.inputs, in)
	f.expires = append(f.expires, opts.Expires)
	return &v4.PresignedHTTPRequest{
		URL:          f.baseURL + "/" + *in.Key + "?X-Amz-Signature=sig",
		Method:       http.MethodPut,
		SignedHeader: http.Header{"Host": []string{"ignored"}},
	}, nil
}

type fakeObjects struct {
	mu       sync.Mutex
	existing map[string]bool
	headErr  error
	delErr   error
	heads    []string
	deleted  []string
}

func (f *fakeObjects) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heads = append(f.heads, *in.Key)
	if f.headErr != nil {
		return nil, f.headErr
	}
	if !f.existing[*in.Key] {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return nil, f.delErr
	}
	f.deleted = append(f.deleted, *in.Key)
	delete(f.existing, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type upload struct {
	path, contentType, body string
}

func newBucketServer(t *testing.T, failOn string) (*httptest.Server, *[]upload) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []upload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if failOn != "" && strings.HasSuffix(r.URL.Path, failOn) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		mu.Lock()
		seen = append(seen, upload{r.URL.Path, r.Header.Get("Content-Type"), string(b)})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func testConfig() Config {
	return Config{
		AccountID:       "acc",
		AccessKeyID:     "id",
		SecretAccessKey: "secret",
		Bucket:          "bucket",
		PublicURL:       "img.example.com/",
	}
}

func newTestStore(p presigner, o objectAPI) *Store {
	s := newStore(testConfig(), p, o, http.DefaultClient, logging.Nop())
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

// -------- tests --------

func TestNewToken(t *testing.T) {
	tok := NewToken(time.UnixMilli(1700000000123))
	assert.Regexp(t, regexp.MustCompile(`^1700000000123[0-9a-z]{9}$`), tok)
	assert.NotEqual(t, tok, NewToken(time.UnixMilli(1700000000123)))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "png", extension("a.PNG"))
	assert.Equal(t, "jpg", extension("noext"))
	assert.Equal(t, "gz", extension("x.tar.gz"))
}

func TestConfig(t *testing.T) {
	c := testConfig().withDefaults()
	assert.Equal(t, "auto", c.Region)
	assert.Equal(t, "life-track", c.Namespace)
	assert.Equal(t, 5*time.Minute, c.PresignExpiry)
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com", c.endpoint())
	assert.Equal(t, "https://img.example.com", c.publicBase())
	assert.True(t, c.Enabled())

	c.Endpoint = "http://127.0.0.1:9000"
	c.PublicURL = "http://cdn.local"
	assert.Equal(t, "http://127.0.0.1:9000", c.endpoint())
	assert.Equal(t, "http://cdn.local", c.publicBase())

	err := Config{}.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket is required")
	assert.Contains(t, err.Error(), "public url is required")
	assert.False(t, Config{}.Enabled())
}

func TestUploadOne(t *testing.T) {
	srv, seen := newBucketServer(t, "")
	p := &fakePresigner{baseURL: srv.URL}
	s := newTestStore(p, &fakeObjects{})

	got, err := s.UploadOne(context.Background(), models.ImageFile{Name: "cat.PNG", ContentType: "image/png", Data: []byte("px")})
	require.NoError(t, err)

	require.Len(t, p.inputs, 1)
	key := *p.inputs[0].Key
	assert.Regexp(t, `^life-track/1700000000000[0-9a-z]{9}\.png$`, key)
	assert.Equal(t, "bucket", *p.inputs[0].Bucket)
	assert.Equal(t, "image/png", *p.inputs[0].ContentType)
	assert.Equal(t, 5*time.Minute, p.expires[0])

	require.Len(t, *seen, 1)
	assert.Equal(t, "/"+key, (*seen)[0].path)
	assert.Equal(t, "image/png", (*seen)[0].contentType)
	assert.Equal(t, "px", (*seen)[0].body)

	assert.Equal(t, "https://img.example.com/"+key, got.URL)
	assert.True(t, strings.HasPrefix(key, "life-track/"+got.Token+"."))
}

func TestUploadOne_Failures(t *testing.T) {
	srv, _ := newBucketServer(t, ".gif")

	s := newTestStore(&fakePresigner{err: errors.New("no creds")}, &fakeObjects{})
	_, err := s.UploadOne(context.Background(), models.ImageFile{Name: "a.jpg"})
	assert.ErrorIs(t, err, common.ErrUploadFailure)

	s = newTestStore(&fakePresigner{baseURL: srv.URL}, &fakeObjects{})
	_, err = s.UploadOne(context.Background(), models.ImageFile{Name: "a.gif"})
	assert.ErrorIs(t, err, common.ErrUploadFailure)
	assert.Contains(t, err.Error(), "403")
}

func TestUploadMany_PreservesOrder(t *testing.T) {
	srv, seen := newBucketServer(t, "")
	s := newTestStore(&fakePresigner{baseURL: srv.URL}, &fakeObjects{})

	got, err := s.UploadMany(context.Background(), []models.ImageFile{
		{Name: "1.png", Data: []byte("one")},
		{Name: "2.jpg", Data: []byte("two")},
		{Name: "3.webp", Data: []byte("three")},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, ext := range []string{"png", "jpg", "webp"} {
		assert.True(t, strings.HasSuffix(got[i].URL, "."+ext))
	}
	assert.Equal(t, []string{"one", "two", "three"}, []string{(*seen)[0].body, (*seen)[1].body, (*seen)[2].body})
}

func TestUploadMany_CleansUpOnFailure(t *testing.T) {
	srv, _ := newBucketServer(t, ".gif")
	objects := &fakeObjects{existing: map[string]bool{}}
	p := &fakePresigner{baseURL: srv.URL}
	s := newTestStore(p, objects)

	_, err := s.UploadMany(context.Background(), []models.ImageFile{
		{Name: "1.png"},
		{Name: "2.gif"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUploadFailure)

	firstKey := *p.inputs[0].Key
	assert.Contains(t, objects.heads, firstKey, "cleanup probes the uploaded object")
}

func TestDeleteOne_ProbesUntilFound(t *testing.T) {
	objects := &fakeObjects{existing: map[string]bool{"life-track/tok.png": true}}
	s := newTestStore(&fakePresigner{}, objects)

	require.NoError(t, s.DeleteOne(context.Background(), "tok"))
	assert.Equal(t, []string{"life-track/tok.jpg", "life-track/tok.jpeg", "life-track/tok.png"}, objects.heads)
	assert.Equal(t, []string{"life-track/tok.png"}, objects.deleted)
}

func TestDeleteOne_NothingFound(t *testing.T) {
	objects := &fakeObjects{existing: map[string]bool{}}
	s := newTestStore(&fakePresigner{}, objects)

	err := s.DeleteOne(context.Background(), "tok")
	assert.ErrorIs(t, err, common.ErrStorageFailure)
	assert.Len(t, objects.heads, len(probeExtensions))
	assert.Empty(t, objects.deleted)
}

func TestDeleteOne_Errors(t *testing.T) {
	s := newTestStore(&fakePresigner{}, &fakeObjects{headErr: errors.New("timeout")})
	assert.ErrorIs(t, s.DeleteOne(context.Background(), "tok"), common.ErrStorageFailure)

	s = newTestStore(&fakePresigner{}, &fakeObjects{
		existing: map[string]bool{"life-track/tok.jpg": true},
		delErr:   errors.New("denied"),
	})
	err := s.DeleteOne(context.Background(), "tok")
	assert.ErrorIs(t, err, common.ErrStorageFailure)
	assert.Contains(t, err.Error(), "denied")
}

func TestDeleteMany_ContinuesAfterFailure(t *testing.T) {
	objects := &fakeObjects{existing: map[string]bool{
		"life-track/a.jpg":  true,
		"life-track/c.webp": true,
	}}
	s := newTestStore(&fakePresigner{}, objects)

	err := s.DeleteMany(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorageFailure)
	assert.Contains(t, err.Error(), "token b")
	assert.Equal(t, []string{"life-track/a.jpg", "life-track/c.webp"}, objects.deleted)

	assert.NoError(t, s.DeleteMany(context.Background(), nil))
}

func TestNew_WiresAWSClients(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "auto", lo.Region)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		require.NotNil(t, c)
		return &s3.PresignClient{}
	}

	s, err := New(context.Background(), testConfig(), logging.Nop())
	require.NoError(t, err)
	require.NotNil(t, s)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = New(context.Background(), testConfig(), logging.Nop())
	assert.ErrorContains(t, err, "load-fail")

	_, err = New(context.Background(), Config{}, logging.Nop())
	assert.ErrorContains(t, err, "object store config")
}
