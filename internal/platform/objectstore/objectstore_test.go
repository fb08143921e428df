package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func stubS3(t *testing.T, p *fakePutter) *s3.Options {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		require.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}

	var captured s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		for _, fn := range optFns {
			fn(&captured)
		}
		return p
	}
	return &captured
}

func TestS3Storage_UploadAndPublicURL(t *testing.T) {
	p := &fakePutter{}
	opts := stubS3(t, p)

	st, err := NewS3Storage(context.Background(), S3Options{
		Endpoint:  "http://127.0.0.1:9000",
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	err = st.Upload(context.Background(), "recipe-images", "recipes/a.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "recipe-images", aws.ToString(p.in.Bucket))
	assert.Equal(t, "recipes/a.png", aws.ToString(p.in.Key))
	assert.Equal(t, "image/png", aws.ToString(p.in.ContentType))
	assert.Equal(t, []byte("png"), p.body)

	assert.Equal(t, "http://127.0.0.1:9000/recipe-images/recipes/a.png", st.PublicURL("recipe-images", "recipes/a.png"))
}

func TestS3Storage_Errors(t *testing.T) {
	t.Run("put error is wrapped", func(t *testing.T) {
		p := &fakePutter{err: errors.New("denied")}
		stubS3(t, p)

		st, err := NewS3Storage(context.Background(), S3Options{Region: "us-east-1", PublicBaseURL: "https://cdn.example.com/"})
		require.NoError(t, err)

		err = st.Upload(context.Background(), "b", "k.jpg", bytes.NewReader(nil), "")
		require.ErrorContains(t, err, "denied")
		assert.Nil(t, p.in.ContentType)
		assert.Equal(t, "https://cdn.example.com/b/k.jpg", st.PublicURL("b", "k.jpg"))
	})

	t.Run("config error", func(t *testing.T) {
		orig := loadDefaultAWSConfig
		t.Cleanup(func() { loadDefaultAWSConfig = orig })
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("boom")
		}
		_, err := NewS3Storage(context.Background(), S3Options{Region: "us-east-1"})
		require.ErrorContains(t, err, "load aws config")
	})

	t.Run("missing public base", func(t *testing.T) {
		stubS3(t, &fakePutter{})
		_, err := NewS3Storage(context.Background(), S3Options{Region: "us-east-1"})
		require.Error(t, err)
	})
}

type fakeCloudinary struct {
	params uploader.UploadParams
	data   []byte
	res    *uploader.UploadResult
	err    error
}

func (f *fakeCloudinary) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	r, ok := file.(io.Reader)
	if !ok {
		return nil, fmt.Errorf("invalid file parameter of unsupported type %T", file)
	}
	f.data, _ = io.ReadAll(r)
	return f.res, f.err
}

func TestCloudinaryStorage(t *testing.T) {
	fc := &fakeCloudinary{res: &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/recipe-images/recipes/abc.jpg"}}
	orig := newCloudinary
	t.Cleanup(func() { newCloudinary = orig })
	newCloudinary = func(cloudName, apiKey, apiSecret string) (cloudinaryUploader, error) {
		assert.Equal(t, "demo", cloudName)
		return fc, nil
	}

	st, err := NewCloudinaryStorage("demo", "key", "secret")
	require.NoError(t, err)

	require.NoError(t, st.Upload(context.Background(), "recipe-images", "recipes/abc.jpg", strings.NewReader("jpg"), "image/jpeg"))
	assert.Equal(t, "recipe-images", fc.params.Folder)
	assert.Equal(t, "recipes/abc", fc.params.PublicID)
	assert.Equal(t, []byte("jpg"), fc.data)

	assert.Equal(t, fc.res.SecureURL, st.PublicURL("recipe-images", "recipes/abc.jpg"))
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/recipe-images/other.png", st.PublicURL("recipe-images", "other.png"))

	fc.err = errors.New("quota")
	require.ErrorContains(t, st.Upload(context.Background(), "b", "x.jpg", strings.NewReader(""), ""), "quota")
}

func TestCloudinaryStorage_RealUploader(t *testing.T) {
	var gotPath, gotFile, gotFolder string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			gotFolder = r.FormValue("folder")
			if f, _, err := r.FormFile("file"); err == nil {
				b, _ := io.ReadAll(f)
				gotFile = string(b)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"public_id":"recipe-images/recipes/abc","secure_url":"https://res.cloudinary.com/demo/image/upload/v1/recipe-images/recipes/abc.jpg"}`)
	}))
	defer ts.Close()

	orig := newCloudinary
	t.Cleanup(func() { newCloudinary = orig })
	newCloudinary = func(cloudName, apiKey, apiSecret string) (cloudinaryUploader, error) {
		cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
		if err != nil {
			return nil, err
		}
		cld.Upload.Config.API.UploadPrefix = ts.URL
		return &cld.Upload, nil
	}

	st, err := NewCloudinaryStorage("demo", "key", "secret")
	require.NoError(t, err)

	require.NoError(t, st.Upload(context.Background(), "recipe-images", "recipes/abc.jpg", strings.NewReader("jpegdata"), "image/jpeg"))
	assert.True(t, strings.HasPrefix(gotPath, "/v1_1/demo/"), gotPath)
	assert.Equal(t, "jpegdata", gotFile)
	assert.Equal(t, "recipe-images", gotFolder)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/recipe-images/recipes/abc.jpg",
		st.PublicURL("recipe-images", "recipes/abc.jpg"))
}

func TestHTTPStorage(t *testing.T) {
	var gotPath, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if strings.Contains(r.URL.Path, "forbidden") {
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer ts.Close()

	st := NewHTTPStorage(ts.URL+"/storage/v1", "service-key", 0)
	require.NoError(t, st.Upload(context.Background(), "recipe-images", "recipes/a.jpg", strings.NewReader("x"), "image/jpeg"))
	assert.Equal(t, "/storage/v1/object/recipe-images/recipes/a.jpg", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, ts.URL+"/storage/v1/object/public/recipe-images/recipes/a.jpg", st.PublicURL("recipe-images", "recipes/a.jpg"))

	require.Error(t, st.Upload(context.Background(), "forbidden", "a.jpg", strings.NewReader("x"), ""))
}

func TestOpen(t *testing.T) {
	st, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = Open(context.Background(), Options{Driver: "HTTP", HTTPBaseURL: "http://x"})
	require.NoError(t, err)
	assert.IsType(t, &HTTPStorage{}, st)

	_, err = Open(context.Background(), Options{Driver: DriverHTTP})
	require.Error(t, err)

	_, err = Open(context.Background(), Options{Driver: "ftp"})
	require.ErrorContains(t, err, "unknown storage driver")
}

func TestNewObjectKey(t *testing.T) {
	k := NewObjectKey("/recipes/", "Pancakes.JPG")
	assert.True(t, strings.HasPrefix(k, "recipes/"))
	assert.True(t, strings.HasSuffix(k, ".jpg"))
	assert.Len(t, k, len("recipes/")+36+len(".jpg"))

	assert.NotEqual(t, k, NewObjectKey("recipes", "Pancakes.JPG"))
	assert.Len(t, NewObjectKey("", "noext"), 36)
}
