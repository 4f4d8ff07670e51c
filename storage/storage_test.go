package storage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/princinho/eshopbackend/utils"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func formFiles(t *testing.T, field string, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field]
}

func TestLocalStore_PutDeleteKeyFromURL(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "http://localhost:3000/public/uploads/")
	require.NoError(t, err)

	ctx := context.Background()
	u, err := s.Put(ctx, "products/shoe/1.png", strings.NewReader("img"), 3, "image/png")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:3000/public/uploads/products/shoe/1.png", u)

	data, err := os.ReadFile(filepath.Join(dir, "products", "shoe", "1.png"))
	require.NoError(t, err)
	require.Equal(t, "img", string(data))

	key, err := s.KeyFromURL(u)
	require.NoError(t, err)
	require.Equal(t, "products/shoe/1.png", key)

	_, err = s.KeyFromURL("https://elsewhere.test/x.png")
	require.Error(t, err)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "deleting a missing object is not an error")
	_, err = os.Stat(filepath.Join(dir, "products", "shoe", "1.png"))
	require.True(t, os.IsNotExist(err))
}

func TestLocalStore_KeysCannotEscapeRoot(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(filepath.Join(dir, "uploads"), "http://h/public/uploads")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../../escape.png", strings.NewReader("x"), 1, "image/png")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "uploads", "escape.png"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "escape.png"))
	require.True(t, os.IsNotExist(err))
}

func TestProductImageKey(t *testing.T) {
	key := ProductImageKey("p1", "Crème Brûlée", "Photo.JPG")
	require.True(t, strings.HasPrefix(key, "products/p1/creme-brulee-"), key)
	require.True(t, strings.HasSuffix(key, ".jpg"), key)

	require.True(t, strings.HasPrefix(ProductImageKey("p1", "!!!", "x"), "products/p1/product-"))
	require.True(t, strings.HasSuffix(ProductImageKey("p1", "a", "noext"), ".bin"))
}

func TestUploadImages(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "http://h/public/uploads")
	require.NoError(t, err)
	v := utils.NewImageValidator(1)
	ctx := context.Background()

	urls, err := UploadImages(ctx, s, v, "p1", "Red Shoe", formFiles(t, "images", map[string][]byte{
		"a.png": pngHeader,
		"b.png": pngHeader,
	}))
	require.NoError(t, err)
	require.Len(t, urls, 2)
	for _, u := range urls {
		require.True(t, strings.HasPrefix(u, "http://h/public/uploads/products/p1/red-shoe-"), u)
	}

	require.NoError(t, DeleteURLs(ctx, s, ProductPrefix("p1"), append(urls, "https://other.test/keep.png")))
	for _, u := range urls {
		key, _ := s.KeyFromURL(u)
		_, err := os.Stat(filepath.Join(s.Root(), filepath.FromSlash(key)))
		require.True(t, os.IsNotExist(err))
	}
}

func TestDeleteURLs_SkipsOtherProductsObjects(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "http://h/public/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	shared, err := s.Put(ctx, ProductImageKey("p1", "Shoe", "a.png"), bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png")
	require.NoError(t, err)

	require.NoError(t, DeleteURLs(ctx, s, ProductPrefix("p2"), []string{shared}))
	key, _ := s.KeyFromURL(shared)
	_, err = os.Stat(filepath.Join(s.Root(), filepath.FromSlash(key)))
	require.NoError(t, err, "p2 must not delete an object owned by p1")
}

type recordedPut struct {
	key         string
	contentType string
}

type recordingStore struct {
	puts []recordedPut
}

func (s *recordingStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.puts = append(s.puts, recordedPut{key: key, contentType: contentType})
	return "mem://" + key, nil
}

func (s *recordingStore) Delete(context.Context, string) error { return nil }

func (s *recordingStore) KeyFromURL(raw string) (string, error) {
	return strings.TrimPrefix(raw, "mem://"), nil
}

func (s *recordingStore) Driver() string { return "recording" }

func TestUploadImages_StoresSniffedContentType(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="images"; filename="a.png"`)
	h.Set("Content-Type", "text/html")
	pw, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = pw.Write(append(append([]byte{}, pngHeader...), []byte("<script>alert(1)</script>")...))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	files := req.MultipartForm.File["images"]
	require.Equal(t, "text/html", files[0].Header.Get("Content-Type"))

	store := &recordingStore{}
	_, err = UploadImages(context.Background(), store, utils.NewImageValidator(1), "p1", "Shoe", files)
	require.NoError(t, err)
	require.Len(t, store.puts, 1)
	require.Equal(t, "image/png", store.puts[0].contentType)
}

func TestUploadImages_RejectsBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "http://h/public/uploads")
	require.NoError(t, err)

	_, err = UploadImages(context.Background(), s, utils.NewImageValidator(1), "p1", "Shoe", formFiles(t, "images", map[string][]byte{
		"a.txt": []byte("hello"),
	}))
	require.ErrorIs(t, err, ErrInvalidUpload)
	require.ErrorContains(t, err, "invalid image type")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestGCSObjectName(t *testing.T) {
	name, err := gcsObjectName("shop", "https://storage.googleapis.com/shop/products/a/1.png")
	require.NoError(t, err)
	require.Equal(t, "products/a/1.png", name)

	name, err = gcsObjectName("shop", "https://shop.storage.googleapis.com/products/a/1.png")
	require.NoError(t, err)
	require.Equal(t, "products/a/1.png", name)

	_, err = gcsObjectName("shop", "https://storage.googleapis.com/other/products/a/1.png")
	require.Error(t, err)
	_, err = gcsObjectName("shop", "https://example.com/products/a/1.png")
	require.Error(t, err)
}

func TestR2AndMinIOURLs(t *testing.T) {
	s := &R2Store{bucket: "shop", publicDomain: "https://files.test"}
	u := r2PublicURL(s.publicDomain, s.bucket, "products/a/1.png")
	require.Equal(t, "https://files.test/shop/products/a/1.png", u)
	key, err := s.KeyFromURL(u)
	require.NoError(t, err)
	require.Equal(t, "products/a/1.png", key)

	require.Equal(t, "https://minio.test:9000/shop", minioBaseURL("minio.test:9000", "shop", true))
	m := &MinIOStore{baseURL: minioBaseURL("minio.test:9000", "shop", false)}
	key, err = m.KeyFromURL("http://minio.test:9000/shop/products/a/1.png")
	require.NoError(t, err)
	require.Equal(t, "products/a/1.png", key)
}
