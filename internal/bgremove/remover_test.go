package bgremove

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRemoveBackground_FromHTTPURL(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("fake-jpeg-bytes"))
	}))
	defer source.Close()

	segmented := []byte("fake-png-bytes")
	segmentation := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/segment" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("Unexpected x-api-key: %q", got)
		}

		file, header, err := r.FormFile("image_file")
		if err != nil {
			t.Fatalf("Missing image_file part: %v", err)
		}
		defer file.Close()
		if header.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("Unexpected part content type: %q", header.Header.Get("Content-Type"))
		}

		w.Write(segmented)
	}))
	defer segmentation.Close()

	remover := NewRemover("test-key", WithBaseURL(segmentation.URL))
	got, err := remover.RemoveBackground(context.Background(), source.URL+"/image.jpg")
	if err != nil {
		t.Fatalf("RemoveBackground returned error: %v", err)
	}

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(segmented)
	if got != want {
		t.Errorf("Unexpected data URL: %q", got)
	}
}

func TestRemoveBackground_FromDataURL(t *testing.T) {
	segmentation := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("image_file")
		if err != nil {
			t.Fatalf("Missing image_file part: %v", err)
		}
		defer file.Close()
		w.Write([]byte("segmented"))
	}))
	defer segmentation.Close()

	input := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("source-bytes"))

	remover := NewRemover("test-key", WithBaseURL(segmentation.URL))
	got, err := remover.RemoveBackground(context.Background(), input)
	if err != nil {
		t.Fatalf("RemoveBackground returned error: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("Expected PNG data URL, got %q", got)
	}
}

func TestRemoveBackground_SegmentationError(t *testing.T) {
	segmentation := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer segmentation.Close()

	remover := NewRemover("bad-key", WithBaseURL(segmentation.URL))
	input := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("x"))
	_, err := remover.RemoveBackground(context.Background(), input)
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Errorf("Expected status in error, got %q", err.Error())
	}
}

func TestFetchImage_RejectsUnsupportedScheme(t *testing.T) {
	remover := NewRemover("key")
	_, _, err := remover.fetchImage(context.Background(), "ftp://example.com/image.png")
	if err == nil {
		t.Fatal("Expected error for ftp scheme")
	}
}

func TestFetchImage_TooLarge(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(make([]byte, 64))
	}))
	defer source.Close()

	remover := NewRemover("key", WithMaxImageSize(16))
	_, _, err := remover.fetchImage(context.Background(), source.URL+"/big.png")
	if err == nil {
		t.Fatal("Expected error for oversized image")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestDecodeDataURL(t *testing.T) {
	data, mediaType, err := decodeDataURL("data:image/webp;base64," + base64.StdEncoding.EncodeToString([]byte("abc")))
	if err != nil {
		t.Fatalf("decodeDataURL returned error: %v", err)
	}
	if mediaType != "image/webp" {
		t.Errorf("Unexpected media type: %q", mediaType)
	}
	if string(data) != "abc" {
		t.Errorf("Unexpected payload: %q", data)
	}

	for _, bad := range []string{
		"data:image/png,plain-not-base64-flagged",
		"data:;base64,aGk=",
		"data:image/png;base64,!!!",
		"data:nocomma",
	} {
		if _, _, err := decodeDataURL(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestInferMediaType(t *testing.T) {
	tests := map[string]string{
		"https://x/img.PNG":  "image/png",
		"https://x/img.webp": "image/webp",
		"https://x/img.gif":  "image/gif",
		"https://x/img.jpg":  "image/jpeg",
		"https://x/img":      "image/jpeg",
	}
	for url, want := range tests {
		if got := inferMediaType(url); got != want {
			t.Errorf("inferMediaType(%q) = %q, want %q", url, got, want)
		}
	}
}
