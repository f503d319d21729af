package loadtest

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nedaZarei/ImageUploadLoadTest/config"
)

type recorded struct {
	requestType string
	name        string
	length      int64
	exception   string
}

type fakeRecorder struct {
	mu        sync.Mutex
	successes []recorded
	failures  []recorded
}

func (r *fakeRecorder) RecordSuccess(requestType, name string, responseTime, responseLength int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, recorded{requestType: requestType, name: name, length: responseLength})
}

func (r *fakeRecorder) RecordFailure(requestType, name string, responseTime int64, exception string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, recorded{requestType: requestType, name: name, exception: exception})
}

func writeTestImage(t *testing.T) (string, []byte) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cameraman.jpeg")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	if err := jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	f.Close()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read test image back: %v", err)
	}
	return path, data
}

func newTestTask(host, imagePath string) (*UploadTask, *fakeRecorder) {
	rec := &fakeRecorder{}
	task := NewUploadTask(config.LoadTest{
		Host:      host,
		ImagePath: imagePath,
		Timeout:   5 * time.Second,
	})
	task.recorder = rec
	task.wait = func() time.Duration { return 0 }
	return task, rec
}

func TestRandomImageName(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9]{8}\.jpg$`)
	for i := 0; i < 100; i++ {
		name := RandomImageName()
		if len(name) != 12 {
			t.Fatalf("expected 12-char name, got %q (%d chars)", name, len(name))
		}
		if !pattern.MatchString(name) {
			t.Fatalf("name %q does not match %v", name, pattern)
		}
	}
}

func TestRunRecordsSuccess(t *testing.T) {
	imagePath, imageData := writeTestImage(t)

	var (
		mu       sync.Mutex
		requests int
		gotName  string
		gotMIME  string
		gotBody  []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requests++
		if r.URL.Path != "/upload" {
			t.Errorf("expected POST /upload, got %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			return
		}
		headers := r.MultipartForm.File["files"]
		if len(headers) != 1 {
			t.Errorf("expected exactly one file under field %q, got %d", "files", len(headers))
			return
		}
		gotName = headers[0].Filename
		gotMIME = headers[0].Header.Get("Content-Type")
		f, err := headers[0].Open()
		if err != nil {
			t.Errorf("failed to open uploaded file: %v", err)
			return
		}
		defer f.Close()
		gotBody, _ = io.ReadAll(f)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	task, rec := newTestTask(srv.URL, imagePath)
	task.Run()

	mu.Lock()
	defer mu.Unlock()
	if requests != 1 {
		t.Fatalf("expected exactly one request, got %d", requests)
	}
	if len(rec.successes) != 1 || len(rec.failures) != 0 {
		t.Fatalf("expected 1 success and 0 failures, got %d/%d", len(rec.successes), len(rec.failures))
	}
	if !regexp.MustCompile(`^[a-z0-9]{8}\.jpg$`).MatchString(gotName) {
		t.Errorf("uploaded filename %q is not an 8-char random name", gotName)
	}
	if gotMIME != "image/jpeg" {
		t.Errorf("expected image/jpeg part, got %q", gotMIME)
	}
	if !bytes.Equal(gotBody, imageData) {
		t.Errorf("uploaded bytes differ from source file (%d vs %d bytes)", len(gotBody), len(imageData))
	}
	if rec.successes[0].requestType != "http" || rec.successes[0].name != "Upload Image" {
		t.Errorf("unexpected success labels: %+v", rec.successes[0])
	}
}

func TestRunRecordsFailureStatus(t *testing.T) {
	imagePath, _ := writeTestImage(t)

	for _, code := range []int{404, 500, 503} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		task, rec := newTestTask(srv.URL, imagePath)
		task.Run()
		srv.Close()

		if len(rec.failures) != 1 || len(rec.successes) != 0 {
			t.Fatalf("status %d: expected 1 failure and 0 successes, got %d/%d",
				code, len(rec.failures), len(rec.successes))
		}
		want := fmt.Sprintf("Failed to upload image. Status code: %d", code)
		if rec.failures[0].exception != want {
			t.Errorf("status %d: expected message %q, got %q", code, want, rec.failures[0].exception)
		}
	}
}

func TestRunSkipsMissingImageFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "image-demo", "cameraman.jpeg")

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	task, rec := newTestTask(srv.URL, missing)
	task.Run()

	if requests != 0 {
		t.Fatalf("expected no requests for a missing file, got %d", requests)
	}
	if len(rec.successes) != 0 || len(rec.failures) != 0 {
		t.Fatalf("expected no recorded results, got %d/%d", len(rec.successes), len(rec.failures))
	}
	if !strings.Contains(logs.String(), missing) {
		t.Errorf("diagnostic does not name the missing path: %q", logs.String())
	}
}

func TestRunRecordsTransportError(t *testing.T) {
	imagePath, _ := writeTestImage(t)

	// port 1 is never listening
	task, rec := newTestTask("http://127.0.0.1:1", imagePath)
	task.Run()

	if len(rec.failures) != 1 {
		t.Fatalf("expected transport error to be recorded as failure, got %d failures", len(rec.failures))
	}
	if rec.failures[0].exception == "" {
		t.Error("expected a non-empty failure message")
	}
}
