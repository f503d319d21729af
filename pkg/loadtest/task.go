package loadtest

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math/rand"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"time"

	"github.com/myzhan/boomer"

	"github.com/nedaZarei/ImageUploadLoadTest/config"
)

const (
	uploadEndpoint = "/upload"
	formFieldName  = "files"
	imageMIMEType  = "image/jpeg"
	requestName    = "Upload Image"

	nameLength  = 8
	nameCharset = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// UploadTask simulates one user behavior: read the demo image from disk,
// give it a fresh random name and POST it to /upload as multipart form data.
// Each run is classified as success or failure by response status code and
// reported through the Recorder.
type UploadTask struct {
	host      string
	imagePath string
	client    *http.Client
	recorder  Recorder
	wait      func() time.Duration
}

func NewUploadTask(cfg config.LoadTest) *UploadTask {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 512,
	}
	return &UploadTask{
		host:      cfg.Host,
		imagePath: cfg.ImagePath,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		recorder: boomerRecorder{},
		wait:     Between(cfg.WaitMin, cfg.WaitMax),
	}
}

// Task wraps Run for registration with the boomer worker.
func (t *UploadTask) Task() *boomer.Task {
	return &boomer.Task{
		Name:   "upload_image",
		Weight: 1,
		Fn:     t.Run,
	}
}

// Run performs a single upload. A missing source file is logged and skipped
// without issuing a request; every issued request ends in exactly one
// recorder call.
func (t *UploadTask) Run() {
	defer func() { time.Sleep(t.wait()) }()

	if _, err := os.Stat(t.imagePath); os.IsNotExist(err) {
		log.Printf("image file %q not found", t.imagePath)
		return
	}

	data, err := os.ReadFile(t.imagePath)
	if err != nil {
		t.recorder.RecordFailure("http", requestName, 0, err.Error())
		return
	}

	req, err := t.newUploadRequest(RandomImageName(), data)
	if err != nil {
		t.recorder.RecordFailure("http", requestName, 0, err.Error())
		return
	}

	start := boomer.Now()
	resp, err := t.client.Do(req)
	elapsed := boomer.Now() - start
	if err != nil {
		t.recorder.RecordFailure("http", requestName, elapsed, err.Error())
		return
	}
	defer resp.Body.Close()

	length, _ := io.Copy(io.Discard, resp.Body)
	if resp.StatusCode == http.StatusOK {
		t.recorder.RecordSuccess("http", requestName, elapsed, length)
	} else {
		t.recorder.RecordFailure("http", requestName, elapsed,
			fmt.Sprintf("Failed to upload image. Status code: %d", resp.StatusCode))
	}
}

func (t *UploadTask) newUploadRequest(imageName string, data []byte) (*http.Request, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, formFieldName, imageName))
	header.Set("Content-Type", imageMIMEType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, t.host+uploadEndpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// RandomImageName returns 8 random lowercase-alphanumeric characters with a
// .jpg extension, e.g. "a1b2c3d4.jpg".
func RandomImageName() string {
	name := make([]byte, nameLength)
	for i := range name {
		name[i] = nameCharset[rand.Intn(len(nameCharset))]
	}
	return string(name) + ".jpg"
}
