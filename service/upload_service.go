package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nedaZarei/ImageUploadLoadTest/config"
	"github.com/nedaZarei/ImageUploadLoadTest/pkg/db"
	"github.com/nedaZarei/ImageUploadLoadTest/pkg/imaging"
	"github.com/nedaZarei/ImageUploadLoadTest/pkg/models"
)

type UploadService struct {
	cfg            *config.Config
	e              *echo.Echo
	UploadDatabase db.UploadDatabase
	rabbitMQClient *amqp.Channel
	minioClient    *minio.Client
	processor      *imaging.Processor
	sem            chan struct{}
}

func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{
		e:         echo.New(),
		cfg:       cfg,
		processor: imaging.NewProcessor(),
		sem:       make(chan struct{}, cfg.Server.ConcurrentLimit),
	}
}

func (s *UploadService) StartService() error {
	if err := os.MkdirAll(s.cfg.Server.UploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %v", err)
	}

	//db init
	if s.cfg.Postgres.Enabled {
		dB, err := sqlx.Open("postgres", fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			s.cfg.Postgres.Host, s.cfg.Postgres.Port, s.cfg.Postgres.Username, s.cfg.Postgres.Password, s.cfg.Postgres.Database))
		if err != nil {
			return fmt.Errorf("failed to connect to Postgres: %v", err)
		}
		log.Println("connected to Postgres")
		s.UploadDatabase, err = db.NewUploadDatabase(s.cfg.Postgres.AutoCreate, dB)
		if err != nil {
			return fmt.Errorf("failed to initialize upload database: %v", err)
		}
	}

	//rabbitMQ init
	if s.cfg.RabbitMQ.Enabled {
		conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:%d/",
			s.cfg.RabbitMQ.Username, s.cfg.RabbitMQ.Password, s.cfg.RabbitMQ.Host, s.cfg.RabbitMQ.Port))
		if err != nil {
			return fmt.Errorf("failed to connect to RabbitMQ: %v", err)
		}
		log.Println("connected to RabbitMQ")
		s.rabbitMQClient, err = conn.Channel()
		if err != nil {
			return fmt.Errorf("failed to open a channel: %v", err)
		}
	}

	//minio init
	if s.cfg.Minio.Enabled {
		var err error
		s.minioClient, err = minio.New(s.cfg.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(s.cfg.Minio.AccessKey, s.cfg.Minio.SecretKey, ""),
			Secure: false,
		})
		if err != nil {
			return fmt.Errorf("failed to init Minio client: %v", err)
		}
		log.Println("connected to Minio")
	}

	//setting up echo server with middleware
	s.e.Use(middleware.Logger())
	s.e.Use(middleware.Recover())

	s.e.POST("/upload", s.HandleUpload)
	s.e.GET("/uploads/:id", s.GetUpload)

	if err := s.e.Start(s.cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %v", err)
	}

	return nil
}

// HandleUpload accepts multipart uploads under the "files" field. Every file
// is validated, normalized and stored independently; the response is a JSON
// array with one result per file.
func (s *UploadService) HandleUpload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no files uploaded"})
	}

	results := make([]models.UploadResult, 0, len(files))
	ch := make(chan models.UploadResult, len(files))
	var wg sync.WaitGroup

	for _, header := range files {
		if header.Size > s.cfg.Server.MaxUploadSize {
			ch <- models.UploadResult{FileName: header.Filename, Status: models.UploadFailed,
				Error: fmt.Sprintf("file size exceeds %d byte limit", s.cfg.Server.MaxUploadSize)}
			continue
		}
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			ch <- models.UploadResult{FileName: header.Filename, Status: models.UploadFailed,
				Error: "only .jpg, .jpeg and .png files are allowed"}
			continue
		}

		wg.Add(1)
		s.sem <- struct{}{}
		go s.processAndStore(c.Request().Context(), header, ext, ch, &wg)
	}

	wg.Wait()
	close(ch)
	for result := range ch {
		results = append(results, result)
	}

	return c.JSON(http.StatusOK, results)
}

func (s *UploadService) processAndStore(ctx context.Context, header *multipart.FileHeader, ext string, ch chan<- models.UploadResult, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() { <-s.sem }()

	src, err := header.Open()
	if err != nil {
		ch <- models.UploadResult{FileName: header.Filename, Status: models.UploadFailed, Error: "could not open uploaded file"}
		return
	}
	defer src.Close()

	img, err := s.processor.Normalize(header.Filename, src)
	if err != nil {
		ch <- models.UploadResult{FileName: header.Filename, Status: models.UploadFailed, Error: "could not decode image"}
		return
	}

	storedAs := storedFileName(header.Filename)
	filePath := filepath.Join(s.cfg.Server.UploadDir, storedAs)
	out, err := os.Create(filePath)
	if err != nil {
		ch <- models.UploadResult{FileName: header.Filename, Status: models.UploadFailed, Error: "could not create file"}
		return
	}
	if err := imaging.Encode(out, img, ext); err != nil {
		out.Close()
		ch <- models.UploadResult{FileName: header.Filename, Status: models.UploadFailed, Error: "could not save image"}
		return
	}
	out.Close()

	//mirroring stored object to Minio
	if s.minioClient != nil {
		data, err := os.ReadFile(filePath)
		if err == nil {
			_, err = s.minioClient.PutObject(ctx, s.cfg.Minio.Bucket, storedAs,
				bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: contentTypeForExt(ext)})
		}
		if err != nil {
			log.Printf("failed to mirror %s to minio: %v", storedAs, err)
		}
	}

	//publishing stored-upload notification
	if s.rabbitMQClient != nil {
		err := s.rabbitMQClient.PublishWithContext(ctx, "", s.cfg.RabbitMQ.Queue, false, false, amqp.Publishing{
			ContentType: "text/plain",
			MessageId:   storedAs,
			Body:        []byte(header.Filename),
		})
		if err != nil {
			log.Printf("failed to publish upload event for %s: %v", storedAs, err)
		}
	}

	//saving upload record
	if s.UploadDatabase != nil {
		_, err := s.UploadDatabase.CreateUpload(ctx, models.UploadRecord{
			FileName:  header.Filename,
			StoredAs:  storedAs,
			SizeBytes: header.Size,
			Status:    models.UploadSuccess,
		})
		if err != nil {
			log.Printf("failed to save upload record for %s: %v", storedAs, err)
		}
	}

	ch <- models.UploadResult{FileName: header.Filename, Status: models.UploadSuccess, StoredAs: storedAs}
}

func (s *UploadService) GetUpload(c echo.Context) error {
	if s.UploadDatabase == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "upload records are not enabled"})
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid upload id"})
	}
	rec, err := s.UploadDatabase.GetUploadByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "upload not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get upload record"})
	}
	return c.JSON(http.StatusOK, rec)
}

func storedFileName(originalName string) string {
	ext := filepath.Ext(originalName)
	name := strings.TrimSuffix(filepath.Base(originalName), ext)
	return fmt.Sprintf("%s_%s%s", name, uuid.New().String(), ext)
}

func contentTypeForExt(ext string) string {
	if ext == ".png" {
		return "image/png"
	}
	return "image/jpeg"
}
