package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // registered for image.Decode
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"chapamarket/backend/internal/config"
	"chapamarket/backend/internal/notify"
	"chapamarket/backend/internal/services"
	"chapamarket/backend/internal/storage"
)

// Task types handled by the background workers.
const (
	TypeImageProcess  = "image:process"
	TypePremiumSweep  = "premium:expiry:sweep"
	TypeStatsSnapshot = "stats:snapshot"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// Enqueuer is the subset of *asynq.Client used for submitting tasks.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ImageTaskPayload points the image worker at a raw upload.
type ImageTaskPayload struct {
	S3Key     string `json:"s3_key"`
	ListingID string `json:"listing_id"`
}

// EnqueueImageProcess schedules normalization of a freshly uploaded listing image.
func EnqueueImageProcess(client Enqueuer, s3Key, listingID string) error {
	payload, err := json.Marshal(ImageTaskPayload{S3Key: s3Key, ListingID: listingID})
	if err != nil {
		return fmt.Errorf("failed to marshal image task payload: %w", err)
	}
	_, err = client.Enqueue(asynq.NewTask(TypeImageProcess, payload), asynq.Queue("images"))
	if err != nil {
		return fmt.Errorf("failed to enqueue image task for listing %s: %w", listingID, err)
	}
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg            *config.Config
	storageService storage.IS3Storage
	listingService services.IListingService
	profileService services.IProfileService
	statsService   services.IStatsService
	notifier       notify.Notifier
}

func NewTaskProcessor(
	cfg *config.Config,
	storageService storage.IS3Storage,
	listingService services.IListingService,
	profileService services.IProfileService,
	statsService services.IStatsService,
	notifier notify.Notifier,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:            cfg,
		storageService: storageService,
		listingService: listingService,
		profileService: profileService,
		statsService:   statsService,
		notifier:       notifier,
	}
}

// SetupServer configures and returns an Asynq server instance.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isImageWorker bool, isBgWorker bool) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
				"images":   5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				fmt.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v\n", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()

	if isBgWorker {
		mux.HandleFunc(TypePremiumSweep, processor.HandlePremiumSweepTask)
		mux.HandleFunc(TypeStatsSnapshot, processor.HandleStatsSnapshotTask)
		fmt.Println("Registered background task handlers (premium sweep & stats snapshot).")
	}

	if isImageWorker {
		mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)
		fmt.Println("Registered image processing task handlers.")
	}

	return srv, mux
}

// StartScheduler enqueues the periodic maintenance tasks on a fixed interval
// until the context is cancelled. The tasks themselves are idempotent, so a
// duplicate enqueue from a second instance is harmless.
func StartScheduler(ctx context.Context, client *asynq.Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	enqueue := func() {
		if _, err := client.Enqueue(asynq.NewTask(TypePremiumSweep, nil), asynq.Queue("low")); err != nil {
			log.Printf("Warning: failed to enqueue premium sweep: %v", err)
		}
		if _, err := client.Enqueue(asynq.NewTask(TypeStatsSnapshot, nil), asynq.Queue("low")); err != nil {
			log.Printf("Warning: failed to enqueue stats snapshot: %v", err)
		}
	}

	enqueue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}

// --- Task Handlers ---

// HandlePremiumSweepTask downgrades accounts whose premium period has lapsed.
func (p *TaskProcessor) HandlePremiumSweepTask(ctx context.Context, t *asynq.Task) error {
	downgraded, err := p.profileService.ExpireLapsedPremiums(ctx)
	if err != nil {
		return fmt.Errorf("premium sweep failed: %w", err)
	}
	if downgraded > 0 {
		log.Printf("Premium sweep downgraded %d lapsed account(s).", downgraded)
		if p.notifier != nil {
			_ = p.notifier.Notify(ctx, notify.Notification{
				Title:       "Premium expiry sweep",
				Description: fmt.Sprintf("%d premium account(s) lapsed and were downgraded", downgraded),
				Severity:    notify.SeverityInfo,
			})
		}
	}
	return nil
}

// HandleStatsSnapshotTask refreshes the cached dashboard snapshot.
func (p *TaskProcessor) HandleStatsSnapshotTask(ctx context.Context, t *asynq.Task) error {
	if err := p.statsService.RefreshSnapshot(ctx); err != nil {
		return fmt.Errorf("stats snapshot refresh failed: %w", err)
	}
	return nil
}

// HandleImageProcessTask normalizes an uploaded listing image: downloads the
// raw object, bounds its dimensions, re-encodes as JPEG and attaches the
// processed key to the listing.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Processing image task: S3Key=%s, ListingID=%s", payload.S3Key, payload.ListingID)

	imgData, err := p.storageService.GetObject(ctx, payload.S3Key)
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			log.Printf("S3 object %s not found, likely upload failed or key incorrect.", payload.S3Key)
			return fmt.Errorf("s3 object not found: %w", asynq.SkipRetry)
		}
		return fmt.Errorf("failed to download image from S3: %w", err)
	}

	maxSizeBytes := int64(p.cfg.ImageMaxSizeMB) * 1024 * 1024
	if int64(len(imgData)) > maxSizeBytes {
		log.Printf("Image %s exceeds max size (%d > %d bytes). Skipping.", payload.S3Key, len(imgData), maxSizeBytes)
		return fmt.Errorf("image exceeds max size: %w", asynq.SkipRetry)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		log.Printf("Error decoding image for key %s: %v", payload.S3Key, err)
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}
	log.Printf("Decoded image %s, format: %s, size: %dx%d", payload.S3Key, format, img.Bounds().Dx(), img.Bounds().Dy())

	maxDim := uint(p.cfg.ImageMaxDimension)
	processedKey := payload.S3Key
	processedData := imgData
	contentType := "image/" + format

	if uint(img.Bounds().Dx()) > maxDim || uint(img.Bounds().Dy()) > maxDim {
		resizedImg := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: 85}); err != nil {
			return fmt.Errorf("failed to re-encode resized image: %w", err)
		}
		processedData = buf.Bytes()
		contentType = "image/jpeg"
		log.Printf("Resized image %s to %dx%d", payload.S3Key, resizedImg.Bounds().Dx(), resizedImg.Bounds().Dy())

		if int64(len(processedData)) > maxSizeBytes {
			return fmt.Errorf("resized image still exceeds max size: %w", asynq.SkipRetry)
		}

		processedKey = processedImageKey(payload.S3Key)
		if err := p.storageService.PutObject(ctx, processedKey, contentType, processedData); err != nil {
			return fmt.Errorf("failed to upload processed image: %w", err)
		}
		// The raw upload is no longer needed.
		if err := p.storageService.DeleteObject(ctx, payload.S3Key); err != nil {
			log.Printf("Warning: failed to delete raw upload %s: %v", payload.S3Key, err)
		}
	}

	if err := p.listingService.AttachImage(ctx, payload.ListingID, processedKey); err != nil {
		return fmt.Errorf("failed to attach image to listing %s: %w", payload.ListingID, err)
	}

	log.Printf("Image task processed successfully: ListingID=%s, Key=%s", payload.ListingID, processedKey)
	return nil
}

// processedImageKey derives the final object key from a raw upload key:
// uploads/... becomes images/... with a .jpg extension.
func processedImageKey(rawKey string) string {
	key := strings.TrimPrefix(rawKey, "uploads/")
	if i := strings.LastIndex(key, "."); i > 0 {
		key = key[:i]
	}
	return "images/" + key + ".jpg"
}
