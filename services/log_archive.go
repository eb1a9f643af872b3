package services

import (
	"alnooracademy_go/config"
	"alnooracademy_go/database"
	"alnooracademy_go/models"
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// LogArchiveService flushes the Redis activity-log queue into the
// database and moves aged rows to zipped archives in S3.
type LogArchiveService struct {
	retentionDays int
}

func NewLogArchiveService(retentionDays int) *LogArchiveService {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &LogArchiveService{retentionDays: retentionDays}
}

// FlushLogQueue drains the Redis write-behind queue into activity_logs.
func (las *LogArchiveService) FlushLogQueue() {
	redisClient := database.GetRedisClient()
	if redisClient == nil {
		return
	}
	ctx := context.Background()

	keys, err := redisClient.ZRange(ctx, "logs:queue", 0, 499).Result()
	if err != nil || len(keys) == 0 {
		return
	}

	var batch []models.ActivityLog
	var processed []string
	for _, key := range keys {
		data, err := redisClient.Get(ctx, key).Bytes()
		if err != nil {
			// expired entry, just drop it from the queue
			processed = append(processed, key)
			continue
		}
		var log models.ActivityLog
		if err := json.Unmarshal(data, &log); err != nil {
			logrus.WithError(err).Warn("Dropping malformed cached activity log")
			processed = append(processed, key)
			continue
		}
		batch = append(batch, log)
		processed = append(processed, key)
	}

	if len(batch) > 0 {
		if err := database.DB.Create(&batch).Error; err != nil {
			logrus.WithError(err).Error("Failed to flush activity log queue")
			return
		}
	}

	if len(processed) > 0 {
		members := make([]interface{}, len(processed))
		for i, k := range processed {
			members[i] = k
		}
		redisClient.ZRem(ctx, "logs:queue", members...)
		redisClient.Del(ctx, processed...)
	}
}

// ArchiveOldLogs zips activity logs older than the retention window,
// uploads the archive to S3 and deletes the archived rows. A LogArchive
// row tracks each run.
func (las *LogArchiveService) ArchiveOldLogs() error {
	cutoff := time.Now().AddDate(0, 0, -las.retentionDays)

	var logs []models.ActivityLog
	if err := database.DB.Where("created_at < ?", cutoff).
		Order("created_at").Limit(10000).Find(&logs).Error; err != nil {
		return fmt.Errorf("failed to load logs for archival: %v", err)
	}
	if len(logs) == 0 {
		return nil
	}

	startDate := logs[0].CreatedAt
	endDate := logs[len(logs)-1].CreatedAt
	fileName := fmt.Sprintf("activity-logs-%s-%s.zip",
		startDate.Format("20060102"), endDate.Format("20060102"))
	s3Key := fmt.Sprintf("log-archives/%d/%s", startDate.Year(), fileName)

	archive := models.LogArchive{
		FileName:    fileName,
		S3Key:       s3Key,
		StartDate:   startDate,
		EndDate:     endDate,
		RecordCount: len(logs),
		Status:      "pending",
	}
	if err := database.DB.Create(&archive).Error; err != nil {
		return fmt.Errorf("failed to create archive record: %v", err)
	}

	data, err := buildZip(fileName, logs)
	if err != nil {
		las.markFailed(&archive, err)
		return err
	}

	if err := uploadArchive(s3Key, data); err != nil {
		las.markFailed(&archive, err)
		return err
	}

	ids := make([]uint, len(logs))
	for i, l := range logs {
		ids[i] = l.ID
	}
	if err := database.DB.Unscoped().Where("id IN ?", ids).Delete(&models.ActivityLog{}).Error; err != nil {
		las.markFailed(&archive, err)
		return fmt.Errorf("failed to delete archived logs: %v", err)
	}

	if err := database.DB.Model(&archive).Updates(map[string]interface{}{
		"status":    "completed",
		"file_size": int64(len(data)),
	}).Error; err != nil {
		logrus.WithError(err).Warn("Failed to finalize archive record")
	}

	logrus.WithFields(logrus.Fields{
		"records": len(logs),
		"s3_key":  s3Key,
	}).Info("Activity logs archived")
	return nil
}

func (las *LogArchiveService) markFailed(archive *models.LogArchive, cause error) {
	if err := database.DB.Model(archive).Updates(map[string]interface{}{
		"status": "failed",
		"error":  cause.Error(),
	}).Error; err != nil {
		logrus.WithError(err).Warn("Failed to mark archive as failed")
	}
}

func buildZip(fileName string, logs []models.ActivityLog) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entryName := fileName[:len(fileName)-4] + ".jsonl"
	w, err := zw.Create(entryName)
	if err != nil {
		return nil, fmt.Errorf("failed to create zip entry: %v", err)
	}

	enc := json.NewEncoder(w)
	for _, l := range logs {
		if err := enc.Encode(l); err != nil {
			return nil, fmt.Errorf("failed to encode log: %v", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip: %v", err)
	}
	return buf.Bytes(), nil
}

func uploadArchive(key string, data []byte) error {
	ctx := context.Background()
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.AppConfig.AWSRegion))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %v", err)
	}

	client := s3.NewFromConfig(cfg)
	contentType := "application/zip"
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &config.AppConfig.S3BucketName,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload archive: %v", err)
	}
	return nil
}
