package s3

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// New returns a new S3 track store.
func New(key, secret, region, bucket string, debug bool) (*Store, error) {
	s := &Store{
		key:    key,
		secret: secret,
		region: region,
		bucket: bucket,
		debug:  debug,
	}
	if err := s.start(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

type Store struct {
	key    string
	secret string
	region string
	bucket string
	debug  bool
	client *s3.Client
}

func (s *Store) start(ctx context.Context) error {
	var provider aws.CredentialsProvider
	if s.key == "" && s.secret == "" {
		// Load credentials from EC2 Instance Role
		provider = ec2rolecreds.New()
	} else {
		// Load credentials from static credentials
		provider = credentials.NewStaticCredentialsProvider(s.key, s.secret, "")
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(provider),
		config.WithRegion(s.region))
	if err != nil {
		return fmt.Errorf("s3: couldn't load aws config: %w", err)
	}

	s.client = s3.NewFromConfig(cfg)

	// Check if bucket exists
	input := &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	}
	if _, err := s.client.HeadBucket(ctx, input); err != nil {
		return fmt.Errorf("s3: couldn't head bucket %s: %w", s.bucket, err)
	}
	return nil
}

// ContentType returns the content type stored along a file.
func ContentType(path string) string {
	switch ext := filepath.Ext(path); ext {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".mid", ".midi":
		return "audio/midi"
	default:
		if typ := mime.TypeByExtension(ext); typ != "" {
			return typ
		}
		return "application/octet-stream"
	}
}

var backoff = []time.Duration{
	15 * time.Second,
	30 * time.Second,
	1 * time.Minute,
}

func (s *Store) Upload(ctx context.Context, path, name string) error {
	maxAttempts := 3
	attempts := 0
	for {
		err := s.upload(ctx, path, name)
		if err == nil {
			return nil
		}

		// Increase attempts and check if we should stop
		attempts++
		if attempts >= maxAttempts || ctx.Err() != nil {
			return err
		}
		idx := attempts - 1
		if idx >= len(backoff) {
			idx = len(backoff) - 1
		}
		wait := backoff[idx]
		t := time.NewTimer(wait)
		if s.debug {
			log.Printf("%v (retrying in %s)\n", err, wait)
		}
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (s *Store) upload(ctx context.Context, path, name string) error {
	reader, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("s3: couldn't open file %s: %w", path, err)
	}
	defer reader.Close()
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        reader,
		ContentType: aws.String(ContentType(path)),
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("s3: couldn't put object %s: %w", name, err)
	}
	if s.debug {
		js, _ := json.Marshal(out)
		log.Println("s3: put object", name, string(js))
	}
	return nil
}
