package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const (
	gcsTimeout = 50 * time.Second

	defaultCredentialsFile = "./credentials.json"
)

// GCSStore keeps images as objects in a Google Cloud Storage bucket.
type GCSStore struct {
	cl         *storage.Client
	bucketName string
	uploadPath string
}

// NewGCSStore connects with application default credentials. When
// GOOGLE_APPLICATION_CREDENTIALS is unset and ./credentials.json exists, that
// key file is used instead.
func NewGCSStore(ctx context.Context, bucketName, uploadPath string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, clientOptions(defaultCredentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCSStore{
		cl:         client,
		bucketName: bucketName,
		uploadPath: uploadPath,
	}, nil
}

// clientOptions leaves the process environment untouched; the fallback key
// file is passed as a client option only.
func clientOptions(credentialsFile string) []option.ClientOption {
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		return nil
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}
}

func (c *GCSStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gcsTimeout)
	defer cancel()

	objectPath := c.uploadPath + filename

	// DoesNotExist keeps an upload from replacing an object with the same name.
	wc := c.cl.Bucket(c.bucketName).Object(objectPath).
		If(storage.Conditions{DoesNotExist: true}).
		NewWriter(ctx)
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		wc.Close()
		return "", fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Writer.Close: %w", err)
	}

	return c.objectURL(objectPath), nil
}

func (c *GCSStore) Remove(ctx context.Context, imageURL string) error {
	name, err := FilenameFromURL(imageURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, gcsTimeout)
	defer cancel()

	err = c.cl.Bucket(c.bucketName).Object(c.uploadPath + name).Delete(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%w: %s", ErrImageNotFound, name)
		}
		return fmt.Errorf("delete object: %w", err)
	}

	return nil
}

func (c *GCSStore) Close() error {
	return c.cl.Close()
}

func (c *GCSStore) objectURL(objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, strings.TrimLeft(objectPath, "/"))
}
