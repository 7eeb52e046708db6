package filestore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/igolaizola/choirmix/pkg/filestore/local"
	"github.com/igolaizola/choirmix/pkg/filestore/s3"
)

type fs interface {
	Upload(ctx context.Context, path, name string) error
}

// Store publishes rendered tracks.
type Store struct {
	fs     fs
	prefix string
}

// Upload publishes the file at path under its base name.
func (s *Store) Upload(ctx context.Context, path string) error {
	name := filepath.Base(path)
	if s.prefix != "" {
		name = s.prefix + "/" + name
	}
	return s.fs.Upload(ctx, path, name)
}

// New creates a store from its type and connection string:
//
//	local: <directory>
//	s3:    <key>:<secret>@<bucket>.<region>[/<prefix>]
func New(typ, conn string, debug bool) (*Store, error) {
	switch typ {
	case "s3":
		split := strings.Split(conn, "@")
		if len(split) != 2 {
			return nil, fmt.Errorf("filestore: invalid s3 connection string %q", conn)
		}
		auth := strings.SplitN(split[0], ":", 2)
		if len(auth) != 2 {
			return nil, fmt.Errorf("filestore: invalid s3 auth string %q", conn)
		}
		key := auth[0]
		secret := auth[1]
		location := split[1]
		var prefix string
		if idx := strings.Index(location, "/"); idx >= 0 {
			prefix = strings.Trim(location[idx+1:], "/")
			location = location[:idx]
		}
		loc := strings.Split(location, ".")
		if len(loc) != 2 {
			return nil, fmt.Errorf("filestore: invalid s3 location string %q", conn)
		}
		bucket := loc[0]
		region := loc[1]
		candidate, err := s3.New(key, secret, region, bucket, debug)
		if err != nil {
			return nil, fmt.Errorf("filestore: %w", err)
		}
		return &Store{fs: candidate, prefix: prefix}, nil
	case "local":
		if conn == "" {
			return nil, fmt.Errorf("filestore: local directory is required")
		}
		candidate, err := local.New(conn, debug)
		if err != nil {
			return nil, fmt.Errorf("filestore: %w", err)
		}
		return &Store{fs: candidate}, nil
	default:
		return nil, fmt.Errorf("filestore: unknown file storage type %q", typ)
	}
}
