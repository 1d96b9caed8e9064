// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package deliver writes converted spreadsheets to their destination, a
// local directory or an S3 bucket.
package deliver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/staranto/olistconv/internal/aws"
	"github.com/staranto/olistconv/internal/upload"
)

// maxDuplicates bounds the " (n)" suffixes tried for an existing file.
const maxDuplicates = 1000

// Destination stores a converted file and returns where it went.
type Destination interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// Options configures the S3 client built by Parse.
type Options struct {
	Profile  string
	Region   string
	Endpoint string
}

// Parse returns the destination for dest. An empty dest is the current
// directory. s3://bucket/prefix delivers to S3.
func Parse(ctx context.Context, dest string, opts Options) (Destination, error) {
	if !aws.IsS3URL(dest) {
		if dest == "" {
			dest = "."
		}
		return Dir{Path: dest}, nil
	}

	bucket, prefix, err := aws.ParseS3URL(dest)
	if err != nil {
		return nil, err
	}

	var awsOpts []aws.Option
	if opts.Profile != "" {
		awsOpts = append(awsOpts, aws.WithProfile(opts.Profile))
	}
	if opts.Region != "" {
		awsOpts = append(awsOpts, aws.WithRegion(opts.Region))
	}
	cfg, err := aws.LoadAWSConfig(ctx, awsOpts...)
	if err != nil {
		return nil, err
	}

	return S3{
		Client: aws.NewS3(cfg, aws.WithS3Endpoint(opts.Endpoint)),
		Bucket: bucket,
		Prefix: prefix,
	}, nil
}

// Again delivers the same blob to each of dests, returning the locations.
func Again(ctx context.Context, filename string, data []byte, dests ...Destination) ([]string, error) {
	locations := make([]string, 0, len(dests))
	for _, d := range dests {
		loc, err := d.Save(ctx, filename, data)
		if err != nil {
			return locations, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// Dir saves into a local directory. An existing file is not replaced; a
// " (n)" suffix is added to the name instead.
type Dir struct {
	Path string
}

func (d Dir) Save(_ context.Context, filename string, data []byte) (string, error) {
	filename = filepath.Base(filename)
	if filename == "." || filename == ".." || filename == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", filename)
	}

	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", d.Path, err)
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for n := 0; n < maxDuplicates; n++ {
		name := filename
		if n > 0 {
			name = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		p := filepath.Join(d.Path, name)

		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", p, err)
		}

		_, werr := f.Write(data)
		cerr := f.Close()
		if err := errors.Join(werr, cerr); err != nil {
			_ = os.Remove(p)
			return "", fmt.Errorf("failed to write %s: %w", p, err)
		}

		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		log.Debugf("delivered %d bytes to %s", len(data), abs)
		return abs, nil
	}

	return "", fmt.Errorf("too many copies of %s in %s", filename, d.Path)
}

// PutObjectAPI is the subset of the S3 client used for delivery.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
}

// S3 saves objects under Prefix in Bucket. Existing keys are overwritten.
type S3 struct {
	Client PutObjectAPI
	Bucket string
	Prefix string
}

func (s S3) Save(ctx context.Context, filename string, data []byte) (string, error) {
	key := path.Join(s.Prefix, path.Base(filepath.ToSlash(filename)))

	_, err := s.Client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:        awsv2.String(s.Bucket),
		Key:           awsv2.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: awsv2.Int64(int64(len(data))),
		ContentType:   awsv2.String(upload.File{Name: filename}.ContentType()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", s.Bucket, key, err)
	}

	loc := fmt.Sprintf("s3://%s/%s", s.Bucket, key)
	log.Debugf("delivered %d bytes to %s", len(data), loc)
	return loc, nil
}
