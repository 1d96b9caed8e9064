// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package aws loads AWS configuration and builds the S3 client used to
// deliver converted spreadsheets to a bucket.
package aws
