// Package report builds the admin usage report: per-user worksheet counts
// and sizes plus summary statistics over the whole store.
package report

import (
	"context"

	"github.com/certik/femhub-notebook/internal/errors"
	"github.com/certik/femhub-notebook/ports"

	"github.com/montanaflynn/stats"
)

// UserUsage summarizes one account's worksheets
type UserUsage struct {
	Username       string
	WorksheetCount int
	CellCount      int
	TotalBytes     int64
}

// Summary holds store-wide statistics over worksheet sizes in bytes
type Summary struct {
	Users       int
	Worksheets  int
	TotalBytes  int64
	MeanBytes   float64
	MedianBytes float64
	P95Bytes    float64
}

// Report is the complete usage report
type Report struct {
	PerUser []UserUsage
	Summary Summary
}

// Build walks every user's worksheets and assembles the report
func Build(ctx context.Context, store ports.WorksheetStore) (*Report, error) {
	users, err := store.Users(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	var sizes []float64
	r := &Report{}
	for _, username := range users {
		sheets, err := store.List(ctx, username)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list worksheets for %s", username)
		}
		usage := UserUsage{Username: username}
		for _, ws := range sheets {
			size := int64(len(ws.Text()))
			usage.WorksheetCount++
			usage.CellCount += len(ws.Cells)
			usage.TotalBytes += size
			sizes = append(sizes, float64(size))
		}
		r.PerUser = append(r.PerUser, usage)
		r.Summary.Users++
		r.Summary.Worksheets += usage.WorksheetCount
		r.Summary.TotalBytes += usage.TotalBytes
	}

	if len(sizes) > 0 {
		if r.Summary.MeanBytes, err = stats.Mean(sizes); err != nil {
			return nil, errors.Wrap(err, "failed to compute mean")
		}
		if r.Summary.MedianBytes, err = stats.Median(sizes); err != nil {
			return nil, errors.Wrap(err, "failed to compute median")
		}
		if r.Summary.P95Bytes, err = stats.Percentile(sizes, 95); err != nil {
			// Percentile needs more than one sample; fall back to the max.
			if r.Summary.P95Bytes, err = stats.Max(sizes); err != nil {
				return nil, errors.Wrap(err, "failed to compute p95")
			}
		}
	}
	return r, nil
}
