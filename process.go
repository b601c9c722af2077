package main

import (
	"context"
	"log"
	"net/http"
	"time"

	retry "github.com/sethvargo/go-retry"
)

// ProcessItem turns one roster item into exactly one OutputRecord. It never
// returns an error: endpoint failures and unusable replies are downgraded to
// per-row statuses so the run can continue.
func ProcessItem(ctx context.Context, cfg Config, httpClient *http.Client, schema ClassificationSchema, item InputItem) OutputRecord {
	if item.Identifier == "" {
		// Nothing to classify; no point spending a model call.
		return sentinelRecord(item, StatusParseError)
	}

	var reply string
	b := retry.NewConstant(retryDelay(cfg))
	err := retry.Do(ctx, retry.WithMaxRetries(maxRetries(cfg), b), func(ctx context.Context) error {
		r, callErr := classifyIdentifier(ctx, cfg, httpClient, schema, item.Identifier)
		if callErr != nil {
			log.Printf("request failed identifier=%q: %v", item.Identifier, callErr)
			return retry.RetryableError(callErr)
		}
		reply = r
		return nil
	})
	if err != nil {
		log.Printf("request attempts exhausted identifier=%q: %v", item.Identifier, err)
		return sentinelRecord(item, StatusRequestError)
	}

	// The identifier was processed; an unusable reply is not retried.
	judgment, parseErr := ParseModelReply(schema, reply)
	if parseErr != nil {
		log.Printf("parse failed identifier=%q: %v", item.Identifier, parseErr)
		rec := sentinelRecord(item, StatusParseError)
		rec.RawReply = reply
		return rec
	}

	return OutputRecord{
		Identifier: item.Identifier,
		Score:      judgment.Score,
		Level:      judgment.Level,
		DataTypes:  judgment.DataTypes,
		Status:     StatusOK,
	}
}

func sentinelRecord(item InputItem, status RecordStatus) OutputRecord {
	return OutputRecord{
		Identifier: item.Identifier,
		Score:      scoreUnknown,
		Level:      sentinelUnknown,
		Status:     status,
	}
}

// maxRetries converts the configured total attempt count into go-retry's
// retries-after-the-first-attempt convention.
func maxRetries(cfg Config) uint64 {
	if cfg.RetryLimit <= 1 {
		return 0
	}
	return uint64(cfg.RetryLimit - 1)
}

func retryDelay(cfg Config) time.Duration {
	d := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}
