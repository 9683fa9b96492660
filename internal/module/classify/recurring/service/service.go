// Package service implements the recurring-transaction detector: an
// auxiliary pipeline grouping a user's imported transactions by
// counterparty and amount and classifying the group's booking cadence
// (spec §4.6 "auxiliary pipelines").
package service

import (
	"context"
	"sort"

	transactiondomain "ledgersync/internal/module/accounting/transaction/domain"
	transactionservice "ledgersync/internal/module/accounting/transaction/service"
	"ledgersync/internal/module/classify/textclean"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cadence is the detected recurrence pattern of a transaction group.
type Cadence string

const (
	CadenceNone    Cadence = "none"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// Group is one (counterparty, amount) cluster and its detected cadence.
type Group struct {
	Counterparty string
	Amount       decimal.Decimal
	Cadence      Cadence
	Count        int
}

// Service detects recurring transaction groups for a user.
type Service interface {
	Detect(ctx context.Context, userID uuid.UUID) ([]Group, error)
}

type recurringService struct {
	transactions transactionservice.Service
}

// NewService builds the recurring detector.
func NewService(transactions transactionservice.Service) Service {
	return &recurringService{transactions: transactions}
}

type groupKey struct {
	counterparty string
	amount       string
}

func (s *recurringService) Detect(ctx context.Context, userID uuid.UUID) ([]Group, error) {
	txs, err := s.transactions.ListByUserID(ctx, userID, transactiondomain.ListFilter{})
	if err != nil {
		return nil, err
	}

	buckets := make(map[groupKey][]transactiondomain.Transaction)
	for _, tx := range txs {
		if tx.Source != transactiondomain.SourceBankImport || tx.Counterparty == nil {
			continue
		}
		amount := tx.TotalAmount()
		key := groupKey{
			counterparty: textclean.CleanCounterparty(*tx.Counterparty),
			amount:       amount.StringFixed(2),
		}
		buckets[key] = append(buckets[key], tx)
	}

	var groups []Group
	for key, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Date.Before(bucket[j].Date) })

		cadence := classifyCadence(medianIntervalDays(bucket))
		groups = append(groups, Group{
			Counterparty: key.counterparty,
			Amount:       bucket[0].TotalAmount(),
			Cadence:      cadence,
			Count:        len(bucket),
		})
	}
	return groups, nil
}

func medianIntervalDays(bucket []transactiondomain.Transaction) float64 {
	intervals := make([]float64, 0, len(bucket)-1)
	for i := 1; i < len(bucket); i++ {
		days := bucket[i].Date.Sub(bucket[i-1].Date).Hours() / 24
		intervals = append(intervals, days)
	}
	sort.Float64s(intervals)

	n := len(intervals)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return intervals[n/2]
	}
	return (intervals[n/2-1] + intervals[n/2]) / 2
}

func classifyCadence(medianDays float64) Cadence {
	switch {
	case medianDays >= 25 && medianDays <= 35:
		return CadenceMonthly
	case medianDays >= 6 && medianDays <= 8:
		return CadenceWeekly
	default:
		return CadenceNone
	}
}
