// Package importer loads bank accounts and transfers from the semicolon
// separated files dropped into the import directory.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/shopspring/decimal"
)

const (
	AccountsFile  = "Accounts.csv"
	TransfersFile = "Transfers.csv"
)

const importedDescription = "Imported Bank account"

var ErrImportDirMissing = errors.New("import directory not found")

type AccountOpener interface {
	Open(ctx context.Context, req domain.AccountOpening) (domain.Account, error)
}

type TransferRunner interface {
	CreateTransfer(ctx context.Context, sourceID int64, destinationID int64, amount decimal.Decimal, description string, timestamp *time.Time) (domain.Transfer, error)
	ExecuteTransfer(ctx context.Context, id int64) (domain.Transfer, error)
}

// Summary counts the rows of one file. Failed rows are logged and skipped.
type Summary struct {
	File     string
	Imported int
	Failed   int
}

type Importer struct {
	accounts  AccountOpener
	transfers TransferRunner
	dir       string
}

func New(accounts AccountOpener, transfers TransferRunner, dir string) *Importer {
	return &Importer{accounts: accounts, transfers: transfers, dir: dir}
}

// Run imports the accounts file and then the transfers file, so transfers
// can reference the imported account ids.
func (i *Importer) Run(ctx context.Context) ([]Summary, error) {
	logger.Info("importer run start", logger.Fields{"dir": i.dir})

	info, err := os.Stat(i.dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrImportDirMissing, i.dir)
	}

	steps := []struct {
		name string
		run  func(context.Context, io.Reader) (Summary, error)
	}{
		{AccountsFile, i.ImportAccounts},
		{TransfersFile, i.ImportTransfers},
	}

	summaries := make([]Summary, 0, len(steps))
	for _, step := range steps {
		summary, err := i.importFile(ctx, step.name, step.run)
		if err != nil {
			logger.Error("importer run aborted", err, logger.Fields{"file": step.name})
			return summaries, err
		}
		summaries = append(summaries, summary)
	}

	logger.Info("importer run complete", logger.Fields{"files": len(summaries)})
	return summaries, nil
}

func (i *Importer) importFile(ctx context.Context, name string, run func(context.Context, io.Reader) (Summary, error)) (Summary, error) {
	file, err := os.Open(filepath.Join(i.dir, name))
	if err != nil {
		return Summary{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer file.Close()

	summary, err := run(ctx, file)
	summary.File = name
	return summary, err
}

// ImportAccounts reads accountId;balance;currency rows. Each account keeps
// its id, gets a generated IBAN and an opening transaction of balance.
func (i *Importer) ImportAccounts(ctx context.Context, r io.Reader) (Summary, error) {
	summary := Summary{File: AccountsFile}
	err := eachRow(ctx, r, 3, func(line int, record []string) error {
		id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("accountId: %w", err)
		}
		balance, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			return fmt.Errorf("balance: %w", err)
		}

		account, err := i.accounts.Open(ctx, domain.AccountOpening{
			ID:            id,
			Currency:      record[2],
			OpeningAmount: &balance,
			Description:   importedDescription,
		})
		if err != nil {
			return err
		}
		logger.Debug("importer account imported", logger.Fields{
			"line":          line,
			"accountId":     account.ID,
			"accountNumber": account.AccountNumber,
		})
		return nil
	}, &summary)
	return summary, err
}

// ImportTransfers reads source;destination;amount;description;timestamp
// rows and executes each transfer right after creating it.
func (i *Importer) ImportTransfers(ctx context.Context, r io.Reader) (Summary, error) {
	summary := Summary{File: TransfersFile}
	err := eachRow(ctx, r, 5, func(line int, record []string) error {
		source, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		destination, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return fmt.Errorf("destination: %w", err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		timestamp, err := time.ParseInLocation(domain.TimestampLayout, strings.TrimSpace(record[4]), time.UTC)
		if err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}

		transfer, err := i.transfers.CreateTransfer(ctx, source, destination, amount, strings.TrimSpace(record[3]), &timestamp)
		if err != nil {
			return err
		}
		if _, err := i.transfers.ExecuteTransfer(ctx, transfer.ID); err != nil {
			return err
		}
		logger.Debug("importer transfer imported", logger.Fields{
			"line":       line,
			"transferId": transfer.ID,
		})
		return nil
	}, &summary)
	return summary, err
}

// eachRow skips the header and hands every data row to fn. Malformed rows
// and fn failures count as failed; only read errors and cancellation stop
// the loop.
func eachRow(ctx context.Context, r io.Reader, fields int, fn func(line int, record []string) error, summary *Summary) error {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = fields
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read %s header: %w", summary.File, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return fmt.Errorf("read %s: %w", summary.File, err)
			}
			summary.Failed++
			logger.Error("importer row malformed", err, logger.Fields{"file": summary.File, "line": parseErr.Line})
			continue
		}
		line, _ := reader.FieldPos(0)

		if err := fn(line, record); err != nil {
			summary.Failed++
			logger.Error("importer row failed", err, logger.Fields{"file": summary.File, "line": line})
			continue
		}
		summary.Imported++
	}

	logger.Info("importer file complete", logger.Fields{
		"file":     summary.File,
		"imported": summary.Imported,
		"failed":   summary.Failed,
	})
	return nil
}
