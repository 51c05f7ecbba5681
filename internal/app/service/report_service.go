package service

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	StoresSheet  = "Stores"
	SummarySheet = "Summary"
)

var storeReportHeader = []interface{}{
	"ID", "Name", "Email", "Address", "Owner", "Average Rating", "Total Ratings", "Created At",
}

type ReportService interface {
	// WriteStoreReport renders the store workbook into w.
	WriteStoreReport(w io.Writer) error
	// BuildStoreReport renders the store workbook into memory.
	BuildStoreReport() ([]byte, error)
	// FileName is the download name for a report generated at t.
	FileName(t time.Time) string
}

type reportService struct {
	storeRepo repository.StoreRepository
	admin     AdminService
}

func NewReportService(storeRepo repository.StoreRepository, admin AdminService) ReportService {
	return &reportService{storeRepo: storeRepo, admin: admin}
}

func (s *reportService) FileName(t time.Time) string {
	return fmt.Sprintf("store-report-%s.xlsx", t.Format("2006-01-02"))
}

func (s *reportService) BuildStoreReport() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WriteStoreReport(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *reportService) WriteStoreReport(w io.Writer) error {
	f, err := s.buildWorkbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (s *reportService) buildWorkbook() (*excelize.File, error) {
	stores, err := s.storeRepo.ListAllSummaries()
	if err != nil {
		return nil, err
	}
	stats, err := s.admin.Dashboard()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), StoresSheet); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := f.SetSheetRow(StoresSheet, "A1", &storeReportHeader); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(StoresSheet, "A1", "H1", headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	for i, store := range stores {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		createdAt := ""
		if store.CreatedAt != nil {
			createdAt = store.CreatedAt.UTC().Format(time.RFC3339)
		}
		row := []interface{}{
			store.ID, store.Name, store.Email, store.Address, store.OwnerName,
			store.AverageRating, store.TotalRatings, createdAt,
		}
		if err := f.SetSheetRow(StoresSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, err
	}
	summary := [][]interface{}{
		{"Total Users", stats.TotalUsers},
		{"Total Stores", stats.TotalStores},
		{"Total Ratings", stats.TotalRatings},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	logger.Info("Store report generated", map[string]interface{}{
		"stores": len(stores),
	})
	return f, nil
}
