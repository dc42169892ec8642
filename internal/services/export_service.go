package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

type ExportService struct {
	summarySvc *SummaryService
}

func NewExportService(summarySvc *SummaryService) *ExportService {
	return &ExportService{summarySvc: summarySvc}
}

func (s *ExportService) ExportDailyCSV(ctx context.Context, tenantID, branchID, from, to string) ([]byte, string, error) {
	summaries, err := s.summarySvc.ListDaily(ctx, tenantID, branchID, from, to)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Date", "Active", "Suspended", "New", "Canceled", "Churn", "Scheduled Cancellations", "Refunds"})
	for _, d := range summaries {
		_ = writer.Write([]string{
			d.Date,
			fmt.Sprintf("%d", d.ActiveCount),
			fmt.Sprintf("%d", d.SuspendedCount),
			fmt.Sprintf("%d", d.NewCount),
			fmt.Sprintf("%d", d.ContractsCanceled),
			fmt.Sprintf("%d", d.Churn),
			fmt.Sprintf("%d", d.ContractsScheduledCancellation),
			fmt.Sprintf("%d", d.Refunds),
		})
	}
	writer.Flush()

	filename := fmt.Sprintf("daily_summaries_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportDailyXLSX(ctx context.Context, tenantID, branchID, from, to string) ([]byte, string, error) {
	summaries, err := s.summarySvc.ListDaily(ctx, tenantID, branchID, from, to)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Daily Summaries"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Date", "Active", "Suspended", "New", "Canceled", "Churn", "Scheduled Cancellations", "Refunds"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, d := range summaries {
		values := []interface{}{
			d.Date, d.ActiveCount, d.SuspendedCount, d.NewCount,
			d.ContractsCanceled, d.Churn, d.ContractsScheduledCancellation, d.Refunds,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("daily_summaries_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func (s *ExportService) ExportMonthlyXLSX(ctx context.Context, tenantID, branchID, year string) ([]byte, string, error) {
	summaries, err := s.summarySvc.ListMonthly(ctx, tenantID, branchID, year)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Monthly Summaries"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Month", "Active Adjustment", "Suspended", "New", "Canceled", "Churn", "Scheduled Cancellations", "Refunds"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, m := range summaries {
		values := []interface{}{
			m.Month, m.ActiveAvg, m.SuspendedCount, m.NewCount,
			m.ContractsCanceled, m.Churn, m.ContractsScheduledCancellation, m.Refunds,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("monthly_summaries_%s.xlsx", year)
	return buf.Bytes(), filename, nil
}
