package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/engine"
	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"github.com/bitfantasy/goldassay/internal/assay/repository"
	"github.com/xuri/excelize/v2"
)

// 报表排序字段
const (
	SortByFormNumber   = "form_number"
	SortByDate         = "date"
	SortByCustomerName = "customer_name"
	SortByUsername     = "username"
)

const formDateLayout = "02-01-2006"

// ReportService 表单报表
type ReportService struct {
	formRepo *repository.FormRepository
}

func NewReportService(formRepo *repository.FormRepository) *ReportService {
	return &ReportService{formRepo: formRepo}
}

// ReportQuery 报表查询条件
type ReportQuery struct {
	Search   string `form:"search"`
	SortBy   string `form:"sort_by"`
	Order    string `form:"order"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ReportRow 报表行
type ReportRow struct {
	entity.Form
	GoldPurity *float64 `json:"gold_purity"`
}

// ListForms 当前用户的表单报表
func (s *ReportService) ListForms(ctx context.Context, userID string, q ReportQuery) ([]ReportRow, int64, error) {
	rows, err := s.rows(ctx, userID, q)
	if err != nil {
		return nil, 0, err
	}
	return paginate(rows, q.Page, q.PageSize), int64(len(rows)), nil
}

func (s *ReportService) rows(ctx context.Context, userID string, q ReportQuery) ([]ReportRow, error) {
	forms, err := s.formRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	forms = engine.FilterForms(forms, q.Search)
	sortForms(forms, q.SortBy, q.Order)

	rows := make([]ReportRow, len(forms))
	for i, f := range forms {
		rows[i] = ReportRow{Form: f, GoldPurity: engine.ComputeGoldPurity(f.Gold, f.GrossWeight)}
	}
	return rows, nil
}

// sortForms 默认按表单号倒序；日期按 dd-mm-yyyy 解析后比较
func sortForms(forms []entity.Form, sortBy, order string) {
	desc := !strings.EqualFold(order, "asc")
	if sortBy == "" {
		sortBy = SortByFormNumber
	}
	slices.SortStableFunc(forms, func(a, b entity.Form) int {
		var c int
		switch sortBy {
		case SortByDate:
			c = compareFormTime(a, b)
		case SortByCustomerName:
			c = strings.Compare(strings.ToLower(a.CustomerName), strings.ToLower(b.CustomerName))
		default:
			c = cmp.Compare(a.FormNumber, b.FormNumber)
		}
		if desc {
			return -c
		}
		return c
	})
}

func compareFormTime(a, b entity.Form) int {
	return formTime(a).Compare(formTime(b))
}

// formTime 无法解析的日期排在最前（升序）
func formTime(f entity.Form) time.Time {
	t, err := time.Parse(formDateLayout+" 15:04:05", f.Date+" "+f.Time)
	if err == nil {
		return t
	}
	t, err = time.Parse(formDateLayout, f.Date)
	if err == nil {
		return t
	}
	return time.Time{}
}

var reportExportHeaders = []string{
	"Form Number", "Date", "Time", "Customer Name", "Item Name", "Mobile Number",
	"Sample Weight (g)", "Net Weight (g)", "Fineness (%)", "Gold Purity (g)", "Karat",
}

// ExportForms 导出报表为xlsx（不分页）
func (s *ReportService) ExportForms(ctx context.Context, userID string, q ReportQuery) (*excelize.File, string, error) {
	rows, err := s.rows(ctx, userID, q)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Forms"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#F2E2B6"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	weightFmt := "0.000"
	karatFmt := "0.00"
	weightStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &weightFmt})
	karatStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &karatFmt})

	for i, h := range reportExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	setNumber := func(cell string, v *float64, style int) {
		if v == nil {
			f.SetCellValue(sheet, cell, "N/A")
			return
		}
		f.SetCellValue(sheet, cell, *v)
		f.SetCellStyle(sheet, cell, cell, style)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.FormNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Date)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Time)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.CustomerName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.ItemName)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.MobileNumber)
		setNumber(fmt.Sprintf("G%d", row), r.GrossWeight, weightStyle)
		setNumber(fmt.Sprintf("H%d", row), r.NetWeight, weightStyle)
		setNumber(fmt.Sprintf("I%d", row), r.Gold, weightStyle)
		setNumber(fmt.Sprintf("J%d", row), r.GoldPurity, weightStyle)
		setNumber(fmt.Sprintf("K%d", row), r.Karat, karatStyle)
	}

	colWidths := []float64{12, 12, 10, 24, 20, 14, 16, 14, 12, 14, 8}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("assay_forms_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
