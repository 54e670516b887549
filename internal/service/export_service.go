package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"barberbook/backend/internal/dto"
	"barberbook/backend/internal/policy"
	"barberbook/backend/internal/repository"
)

var (
	ErrExportBadRange     = errors.New("export range must be RFC 3339 timestamps")
	ErrExportNoRecords    = errors.New("no clock records in the requested range")
	ErrExportGenerateFail = errors.New("generating the Excel file failed")
)

// ExportService renders tenant timesheets as Excel workbooks.
//
// Output format: one sheet per staff member, one row per completed shift
// (clock-in, clock-out, duration), a trailing total row, and an "Open shift"
// marker row when a shift is still unclosed at the end of the range. The
// buffer is returned to the handler, which sets the download headers.
type ExportService interface {
	ExportTimesheet(ctx context.Context, tenantID string, req *dto.ExportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService instance.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportTimesheet(ctx context.Context, tenantID string, req *dto.ExportRequest) (*bytes.Buffer, string, error) {
	from, err := time.Parse(time.RFC3339, req.From)
	if err != nil {
		return nil, "", fmt.Errorf("%w: from", ErrExportBadRange)
	}
	to, err := time.Parse(time.RFC3339, req.To)
	if err != nil {
		return nil, "", fmt.Errorf("%w: to", ErrExportBadRange)
	}

	records, err := s.repo.TimeRecord.ListRange(ctx, tenantID, "", from, to)
	if err != nil {
		s.logger.Error("time record range query failed", zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoRecords
	}

	// group records per staff member, keeping the ascending order
	byStaff := make(map[string][]policy.Record)
	for _, r := range records {
		byStaff[r.StaffID] = append(byStaff[r.StaffID], toPolicyRecord(r))
	}

	// resolve display names; fall back to the raw ID for deleted accounts
	names := make(map[string]string, len(byStaff))
	staff, _, err := s.repo.Staff.List(ctx, tenantID, 0, len(byStaff)+1000)
	if err != nil {
		s.logger.Error("staff list failed", zap.Error(err))
		return nil, "", err
	}
	for i := range staff {
		names[staff[i].StaffID] = staff[i].Name
	}

	staffIDs := make([]string, 0, len(byStaff))
	for id := range byStaff {
		staffIDs = append(staffIDs, id)
	}
	sort.Slice(staffIDs, func(i, j int) bool {
		return sheetName(names, staffIDs[i]) < sheetName(names, staffIDs[j])
	})
	titles := sheetTitles(names, staffIDs)

	f := excelize.NewFile()
	defer f.Close()

	for idx, staffID := range staffIDs {
		name := titles[staffID]
		if idx == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, "", ErrExportGenerateFail
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, "", ErrExportGenerateFail
		}

		if err := s.writeSheet(f, name, byStaff[staffID]); err != nil {
			s.logger.Error("timesheet sheet write failed", zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("workbook serialization failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("timesheet_%s_%s.xlsx",
		from.UTC().Format("20060102"), to.UTC().Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) writeSheet(f *excelize.File, sheet string, records []policy.Record) error {
	header := []interface{}{"Clock In (UTC)", "Clock Out (UTC)", "Hours"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	shifts, open := policy.PairShifts(records)

	row := 2
	var total float64
	for _, sh := range shifts {
		cells := []interface{}{
			sh.Start.UTC().Format("2006-01-02 15:04"),
			sh.End.UTC().Format("2006-01-02 15:04"),
			sh.Hours(),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return err
		}
		total += sh.Hours()
		row++
	}

	if open != nil {
		cells := []interface{}{open.UTC().Format("2006-01-02 15:04"), "(open shift)", ""}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return err
		}
		row++
	}

	totalRow := []interface{}{"Total", "", total}
	return f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &totalRow)
}

func sheetName(names map[string]string, staffID string) string {
	if name, ok := names[staffID]; ok && name != "" {
		return name
	}
	return staffID
}

// sheetTitleInvalid strips the characters Excel rejects in sheet names.
var sheetTitleInvalid = strings.NewReplacer(
	":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "",
)

const sheetTitleMaxLen = 31

// sheetTitles maps each staff ID to a usable, unique sheet title. Excel
// limits titles to 31 characters, forbids : \ / ? * [ ], and treats
// names case-insensitively, so sanitized collisions get a numeric suffix.
func sheetTitles(names map[string]string, staffIDs []string) map[string]string {
	titles := make(map[string]string, len(staffIDs))
	used := make(map[string]bool, len(staffIDs))
	for _, staffID := range staffIDs {
		base := sheetTitleInvalid.Replace(sheetName(names, staffID))
		base = truncateRunes(base, sheetTitleMaxLen)
		if base == "" {
			base = "Staff"
		}

		title := base
		for n := 2; used[strings.ToLower(title)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			title = truncateRunes(base, sheetTitleMaxLen-len(suffix)) + suffix
		}
		used[strings.ToLower(title)] = true
		titles[staffID] = title
	}
	return titles
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
