package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fadhlanhapp/settleup-engine/models"
	"github.com/fadhlanhapp/settleup-engine/utils"
)

// ExcelService handles Excel export functionality
type ExcelService struct {
	groups GroupProvider
	now    func() time.Time
}

// NewExcelService creates a new Excel service
func NewExcelService(groups GroupProvider) *ExcelService {
	return &ExcelService{groups: groups, now: time.Now}
}

// Sheet names of a group export
const (
	SheetBalances    = "Balances"
	SheetSettlements = "Settlements"
	SheetExpenses    = "Expenses"
	SheetPayments    = "Payments"
)

// ExportGroup generates a workbook for a group
func (s *ExcelService) ExportGroup(ctx context.Context, groupID int64) (*excelize.File, string, error) {
	group, err := s.groups.GetGroupSnapshot(ctx, groupID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, "", utils.NewNotFoundError("Group")
		}
		return nil, "", fmt.Errorf("load group %d: %w", groupID, err)
	}

	f, err := BuildGroupWorkbook(group)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_Export_%s.xlsx",
		utils.CleanFileName(group.Name),
		s.now().Format("2006-01-02"))

	return f, filename, nil
}

// BuildGroupWorkbook renders balances, settlements, expenses and payments
func BuildGroupWorkbook(group *models.Group) (*excelize.File, error) {
	settlement := SettleSnapshot(group)
	w := &workbook{File: excelize.NewFile(), group: group}

	if err := w.balancesSheet(settlement); err != nil {
		return nil, fmt.Errorf("failed to create balances sheet: %w", err)
	}
	if err := w.settlementsSheet(settlement); err != nil {
		return nil, fmt.Errorf("failed to create settlements sheet: %w", err)
	}
	if err := w.expensesSheet(); err != nil {
		return nil, fmt.Errorf("failed to create expenses sheet: %w", err)
	}
	if err := w.paymentsSheet(); err != nil {
		return nil, fmt.Errorf("failed to create payments sheet: %w", err)
	}

	// Delete the default sheet
	if err := w.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if index, err := w.GetSheetIndex(SheetBalances); err == nil {
		w.SetActiveSheet(index)
	}
	return w.File, nil
}

type workbook struct {
	*excelize.File
	group       *models.Group
	headerStyle int
}

func (w *workbook) memberLabel(memberID int64) string {
	if name := w.group.MemberName(memberID); name != "" {
		return name
	}
	return "Member " + strconv.FormatInt(memberID, 10)
}

// newSheet creates a sheet with a styled header row
func (w *workbook) newSheet(name string, headers []string) error {
	if _, err := w.NewSheet(name); err != nil {
		return err
	}
	if w.headerStyle == 0 {
		style, err := w.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		w.headerStyle = style
	}

	if err := w.setRow(name, 1, toCells(headers)); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return w.SetCellStyle(name, "A1", last, w.headerStyle)
}

func (w *workbook) setRow(sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.SetSheetRow(sheet, cell, &values)
}

func (w *workbook) balancesSheet(settlement *models.GroupSettlement) error {
	if err := w.newSheet(SheetBalances, []string{"Member", "Balance"}); err != nil {
		return err
	}
	for i, entry := range settlement.Balances {
		if err := w.setRow(SheetBalances, i+2, []interface{}{w.memberLabel(entry.MemberID), entry.Balance}); err != nil {
			return err
		}
	}
	return w.SetColWidth(SheetBalances, "A", "B", 18)
}

func (w *workbook) settlementsSheet(settlement *models.GroupSettlement) error {
	if err := w.newSheet(SheetSettlements, []string{"From", "To", "Amount"}); err != nil {
		return err
	}
	for i, transfer := range settlement.Transfers {
		row := []interface{}{w.memberLabel(transfer.From), w.memberLabel(transfer.To), transfer.Amount}
		if err := w.setRow(SheetSettlements, i+2, row); err != nil {
			return err
		}
	}
	return w.SetColWidth(SheetSettlements, "A", "C", 18)
}

// expensesSheet lays expenses out as a matrix with one column per member
func (w *workbook) expensesSheet() error {
	members := w.group.Members
	headers := []string{"Date", "Description", "Paid By", "Total Amount"}
	for _, member := range members {
		headers = append(headers, w.memberLabel(member.ID))
	}
	if err := w.newSheet(SheetExpenses, headers); err != nil {
		return err
	}

	for i, expense := range w.group.Expenses {
		row := []interface{}{formatDate(expense.CreatedAt), expense.Description, w.memberLabel(expense.PayerID), expense.Amount}
		for _, member := range members {
			amount := 0.0
			if share, ok := expense.ShareFor(member.ID); ok {
				amount = share.Amount
			}
			row = append(row, amount)
		}
		if err := w.setRow(SheetExpenses, i+2, row); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := w.SetColWidth(SheetExpenses, "A", lastCol, 12); err != nil {
		return err
	}
	return w.SetColWidth(SheetExpenses, "B", "B", 24)
}

func (w *workbook) paymentsSheet() error {
	headers := []string{"Date", "From", "To", "Amount", "Status", "Method", "Note"}
	if err := w.newSheet(SheetPayments, headers); err != nil {
		return err
	}

	row := 2
	for _, list := range [][]models.Payment{w.group.PendingPayments, w.group.ConfirmedPayments} {
		for _, payment := range list {
			status := "pending"
			if payment.Confirmed {
				status = "confirmed"
			}
			values := []interface{}{
				formatDate(payment.CreatedAt),
				w.memberLabel(payment.FromMemberID),
				w.memberLabel(payment.ToMemberID),
				payment.Amount,
				status,
				DescribePaymentMethod(payment.PaymentMethod),
				FormatPaymentNote(payment.Note),
			}
			if err := w.setRow(SheetPayments, row, values); err != nil {
				return err
			}
			row++
		}
	}
	if err := w.SetColWidth(SheetPayments, "A", "F", 14); err != nil {
		return err
	}
	return w.SetColWidth(SheetPayments, "G", "G", 40)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, value := range values {
		cells[i] = value
	}
	return cells
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
