package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RandilG/Construction-Management/internal/domain"

	"github.com/signintech/gopdf"
)

const (
	marginLeft = 50.0
	lineHeight = 18.0
	pageBottom = 790.0
)

type Generator struct {
	fontPath string
}

// NewGenerator locates a TTF font once; each report gets a fresh gopdf document.
func NewGenerator() *Generator {
	wd, _ := os.Getwd()

	fontPaths := []string{
		filepath.Join(wd, "fonts", "DejaVuSans.ttf"),
		"./fonts/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	}

	for _, path := range fontPaths {
		if _, err := os.Stat(path); err == nil {
			return &Generator{fontPath: path}
		}
	}

	return &Generator{}
}

// GenerateExpenseReport renders a project expense listing with totals.
func (g *Generator) GenerateExpenseReport(projectName string, expenses []domain.Expense) ([]byte, error) {
	if g.fontPath == "" {
		return nil, fmt.Errorf("TTF font not found, place DejaVuSans.ttf in ./fonts/")
	}

	doc := &gopdf.GoPdf{}
	doc.Start(gopdf.Config{
		PageSize: *gopdf.PageSizeA4,
		Unit:     gopdf.Unit_PT,
	})

	if err := doc.AddTTFFont("dejavu", g.fontPath); err != nil {
		return nil, fmt.Errorf("add font failed: %w", err)
	}

	doc.AddPage()

	if err := doc.SetFont("dejavu", "", 18); err != nil {
		return nil, fmt.Errorf("set font failed: %w", err)
	}
	doc.SetXY(marginLeft, 50)
	doc.Cell(nil, "Expense Report: "+projectName)

	if err := doc.SetFont("dejavu", "", 10); err != nil {
		return nil, fmt.Errorf("set font failed: %w", err)
	}
	doc.SetXY(marginLeft, 75)
	doc.Cell(nil, "Generated "+time.Now().Format("2006-01-02 15:04"))

	y := 110.0
	var total float64
	totalsByStatus := make(map[domain.ExpenseStatus]float64)

	for _, expense := range expenses {
		if y > pageBottom {
			doc.AddPage()
			y = 50
		}

		category := ""
		if expense.CategoryName != nil {
			category = *expense.CategoryName
		}

		doc.SetXY(marginLeft, y)
		doc.Cell(nil, fmt.Sprintf("%s  %s", expense.ExpenseDate.Format("2006-01-02"), expense.Title))
		doc.SetXY(350, y)
		doc.Cell(nil, category)
		doc.SetXY(450, y)
		doc.Cell(nil, fmt.Sprintf("%.2f %s (%s)", expense.Amount, expense.Currency, expense.Status))

		total += expense.Amount
		totalsByStatus[expense.Status] += expense.Amount
		y += lineHeight
	}

	y += lineHeight
	if y > pageBottom {
		doc.AddPage()
		y = 50
	}

	if err := doc.SetFont("dejavu", "", 12); err != nil {
		return nil, fmt.Errorf("set font failed: %w", err)
	}
	doc.SetXY(marginLeft, y)
	doc.Cell(nil, fmt.Sprintf("Total: %.2f", total))
	y += lineHeight

	for _, status := range []domain.ExpenseStatus{domain.ExpensePending, domain.ExpenseApproved, domain.ExpenseRejected} {
		if amount, ok := totalsByStatus[status]; ok {
			doc.SetXY(marginLeft, y)
			doc.Cell(nil, fmt.Sprintf("%s: %.2f", status, amount))
			y += lineHeight
		}
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pdf failed: %w", err)
	}

	return buf.Bytes(), nil
}
