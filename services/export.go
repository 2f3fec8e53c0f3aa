package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/slateboard/slateboard-api/models"
)

// ExportService renders schedule CSVs locally and budget PDFs through a
// Gotenberg instance (HTML in, PDF out).
type ExportService struct {
	gotenbergURL string
	httpClient   *http.Client
}

func NewExportService(gotenbergURL string) *ExportService {
	return &ExportService{
		gotenbergURL: gotenbergURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ScheduleCSV writes one row per schedule entry: the day's call sheet in
// spreadsheet form.
func (s *ExportService) ScheduleCSV(entries []models.ScheduleEntry) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write([]string{"date", "name", "start", "end", "status", "scenes", "crew"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.Write([]string{
			e.Date,
			e.Name,
			e.StartTime,
			e.EndTime,
			e.Status,
			strconv.Itoa(len(e.SceneIDs)),
			strconv.Itoa(len(e.Crew)),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

var budgetReportTmpl = template.Must(template.New("budget").Parse(`<!DOCTYPE html>
<html>
<head><style>
body { font-family: sans-serif; margin: 40px; }
h1 { border-bottom: 2px solid #1a1a2e; padding-bottom: 8px; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th, td { text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
.over { color: #c0392b; font-weight: bold; }
</style></head>
<body>
<h1>Budget Report</h1>
<p>Total budget: {{printf "%.2f" .Summary.TotalBudget}} {{.Budget.Currency}} &middot;
   Spent: {{printf "%.2f" .Summary.TotalSpent}} {{.Budget.Currency}}
   {{if .Summary.OverBudget}}<span class="over">(over budget)</span>{{end}}</p>
<table>
<tr><th>Category</th><th>Budgeted</th><th>Spent</th></tr>
{{range .Budget.Categories}}
<tr><td>{{.Name}}</td><td>{{printf "%.2f" .Budgeted}}</td><td>{{printf "%.2f" .Spent}}</td></tr>
{{end}}
</table>
<table>
<tr><th>Expense</th><th>Category</th><th>Amount</th><th>Status</th></tr>
{{range .Budget.Expenses}}
<tr><td>{{.Description}}</td><td>{{.Category}}</td><td>{{printf "%.2f" .Amount}}</td><td>{{.Status}}</td></tr>
{{end}}
</table>
</body>
</html>`))

// BudgetPDF renders the budget summary report to PDF via Gotenberg.
func (s *ExportService) BudgetPDF(ctx context.Context, budget *models.Budget) ([]byte, error) {
	if s.gotenbergURL == "" {
		return nil, fmt.Errorf("GOTENBERG_URL not configured")
	}

	html := &bytes.Buffer{}
	err := budgetReportTmpl.Execute(html, map[string]interface{}{
		"Budget":  budget,
		"Summary": budget.Summary(),
	})
	if err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, html); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/forms/chromium/convert/html", s.gotenbergURL), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("pdf render failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
