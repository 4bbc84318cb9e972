package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/subtrack/internal/cli"
	"github.com/theirongolddev/subtrack/internal/model"
	"github.com/xuri/excelize/v2"
)

var usd = cli.NewMoney("USD", "en-US")

func sampleBackup() Backup {
	return NewBackup(
		[]model.Subscription{
			{ID: "s1", Vendor: "Netflix", RenewalDate: "2024-04-01", Amount: 15.49, ColorTag: "#EF4444", BillingCycle: model.CycleMonthly},
			{ID: "s2", Vendor: "Domain, Inc", Description: "example.com", RenewalDate: "2024-09-01", Amount: 12, ColorTag: "#6B7280", BillingCycle: model.CycleYearly},
		},
		[]model.Loan{
			{ID: "l1", Vendor: "Car", TotalLoanAmount: 1000, AmountPaidSoFar: 250, PaymentAmount: 100, PaymentDate: "2024-04-10", ColorTag: "#3B82F6", BillingCycle: model.CycleMonthly},
		},
		time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, ".yml": FormatYAML, "MD": FormatMarkdown, "excel": FormatXLSX, "htm": FormatHTML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("pdf accepted")
	}
}

func TestBackupRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, format, sampleBackup(), usd); err != nil {
				t.Fatal(err)
			}
			got, err := Read(&buf, format)
			if err != nil {
				t.Fatal(err)
			}
			want := sampleBackup()
			if got.Version != BackupVersion || !got.ExportedAt.Equal(want.ExportedAt) {
				t.Errorf("header = %d %v", got.Version, got.ExportedAt)
			}
			if len(got.Subscriptions) != 2 || got.Subscriptions[1] != want.Subscriptions[1] {
				t.Errorf("subscriptions = %+v", got.Subscriptions)
			}
			if len(got.Loans) != 1 || got.Loans[0] != want.Loans[0] {
				t.Errorf("loans = %+v", got.Loans)
			}
		})
	}
}

func TestWriteFileAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "backup.yaml")
	if err := WriteFile(path, FormatYAML, sampleBackup(), usd); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Subscriptions) != 2 {
		t.Fatalf("read %d subscriptions", len(got.Subscriptions))
	}
}

func TestRead_RejectsNewerVersion(t *testing.T) {
	_, err := Read(strings.NewReader(`{"version": 99}`), FormatJSON)
	if err == nil {
		t.Fatal("newer backup accepted")
	}
	if _, err := Read(strings.NewReader(""), FormatCSV); err == nil {
		t.Fatal("csv import accepted")
	}
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, sampleBackup(), usd); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"ID,Vendor,Description,Billing Cycle,Amount,Renewal Date,Date Purchased,Color",
		"s1,Netflix,,Monthly,15.49,2024-04-01,,Red",
		`"Domain, Inc"`,
		"l1,Car,,1000.00,250.00,750.00,25%,100.00,2024-04-10,,,Monthly,Blue",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("CSV missing %q:\n%s", want, out)
		}
	}
}

func TestWrite_MarkdownAndHTML(t *testing.T) {
	var md bytes.Buffer
	if err := Write(&md, FormatMarkdown, sampleBackup(), usd); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md.String(), "## Loans") || !strings.Contains(md.String(), "$15.49") || !strings.Contains(md.String(), "Apr 1, 2024") {
		t.Errorf("markdown:\n%s", md.String())
	}

	var html bytes.Buffer
	if err := Write(&html, FormatHTML, sampleBackup(), usd); err != nil {
		t.Fatal(err)
	}
	if strings.Count(html.String(), "<table") != 2 || !strings.Contains(html.String(), "Netflix") {
		t.Errorf("html:\n%s", html.String())
	}
}

func TestWrite_XLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatXLSX, sampleBackup(), usd); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[0] != sheetSubscriptions || sheets[1] != sheetLoans {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(sheetLoans)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][1] != "Car" || rows[1][5] != "750.00" {
		t.Fatalf("loan rows = %v", rows)
	}
}

func TestPrepare(t *testing.T) {
	b := sampleBackup()
	b.Subscriptions[0].ID = ""
	n := 0
	gen := func() string { n++; return fmt.Sprintf("new-%d", n) }

	subs, loans, err := Prepare(b, gen)
	if err != nil {
		t.Fatal(err)
	}
	if subs[0].ID != "new-1" || subs[1].ID != "s2" || loans[0].ID != "l1" {
		t.Fatalf("ids = %s %s %s", subs[0].ID, subs[1].ID, loans[0].ID)
	}
	if b.Subscriptions[0].ID != "" {
		t.Fatal("Prepare mutated its input")
	}
}

func TestPrepare_Rejects(t *testing.T) {
	b := sampleBackup()
	b.Loans[0].ID = "s1"
	b.Subscriptions[1].Amount = 0

	_, _, err := Prepare(b, func() string { return "x" })
	if err == nil {
		t.Fatal("invalid backup accepted")
	}
	msg := err.Error()
	if !strings.Contains(msg, `duplicate id "s1"`) || !strings.Contains(msg, "Amount must be greater than 0") {
		t.Fatalf("err = %v", err)
	}
}

func TestPrepare_RejectsNonFiniteYAML(t *testing.T) {
	const doc = `version: 1
subscriptions:
  - vendor: Netflix
    renewalDate: "2024-04-01"
    amount: .inf
    colorTag: "#EF4444"
loans:
  - vendor: Car
    totalLoanAmount: 1000
    amountPaidSoFar: .nan
    paymentAmount: 100
    paymentDate: "2024-04-10"
    colorTag: "#3B82F6"
`
	b, err := Read(strings.NewReader(doc), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	_, _, err = Prepare(b, func() string { n++; return fmt.Sprintf("id-%d", n) })
	if err == nil {
		t.Fatal("non-finite amounts accepted")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Amount must be greater than 0") || !strings.Contains(msg, "Amount paid must be a number") {
		t.Fatalf("err = %v", err)
	}
}
