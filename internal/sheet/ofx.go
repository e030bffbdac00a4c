package sheet

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/vatflow/internal/model"
)

// OFXDecoder maps bank and credit card statement lines onto rows using the
// display column names. Statements carry no VAT, so that column is left
// absent for the user to fill in.
type OFXDecoder struct{}

// Format returns FormatOFX.
func (d *OFXDecoder) Format() Format { return FormatOFX }

const ofxDateLayout = "2006-01-02"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes common formatting issues in bank-exported OFX files.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket on bare tags
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Decode parses the statement and returns one row per transaction, bank
// statements first.
func (d *OFXDecoder) Decode(r io.Reader) ([]model.RawRow, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var rows []model.RawRow
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		account := string(stmt.BankAcctFrom.AcctID)
		var accountName string
		if stmt.BankAcctFrom.AcctType.Valid() {
			accountName = stmt.BankAcctFrom.AcctType.String()
		}
		for _, tx := range stmt.BankTranList.Transactions {
			rows = append(rows, ofxRow(tx, account, accountName))
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		account := string(stmt.CCAcctFrom.AcctID)
		for _, tx := range stmt.BankTranList.Transactions {
			rows = append(rows, ofxRow(tx, account, "CREDITCARD"))
		}
	}

	slog.Debug("Parsed OFX file",
		"rows", len(rows),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return rows, nil
}

func ofxRow(tx ofxgo.Transaction, account, accountName string) model.RawRow {
	// OFX signs debits negative; the ledger stores magnitudes.
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil {
		amount = decimal.Zero
	}

	row := model.RawRow{
		model.FieldDate:          tx.DtPosted.Format(ofxDateLayout),
		model.FieldTransactionID: string(tx.FiTID),
		model.FieldAccount:       account,
		model.FieldAccountName:   accountName,
		model.FieldReference:     reference(tx),
		model.FieldDescription:   description(tx),
		model.FieldAmount:        amount.Abs(),
		model.FieldFlag:          tx.TrnType.String(),
	}
	if memo := strings.TrimSpace(string(tx.Memo)); memo != "" && memo != row[model.FieldDescription] {
		row[model.FieldNotes] = memo
	}
	return row
}

func reference(tx ofxgo.Transaction) string {
	if tx.CheckNum != "" {
		return string(tx.CheckNum)
	}
	return string(tx.RefNum)
}

var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// description picks the cleanest counterparty text: PAYEE, then NAME, then
// MEMO when NAME is generic.
func description(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " date stamps
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}
